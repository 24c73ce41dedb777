package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSafeJoin(t *testing.T) {
	if got := SafeJoin("/data/in/u1", "../../etc/passwd"); got != "/data/in/u1/passwd" {
		t.Fatalf("traversal not stripped: %s", got)
	}
	if got := SafeJoin("/data/in/u1", "reviews.csv"); got != "/data/in/u1/reviews.csv" {
		t.Fatalf("plain name: %s", got)
	}
}

func TestWriteJSONAtomicRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	in := map[string]int{"a": 1, "b": 2}
	if err := WriteJSONAtomic(path, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	var out map[string]int
	if err := ReadJSON(path, &out); err != nil {
		t.Fatalf("read: %v", err)
	}
	if out["a"] != 1 || out["b"] != 2 {
		t.Fatalf("round trip: %+v", out)
	}

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("stray files: %v", entries)
	}
}

func TestLatestFile(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.csv")
	recent := filepath.Join(dir, "recent.csv")
	other := filepath.Join(dir, "note.txt")
	for _, p := range []string{old, recent, other} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	got, err := LatestFile(dir, ".csv")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got != "recent.csv" {
		t.Fatalf("latest file: %s", got)
	}
}

func TestLatestFileMissingDir(t *testing.T) {
	got, err := LatestFile(filepath.Join(t.TempDir(), "nope"), ".csv")
	if err != nil || got != "" {
		t.Fatalf("missing dir: %q %v", got, err)
	}
}
