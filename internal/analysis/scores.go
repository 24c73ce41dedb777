package analysis

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"reviewflow/internal/models"
)

// LoadScoreTable reads the per-student score CSV. Expected columns are ID,
// Name, Pre, Midterm, Final and one HW<n> column per homework in
// [hwStart, hwEnd]. Rows without an ID are skipped.
func LoadScoreTable(path string, hwStart, hwEnd int) (map[string]models.ScoreRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open score table: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read score table: %w", err)
	}
	if len(rows) == 0 {
		return map[string]models.ScoreRow{}, nil
	}

	col := map[string]int{}
	for i, name := range rows[0] {
		col[strings.TrimSpace(name)] = i
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	scores := make(map[string]models.ScoreRow)
	for _, row := range rows[1:] {
		id := field(row, "ID")
		if id == "" {
			continue
		}
		entry := models.ScoreRow{
			StudentID: id,
			Name:      field(row, "Name"),
			Pre:       safeInt(field(row, "Pre")),
			Midterm:   safeInt(field(row, "Midterm")),
			Final:     safeInt(field(row, "Final")),
			HWScores:  make(map[string]int),
		}
		for hw := hwStart; hw <= hwEnd; hw++ {
			name := fmt.Sprintf("HW%d", hw)
			entry.HWScores[name] = safeInt(field(row, name))
		}
		scores[id] = entry
	}
	return scores, nil
}

// safeInt tolerates blanks and decimal strings the way the score export
// produces them.
func safeInt(s string) int {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(f)
}
