package analysis

import (
	"math"
	"testing"
)

func TestPearsonPerfectCorrelation(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{10, 20, 30, 40}
	if r := Pearson(x, y); r != 1 {
		t.Fatalf("want 1, got %v", r)
	}
	inv := []float64{40, 30, 20, 10}
	if r := Pearson(x, inv); r != -1 {
		t.Fatalf("want -1, got %v", r)
	}
}

func TestPearsonConstantSeries(t *testing.T) {
	x := []float64{5, 5, 5}
	y := []float64{1, 2, 3}
	if r := Pearson(x, y); r != 0 {
		t.Fatalf("constant series must give 0, got %v", r)
	}
	if r := Pearson(x, x); r != 0 {
		t.Fatalf("two constant series must give 0, got %v", r)
	}
}

func TestPearsonTooFewPoints(t *testing.T) {
	if r := Pearson([]float64{1}, []float64{2}); r != 0 {
		t.Fatalf("single point must give 0, got %v", r)
	}
	if r := Pearson(nil, nil); r != 0 {
		t.Fatalf("empty series must give 0, got %v", r)
	}
}

func TestPearsonNeverNaN(t *testing.T) {
	cases := [][2][]float64{
		{{0, 0}, {0, 0}},
		{{1, 1, 1, 1}, {math.MaxFloat64, 0, 0, 0}},
	}
	for i, c := range cases {
		if r := Pearson(c[0], c[1]); math.IsNaN(r) {
			t.Fatalf("case %d returned NaN", i)
		}
	}
}
