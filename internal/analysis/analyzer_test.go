package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"reviewflow/internal/models"
)

func label(v int) *int { return &v }

func sampleGrouped() models.GroupedReviews {
	return models.GroupedReviews{
		"HW1": []models.AssignmentGroup{
			{
				Assignment: "HW1",
				Author:     "2",
				Reviewer:   "1",
				Rounds: []models.RoundEntry{
					{Round: 1, Feedback: "建議加強論述", Relevance: label(1), Concreteness: label(0), Constructive: label(1)},
					{Round: 2, Feedback: "second pass looks better", Relevance: label(1), Concreteness: label(1), Constructive: label(0)},
				},
			},
			{
				Assignment: "HW1",
				Author:     "NULL",
				Reviewer:   "2",
				Rounds: []models.RoundEntry{
					{Round: 1, Feedback: "ok", Relevance: label(0), Concreteness: label(0), Constructive: label(0)},
					{Round: 2, Feedback: ""},
				},
			},
		},
	}
}

func sampleScores() map[string]models.ScoreRow {
	return map[string]models.ScoreRow{
		"1": {StudentID: "1", Name: "Alice", Midterm: 80, Final: 85, HWScores: map[string]int{"HW1": 90}},
		"2": {StudentID: "2", Name: "Bob", Midterm: 60, Final: 70, HWScores: map[string]int{"HW1": 70}},
		"3": {StudentID: "3", Name: "Carol", HWScores: map[string]int{"HW1": 0}},
	}
}

func TestAnalyzeActivityCounts(t *testing.T) {
	report := Analyze(sampleGrouped(), sampleScores(), 1, 1)

	if report.Summary.TotalStudents != 3 {
		t.Fatalf("total students: %d", report.Summary.TotalStudents)
	}
	if report.Summary.StudentsWithReview != 2 {
		t.Fatalf("students with reviews: %d", report.Summary.StudentsWithReview)
	}
	// empty-feedback rounds never count
	if report.Summary.TotalReviewsGiven != 3 {
		t.Fatalf("total reviews given: %d", report.Summary.TotalReviewsGiven)
	}

	hw, ok := report.Correlations["HW1"]
	if !ok {
		t.Fatalf("missing HW1 correlations")
	}
	if hw.Stats.TotalStudents != 3 {
		t.Fatalf("HW1 data points: %d", hw.Stats.TotalStudents)
	}

	byID := map[string]DataPoint{}
	for _, p := range hw.DataPoints {
		byID[p.StudentID] = p
	}
	alice := byID["1"]
	if alice.ReviewsGiven != 2 {
		t.Fatalf("alice gave 2 reviews: %+v", alice)
	}
	if alice.RelevanceScore != 100 || alice.ConcretenessScore != 50 || alice.ConstructiveScore != 50 {
		t.Fatalf("alice label percentages: %+v", alice)
	}
	bob := byID["2"]
	if bob.ReviewsGiven != 1 {
		t.Fatalf("bob gave 1 review: %+v", bob)
	}
	// NULL author never receives reviews
	if bob.ReviewsReceived != 2 {
		t.Fatalf("bob received 2 reviews: %+v", bob)
	}
	carol := byID["3"]
	if carol.ReviewsGiven != 0 || carol.QualityScore != 0 {
		t.Fatalf("inactive student gets zero metrics: %+v", carol)
	}
}

func TestAnalyzeSkipsUnitsWithTooFewPoints(t *testing.T) {
	scores := map[string]models.ScoreRow{
		"1": {StudentID: "1", HWScores: map[string]int{"HW1": 90}},
	}
	report := Analyze(sampleGrouped(), scores, 1, 1)
	if _, ok := report.Correlations["HW1"]; ok {
		t.Fatalf("one data point must not produce correlations")
	}
}

func TestAnalyzeStudentDetailsSorted(t *testing.T) {
	report := Analyze(sampleGrouped(), sampleScores(), 1, 1)
	if len(report.Students) != 3 {
		t.Fatalf("want 3 students, got %d", len(report.Students))
	}
	for i := 1; i < len(report.Students); i++ {
		if report.Students[i-1].ID >= report.Students[i].ID {
			t.Fatalf("students not sorted by id")
		}
	}
	alice := report.Students[0]
	if alice.ReviewsGiven != 2 || alice.QualityBreakdown.Relevance != 2 {
		t.Fatalf("alice detail: %+v", alice)
	}
}

func TestLoadScoreTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scores.csv")
	csvData := "ID,Name,Pre,Midterm,Final,HW1,HW2\n" +
		"1,Alice,10,80,85,90.0,88\n" +
		"2,Bob,,60,70,,75\n" +
		",Ghost,0,0,0,0,0\n"
	if err := os.WriteFile(path, []byte(csvData), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	scores, err := LoadScoreTable(path, 1, 2)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("rows without ID are skipped, got %d", len(scores))
	}
	alice := scores["1"]
	if alice.Name != "Alice" || alice.Midterm != 80 {
		t.Fatalf("alice row: %+v", alice)
	}
	if alice.HWScores["HW1"] != 90 || alice.HWScores["HW2"] != 88 {
		t.Fatalf("alice hw scores: %+v", alice.HWScores)
	}
	bob := scores["2"]
	if bob.Pre != 0 || bob.HWScores["HW1"] != 0 {
		t.Fatalf("blank cells default to 0: %+v", bob)
	}
}

func TestLoadScoreTableMissing(t *testing.T) {
	if _, err := LoadScoreTable(filepath.Join(t.TempDir(), "none.csv"), 1, 7); err == nil {
		t.Fatalf("missing file should error")
	}
}
