package labels

import (
	"testing"

	"reviewflow/internal/models"
)

func hasCategory(c UncertainCase, want string) bool {
	for _, cat := range c.Categories {
		if cat == want {
			return true
		}
	}
	return false
}

func TestScanUncertainCategories(t *testing.T) {
	texts := []string{"low", "conflict", "override", "negative", "confident", ""}
	preds := []models.LabelPrediction{
		{RelevanceConfidence: 0.3, ConcretenessConfidence: 0.7, ConstructiveConfidence: 0.7},
		{RelevanceConfidence: 0.95, ConcretenessConfidence: 0.5, ConstructiveConfidence: 0.8, Relevance: 1, Constructive: 1},
		{RelevanceConfidence: 0.8, ConcretenessConfidence: 0.8, ConstructiveConfidence: 0.6, Constructive: 1, KeywordOverride: true, ScoredConstructive: 0.2},
		{RelevanceConfidence: 0.95, ConcretenessConfidence: 0.8, ConstructiveConfidence: 0.8, Relevance: 0},
		{RelevanceConfidence: 0.8, ConcretenessConfidence: 0.8, ConstructiveConfidence: 0.8, Relevance: 1, Concreteness: 1, Constructive: 1},
		{RelevanceConfidence: 0.1, ConcretenessConfidence: 0.1, ConstructiveConfidence: 0.1},
	}

	cases := ScanUncertain(texts, preds, 0.6, 0.9)

	byIndex := map[int]UncertainCase{}
	for _, c := range cases {
		byIndex[c.Index] = c
	}

	if c, ok := byIndex[0]; !ok || !hasCategory(c, CategoryLowConfidence) {
		t.Fatalf("index 0 should be low confidence: %+v", byIndex[0])
	}
	if c, ok := byIndex[1]; !ok || !hasCategory(c, CategoryConflicting) || !hasCategory(c, CategoryLowConfidence) {
		t.Fatalf("index 1 should be conflicting and low: %+v", byIndex[1])
	}
	if c, ok := byIndex[2]; !ok || !hasCategory(c, CategoryKeywordOverride) {
		t.Fatalf("index 2 should flag the keyword override: %+v", byIndex[2])
	}
	if hasCategory(byIndex[2], CategoryLowConfidence) {
		t.Fatalf("index 2 confidences are all above the low bound: %+v", byIndex[2])
	}
	if c, ok := byIndex[3]; !ok || !hasCategory(c, CategoryHighConfNegative) {
		t.Fatalf("index 3 should flag high-confidence negative: %+v", byIndex[3])
	}
	if _, ok := byIndex[4]; ok {
		t.Fatalf("index 4 is certain, should not be flagged")
	}
	if _, ok := byIndex[5]; ok {
		t.Fatalf("empty text must be skipped")
	}
}

func TestScanUncertainDoesNotMutate(t *testing.T) {
	preds := []models.LabelPrediction{
		{RelevanceConfidence: 0.2, ConcretenessConfidence: 0.2, ConstructiveConfidence: 0.2},
	}
	before := preds[0]
	ScanUncertain([]string{"text"}, preds, 0.6, 0.9)
	if preds[0] != before {
		t.Fatalf("prediction mutated: %+v", preds[0])
	}
}
