package labels

import (
	"strings"
	"unicode/utf8"

	"reviewflow/internal/models"
)

// constructiveKeywords mark feedback that gives the author something to act
// on. Matching is case-insensitive substring containment.
var constructiveKeywords = []string{SuggestionMarker, "suggestion", "可以", "should", "could"}

// RuleClassify labels texts with length and keyword heuristics when no
// model backend is available. Labels that fire carry confidence 1.0, the
// rest 0.0.
func RuleClassify(texts []string) []models.LabelPrediction {
	preds := make([]models.LabelPrediction, len(texts))
	for i, text := range texts {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			continue
		}
		n := utf8.RuneCountInString(trimmed)
		pred := models.LabelPrediction{}
		if n > 5 {
			pred.Relevance = 1
			pred.RelevanceConfidence = 1.0
		}
		if n > 20 {
			pred.Concreteness = 1
			pred.ConcretenessConfidence = 1.0
		}
		lowered := strings.ToLower(trimmed)
		for _, kw := range constructiveKeywords {
			if strings.Contains(lowered, kw) {
				pred.Constructive = 1
				pred.ConstructiveConfidence = 1.0
				break
			}
		}
		preds[i] = pred
	}
	return preds
}
