package labels

import "reviewflow/internal/models"

// Uncertainty categories reported by ScanUncertain.
const (
	CategoryLowConfidence    = "low_confidence"
	CategoryConflicting      = "conflicting_signals"
	CategoryKeywordOverride  = "keyword_override"
	CategoryHighConfNegative = "high_confidence_negative"
)

// UncertainCase flags one prediction a human should look at, with every
// category that applies.
type UncertainCase struct {
	Index      int                    `json:"index"`
	Text       string                 `json:"text"`
	Prediction models.LabelPrediction `json:"prediction"`
	Categories []string               `json:"categories"`
}

// ScanUncertain walks predictions and collects the ones whose confidence
// pattern deserves review. texts and preds are parallel slices; empty texts
// are skipped. Predictions are never mutated.
func ScanUncertain(texts []string, preds []models.LabelPrediction, low, high float64) []UncertainCase {
	var cases []UncertainCase
	for i, pred := range preds {
		if i < len(texts) && isBlank(texts[i]) {
			continue
		}
		confs := [3]float64{pred.RelevanceConfidence, pred.ConcretenessConfidence, pred.ConstructiveConfidence}
		minConf, maxConf := confs[0], confs[0]
		for _, c := range confs[1:] {
			if c < minConf {
				minConf = c
			}
			if c > maxConf {
				maxConf = c
			}
		}

		var categories []string
		if minConf < low {
			categories = append(categories, CategoryLowConfidence)
		}
		if maxConf > high && minConf < low {
			categories = append(categories, CategoryConflicting)
		}
		if pred.KeywordOverride && pred.ScoredConstructive < DefaultKeywordConfidenceFloor {
			categories = append(categories, CategoryKeywordOverride)
		}
		labels := [3]int{pred.Relevance, pred.Concreteness, pred.Constructive}
		for j, label := range labels {
			if label == 0 && confs[j] > high {
				categories = append(categories, CategoryHighConfNegative)
				break
			}
		}

		if len(categories) == 0 {
			continue
		}
		text := ""
		if i < len(texts) {
			text = texts[i]
		}
		cases = append(cases, UncertainCase{Index: i, Text: text, Prediction: pred, Categories: categories})
	}
	return cases
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
