// Package labels turns raw classifier probabilities (or simple text rules)
// into final Relevance/Concreteness/Constructive decisions.
package labels

import (
	"context"
	"fmt"
	"strings"

	"reviewflow/internal/models"
	"reviewflow/internal/scoring"
	"reviewflow/internal/util"
)

// SuggestionMarker is the literal token that forces the Constructive label
// to 1 regardless of the scored probability.
const SuggestionMarker = "建議"

// DefaultKeywordConfidenceFloor is the minimum constructive confidence
// reported when the keyword rule overrides a below-threshold score.
const DefaultKeywordConfidenceFloor = 0.6

// Engine decides final labels from backend scores. A nil scorer is not an
// error here; callers that want rule-based classification use RuleClassify
// directly.
type Engine struct {
	scorer scoring.Scorer
	floor  float64
}

func NewEngine(scorer scoring.Scorer, keywordFloor float64) *Engine {
	if keywordFloor <= 0 {
		keywordFloor = DefaultKeywordConfidenceFloor
	}
	return &Engine{scorer: scorer, floor: keywordFloor}
}

// Classify scores a batch of feedback texts and thresholds the results.
//
// Empty or whitespace-only texts never reach the backend: they get all-zero
// labels with zero confidence. A label is 1 iff its probability strictly
// exceeds its threshold. The keyword override runs per text after
// thresholding, before the prediction is finalized.
//
// The whole batch fails with a shape-mismatch error when the backend does
// not return exactly three scores per valid text.
func (e *Engine) Classify(ctx context.Context, texts []string, thresholds [3]float64) ([]models.LabelPrediction, error) {
	if e.scorer == nil {
		return nil, fmt.Errorf("%w: no scorer configured", util.ErrBackendUnavailable)
	}

	preds := make([]models.LabelPrediction, len(texts))

	validTexts := make([]string, 0, len(texts))
	validIdx := make([]int, 0, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		validTexts = append(validTexts, text)
		validIdx = append(validIdx, i)
	}
	if len(validTexts) == 0 {
		return preds, nil
	}

	scores, err := e.scorer.Score(ctx, validTexts)
	if err != nil {
		return nil, err
	}
	if len(scores) != len(validTexts) {
		return nil, fmt.Errorf("%w: got %d rows for %d texts", util.ErrShapeMismatch, len(scores), len(validTexts))
	}
	for i, row := range scores {
		if len(row) != 3 {
			return nil, fmt.Errorf("%w: got %d scores for text %d", util.ErrShapeMismatch, len(row), i)
		}
	}

	for i, idx := range validIdx {
		row := scores[i]
		pred := models.LabelPrediction{
			RelevanceConfidence:    row[0],
			ConcretenessConfidence: row[1],
			ConstructiveConfidence: row[2],
		}
		pred.Relevance = binaryLabel(row[0], thresholds[0])
		pred.Concreteness = binaryLabel(row[1], thresholds[1])
		pred.Constructive = binaryLabel(row[2], thresholds[2])

		if strings.Contains(validTexts[i], SuggestionMarker) {
			pred.Constructive = 1
			pred.KeywordOverride = true
			pred.ScoredConstructive = row[2]
			if row[2] < thresholds[2] {
				pred.ConstructiveConfidence = max(row[2], e.floor)
			}
		}
		preds[idx] = pred
	}
	return preds, nil
}

func binaryLabel(p, threshold float64) int {
	if p > threshold {
		return 1
	}
	return 0
}
