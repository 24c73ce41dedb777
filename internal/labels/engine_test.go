package labels

import (
	"context"
	"errors"
	"testing"

	"reviewflow/internal/util"
)

type fixedScorer struct {
	rows [][]float64
	err  error
}

func (f *fixedScorer) Score(ctx context.Context, texts []string) ([][]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fixedScorer) Name() string { return "fixed" }

var defaultThresholds = [3]float64{0.5, 0.5, 0.7}

func TestClassifyStrictThresholds(t *testing.T) {
	scorer := &fixedScorer{rows: [][]float64{
		{0.5, 0.51, 0.7},
		{0.9, 0.1, 0.71},
	}}
	engine := NewEngine(scorer, 0.6)

	preds, err := engine.Classify(context.Background(), []string{"first comment", "second comment"}, defaultThresholds)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}

	// exactly-at-threshold scores stay 0
	if preds[0].Relevance != 0 || preds[0].Constructive != 0 {
		t.Fatalf("boundary scores should not label: %+v", preds[0])
	}
	if preds[0].Concreteness != 1 {
		t.Fatalf("0.51 > 0.5 should label concreteness: %+v", preds[0])
	}
	if preds[1].Relevance != 1 || preds[1].Concreteness != 0 || preds[1].Constructive != 1 {
		t.Fatalf("unexpected labels: %+v", preds[1])
	}
	if preds[1].RelevanceConfidence != 0.9 {
		t.Fatalf("confidence should carry the raw score, got %v", preds[1].RelevanceConfidence)
	}
}

func TestClassifySkipsEmptyTexts(t *testing.T) {
	scorer := &fixedScorer{rows: [][]float64{{0.9, 0.9, 0.9}}}
	engine := NewEngine(scorer, 0.6)

	preds, err := engine.Classify(context.Background(), []string{"", "real feedback", "   "}, defaultThresholds)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(preds) != 3 {
		t.Fatalf("want prediction per input, got %d", len(preds))
	}
	for _, i := range []int{0, 2} {
		p := preds[i]
		if p.Relevance != 0 || p.Concreteness != 0 || p.Constructive != 0 {
			t.Fatalf("blank text %d should get zero labels: %+v", i, p)
		}
		if p.RelevanceConfidence != 0 || p.ConstructiveConfidence != 0 {
			t.Fatalf("blank text %d should get zero confidence: %+v", i, p)
		}
	}
	if preds[1].Relevance != 1 || preds[1].Constructive != 1 {
		t.Fatalf("valid text should use backend scores: %+v", preds[1])
	}
}

func TestClassifyKeywordOverride(t *testing.T) {
	scorer := &fixedScorer{rows: [][]float64{
		{0.9, 0.9, 0.2},
		{0.9, 0.9, 0.95},
	}}
	engine := NewEngine(scorer, 0.6)

	preds, err := engine.Classify(context.Background(), []string{"我建議你改善架構", "建議加上測試，寫得很完整"}, defaultThresholds)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}

	low := preds[0]
	if low.Constructive != 1 || !low.KeywordOverride {
		t.Fatalf("keyword must force constructive: %+v", low)
	}
	if low.ConstructiveConfidence != 0.6 {
		t.Fatalf("overridden confidence should rise to the floor, got %v", low.ConstructiveConfidence)
	}
	if low.ScoredConstructive != 0.2 {
		t.Fatalf("original score must be preserved, got %v", low.ScoredConstructive)
	}

	high := preds[1]
	if high.Constructive != 1 || !high.KeywordOverride {
		t.Fatalf("keyword marks override even above threshold: %+v", high)
	}
	if high.ConstructiveConfidence != 0.95 {
		t.Fatalf("above-threshold confidence must not change, got %v", high.ConstructiveConfidence)
	}
}

func TestClassifyKeywordFloorKeepsHigherScore(t *testing.T) {
	scorer := &fixedScorer{rows: [][]float64{{0.1, 0.1, 0.65}}}
	engine := NewEngine(scorer, 0.6)

	preds, err := engine.Classify(context.Background(), []string{"建議補充說明"}, defaultThresholds)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if preds[0].ConstructiveConfidence != 0.65 {
		t.Fatalf("floor must not lower a higher score, got %v", preds[0].ConstructiveConfidence)
	}
}

func TestClassifyShapeMismatch(t *testing.T) {
	engine := NewEngine(&fixedScorer{rows: [][]float64{{0.9, 0.9}}}, 0.6)
	_, err := engine.Classify(context.Background(), []string{"feedback"}, defaultThresholds)
	if !errors.Is(err, util.ErrShapeMismatch) {
		t.Fatalf("want shape mismatch, got %v", err)
	}

	engine = NewEngine(&fixedScorer{rows: [][]float64{{0.9, 0.9, 0.9}, {0.1, 0.1, 0.1}}}, 0.6)
	_, err = engine.Classify(context.Background(), []string{"feedback"}, defaultThresholds)
	if !errors.Is(err, util.ErrShapeMismatch) {
		t.Fatalf("want shape mismatch on row count, got %v", err)
	}
}

func TestClassifyBackendError(t *testing.T) {
	wantErr := errors.New("backend down")
	engine := NewEngine(&fixedScorer{err: wantErr}, 0.6)
	_, err := engine.Classify(context.Background(), []string{"feedback"}, defaultThresholds)
	if !errors.Is(err, wantErr) {
		t.Fatalf("backend error must propagate, got %v", err)
	}
}
