package scoring

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
)

// MockScorer produces deterministic probabilities derived from each text's
// hash, useful for exercising the full pipeline without a model service.
type MockScorer struct{}

func NewMockScorer() *MockScorer {
	return &MockScorer{}
}

func (m *MockScorer) Name() string { return "mock" }

func (m *MockScorer) Score(ctx context.Context, texts []string) ([][]float64, error) {
	_ = ctx
	out := make([][]float64, 0, len(texts))
	for _, text := range texts {
		sum := sha256.Sum256([]byte(text))
		row := make([]float64, 3)
		for i := range row {
			bits := binary.BigEndian.Uint32(sum[i*4 : i*4+4])
			row[i] = float64(bits%1000) / 999.0
		}
		out = append(out, row)
	}
	return out, nil
}
