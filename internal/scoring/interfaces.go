package scoring

import "context"

// Scorer is the external classification backend: one probability triple
// (relevance, concreteness, constructive) per input text, each in [0,1].
// Implementations must return exactly len(texts) rows; the label engine
// rejects anything else as a shape mismatch.
type Scorer interface {
	Score(ctx context.Context, texts []string) ([][]float64, error)
	Name() string
}
