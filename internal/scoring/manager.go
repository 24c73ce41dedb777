package scoring

import (
	"fmt"
	"strings"
)

// Manager builds the configured scoring backends. A "rule" entry (or an
// empty list) yields no backend: the label engine then runs its rule-based
// classifier, which is a supported mode rather than a failure.
type Manager struct {
	scorers []Scorer
}

func NewManager(spec string) (*Manager, error) {
	m := &Manager{}
	for _, ref := range ParseScorerList(spec) {
		switch strings.ToLower(ref.Name) {
		case "rule", "none":
			// rule-based classification happens inside the label engine
		case "mock":
			m.scorers = append(m.scorers, NewMockScorer())
		case "http":
			m.scorers = append(m.scorers, NewHTTPScorer(ref.KeyAlias))
		default:
			return nil, fmt.Errorf("unsupported scorer: %s", ref.Name)
		}
	}
	return m, nil
}

// First returns the preferred backend, or nil when only rule-based
// classification is configured.
func (m *Manager) First() Scorer {
	if len(m.scorers) == 0 {
		return nil
	}
	return m.scorers[0]
}

func (m *Manager) Count() int {
	return len(m.scorers)
}
