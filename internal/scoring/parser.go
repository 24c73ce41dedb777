package scoring

import "strings"

type ScorerRef struct {
	Raw      string
	Name     string
	KeyAlias string
}

// ParseScorerList splits a pipe-separated scorer spec ("rule",
// "http:primary|mock") into refs. An empty spec falls back to rule-based
// classification, which needs no backend at all.
func ParseScorerList(raw string) []ScorerRef {
	parts := strings.Split(raw, "|")
	out := make([]ScorerRef, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		ref := ScorerRef{Raw: p}
		if strings.Contains(p, ":") {
			x := strings.SplitN(p, ":", 2)
			ref.Name = strings.TrimSpace(x[0])
			ref.KeyAlias = strings.TrimSpace(x[1])
		} else {
			ref.Name = p
		}
		out = append(out, ref)
	}
	if len(out) == 0 {
		out = append(out, ScorerRef{Raw: "rule", Name: "rule"})
	}
	return out
}
