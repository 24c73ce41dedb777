package labels

import "testing"

func TestRuleClassify(t *testing.T) {
	texts := []string{
		"我建議你改善",             // 6 runes, keyword
		"short",               // 5 runes
		"this is a longer comment that should be concrete enough",
		"",
		"   ",
		"ok fine",
	}
	preds := RuleClassify(texts)
	if len(preds) != len(texts) {
		t.Fatalf("want %d predictions, got %d", len(texts), len(preds))
	}

	p := preds[0]
	if p.Relevance != 1 || p.Concreteness != 0 || p.Constructive != 1 {
		t.Fatalf("suggestion text: %+v", p)
	}
	if p.RelevanceConfidence != 1.0 || p.ConstructiveConfidence != 1.0 {
		t.Fatalf("fired labels carry confidence 1.0: %+v", p)
	}

	if preds[1].Relevance != 0 {
		t.Fatalf("5 runes is not relevant: %+v", preds[1])
	}

	long := preds[2]
	if long.Relevance != 1 || long.Concreteness != 1 {
		t.Fatalf("long text: %+v", long)
	}
	if long.Constructive != 1 {
		t.Fatalf("contains 'should': %+v", long)
	}

	for _, i := range []int{3, 4} {
		p := preds[i]
		if p.Relevance != 0 || p.Concreteness != 0 || p.Constructive != 0 {
			t.Fatalf("blank text %d: %+v", i, p)
		}
	}

	if preds[5].Relevance != 1 || preds[5].Constructive != 0 {
		t.Fatalf("plain text: %+v", preds[5])
	}
}

func TestRuleClassifyKeywordCaseInsensitive(t *testing.T) {
	preds := RuleClassify([]string{"You SHOULD add tests"})
	if preds[0].Constructive != 1 {
		t.Fatalf("uppercase keyword should match: %+v", preds[0])
	}
}
