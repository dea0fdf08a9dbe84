package matching

import "testing"

func TestSemanticTokens(t *testing.T) {
	toks := SemanticTokens("The quick brown fox, with SQL and Go!")
	for _, want := range []string{"quick", "brown", "fox", "sql"} {
		if _, ok := toks[want]; !ok {
			t.Fatalf("missing token %q in %v", want, toks)
		}
	}
	for _, banned := range []string{"the", "with", "and", "go"} {
		if _, ok := toks[banned]; ok {
			t.Fatalf("token %q should be filtered", banned)
		}
	}
	if len(SemanticTokens("")) != 0 {
		t.Fatalf("empty text must yield no tokens")
	}
}

func TestSemanticSimilarity(t *testing.T) {
	if got := SemanticSimilarity("", "anything here"); got != 0 {
		t.Fatalf("empty side = %v, want 0", got)
	}
	if got := SemanticSimilarity("kundenservice vertrieb crm", "kundenservice vertrieb crm"); got != 1.0 {
		t.Fatalf("identical blobs = %v, want 1.0", got)
	}

	got := SemanticSimilarity("kundenservice vertrieb crm", "kundenservice buchhaltung")
	// overlap {kundenservice} over max(3, 2) tokens
	want := 1.0 / 3.0
	if got < want-1e-9 || got > want+1e-9 {
		t.Fatalf("similarity = %v, want %v", got, want)
	}

	if got := SemanticSimilarity("alpha beta", "gamma delta"); got != 0 {
		t.Fatalf("disjoint blobs = %v, want 0", got)
	}
}
