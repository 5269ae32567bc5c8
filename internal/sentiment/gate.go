package sentiment

// Vocabulary is the membership test the gate needs from a vectorizer.
type Vocabulary interface {
	Contains(token string) bool
}

// UnknownTokens returns every token of tokens missing from vocab, in input
// order. Repeated unknown tokens are reported each time they occur.
func UnknownTokens(tokens []string, vocab Vocabulary) []string {
	var unknown []string
	for _, tok := range tokens {
		if !vocab.Contains(tok) {
			unknown = append(unknown, tok)
		}
	}
	return unknown
}

// Distinct drops repeats, keeping first occurrences in order.
func Distinct(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
