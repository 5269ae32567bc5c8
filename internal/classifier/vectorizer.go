package classifier

import (
	"fmt"
	"sort"
)

// Vectorizer is a bag-of-words count vectorizer over a fixed vocabulary.
// Token indices follow the sorted token order.
type Vectorizer struct {
	Vocabulary map[string]int `json:"vocabulary"`
}

// FitVectorizer learns the vocabulary of docs, each a token list.
func FitVectorizer(docs [][]string) *Vectorizer {
	seen := make(map[string]struct{})
	for _, doc := range docs {
		for _, tok := range doc {
			seen[tok] = struct{}{}
		}
	}
	tokens := make([]string, 0, len(seen))
	for tok := range seen {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)

	vocab := make(map[string]int, len(tokens))
	for i, tok := range tokens {
		vocab[tok] = i
	}
	return &Vectorizer{Vocabulary: vocab}
}

// Contains reports whether tok is indexed.
func (v *Vectorizer) Contains(tok string) bool {
	if v == nil {
		return false
	}
	_, ok := v.Vocabulary[tok]
	return ok
}

func (v *Vectorizer) Size() int {
	if v == nil {
		return 0
	}
	return len(v.Vocabulary)
}

// Transform counts the known tokens. Unknown tokens are ignored.
func (v *Vectorizer) Transform(tokens []string) []float64 {
	x := make([]float64, v.Size())
	for _, tok := range tokens {
		if i, ok := v.Vocabulary[tok]; ok {
			x[i]++
		}
	}
	return x
}

// validate checks that the indices are exactly 0..n-1.
func (v *Vectorizer) validate() error {
	n := len(v.Vocabulary)
	used := make([]bool, n)
	for tok, i := range v.Vocabulary {
		if i < 0 || i >= n {
			return fmt.Errorf("%w: token %q has index %d, vocabulary has %d", ErrCorruptArtifact, tok, i, n)
		}
		if used[i] {
			return fmt.Errorf("%w: index %d used twice", ErrCorruptArtifact, i)
		}
		used[i] = true
	}
	return nil
}
