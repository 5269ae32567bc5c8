// Package tokenizer segments Vietnamese text into word tokens.
//
// Input is NFC-normalized and lowercased, then split into syllables: runs of
// letters, combining marks, digits, and underscores. Punctuation and
// whitespace separate syllables and are dropped. Adjacent syllables that form
// a known multi-syllable word are joined with an underscore, so
// "Tôi cảm thấy hạnh phúc" becomes [tôi cảm_thấy hạnh_phúc].
//
// Tokenizing already segmented text returns it unchanged, which keeps stored
// examples and fresh input in the same token space.
package tokenizer

import (
	"bufio"
	_ "embed"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

//go:embed compounds.txt
var defaultCompounds string

// Separator joins tokens in the stored text form of an example.
const Separator = " "

// Tokenizer is safe for concurrent use once constructed.
type Tokenizer struct {
	compounds    map[string]struct{}
	maxSyllables int
}

// New returns a Tokenizer backed by the embedded compound dictionary.
func New() *Tokenizer {
	var words []string
	sc := bufio.NewScanner(strings.NewReader(defaultCompounds))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return NewWithDictionary(words)
}

// NewWithDictionary builds a Tokenizer over the given multi-syllable words.
// Single-syllable entries are ignored.
func NewWithDictionary(words []string) *Tokenizer {
	t := &Tokenizer{compounds: make(map[string]struct{}, len(words))}
	for _, w := range words {
		syl := syllables(w)
		if len(syl) < 2 {
			continue
		}
		t.compounds[strings.Join(syl, " ")] = struct{}{}
		if len(syl) > t.maxSyllables {
			t.maxSyllables = len(syl)
		}
	}
	return t
}

// Tokenize returns word tokens in input order.
func (t *Tokenizer) Tokenize(text string) []string {
	syl := syllables(text)
	if len(syl) == 0 {
		return nil
	}
	tokens := make([]string, 0, len(syl))
	for i := 0; i < len(syl); {
		n := t.longestMatch(syl[i:])
		tokens = append(tokens, strings.Join(syl[i:i+n], "_"))
		i += n
	}
	return tokens
}

// longestMatch returns how many leading syllables form one word, at least 1.
func (t *Tokenizer) longestMatch(syl []string) int {
	limit := t.maxSyllables
	if limit > len(syl) {
		limit = len(syl)
	}
	for n := limit; n >= 2; n-- {
		if _, ok := t.compounds[strings.Join(syl[:n], " ")]; ok {
			return n
		}
	}
	return 1
}

// syllables normalizes s and splits it into lowercase syllables.
func syllables(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ToLower(norm.NFC.String(s))
	return strings.FieldsFunc(s, func(r rune) bool {
		return !isWordRune(r)
	})
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r) || r == '_'
}

// Join renders tokens in the stored text form.
func Join(tokens []string) string {
	return strings.Join(tokens, Separator)
}

var std = New()

// Resegment tokenizes stored example text with the embedded dictionary.
// Text already in stored form comes back as the tokens it was joined from;
// hand-edited rows get the same casing and segmentation as fresh input.
func Resegment(text string) []string {
	return std.Tokenize(text)
}
