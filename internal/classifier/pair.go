package classifier

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/xaenox/sentiment-bot/internal/models"
	"github.com/xaenox/sentiment-bot/internal/tokenizer"
)

var (
	// ErrUntrained is returned when the pair has no fitted classifier.
	ErrUntrained = errors.New("model not trained")
	// ErrNoFeatures means none of the input tokens are in the vocabulary.
	ErrNoFeatures = errors.New("input has no known features")
)

// Pair is the vectorizer and the classifier fitted against it. The two are
// always loaded, saved and replaced together; a Pair is immutable apart from
// its stale flag.
type Pair struct {
	vectorizer *Vectorizer
	classifier Classifier
	stale      atomic.Bool

	// examples is how many rows the pair was fitted on, 0 when unknown.
	examples int
}

// Untrained returns the cold-start pair: an empty vocabulary and no classifier.
func Untrained() *Pair {
	return &Pair{vectorizer: &Vectorizer{Vocabulary: map[string]int{}}}
}

// NewPair checks that both halves are well formed and that c was fitted
// against v's vocabulary.
func NewPair(v *Vectorizer, c Classifier) (*Pair, error) {
	if v == nil || c == nil {
		return nil, errors.New("pair needs both a vectorizer and a classifier")
	}
	if err := v.validate(); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", c.Kind(), err)
	}
	if c.Dims() != v.Size() {
		return nil, fmt.Errorf("%w: classifier has %d features, vocabulary has %d",
			ErrDimensionMismatch, c.Dims(), v.Size())
	}
	return &Pair{vectorizer: v, classifier: c}, nil
}

// Train fits a fresh vectorizer over every example and then fits c against it.
// Stored text is resegmented first so hand-edited rows share the input's
// token space.
func Train(examples []models.Example, c Classifier) (*Pair, error) {
	docs := make([][]string, len(examples))
	labels := make([]models.Label, len(examples))
	for i, ex := range examples {
		docs[i] = tokenizer.Resegment(ex.Text)
		labels[i] = ex.Label
	}
	v := FitVectorizer(docs)
	if v.Size() == 0 {
		return nil, fmt.Errorf("%w: empty vocabulary", ErrNoTrainingData)
	}

	x := make([][]float64, len(examples))
	for i, doc := range docs {
		x[i] = v.Transform(doc)
	}
	if err := c.Fit(x, labels); err != nil {
		return nil, fmt.Errorf("failed to fit %s: %w", c.Kind(), err)
	}
	p, err := NewPair(v, c)
	if err != nil {
		return nil, err
	}
	p.examples = len(examples)
	return p, nil
}

func (p *Pair) Vectorizer() *Vectorizer { return p.vectorizer }

func (p *Pair) Classifier() Classifier { return p.classifier }

func (p *Pair) Trained() bool { return p.classifier != nil }

// Examples is the number of rows the pair was fitted on. Pairs read from the
// legacy split layout report 0.
func (p *Pair) Examples() int { return p.examples }

// Predict vectorizes tokens and asks the classifier for the likeliest label.
func (p *Pair) Predict(tokens []string) (models.Label, float64, error) {
	if !p.Trained() {
		return "", 0, ErrUntrained
	}
	x := p.vectorizer.Transform(tokens)
	known := false
	for _, v := range x {
		if v != 0 {
			known = true
			break
		}
	}
	if !known {
		return "", 0, ErrNoFeatures
	}
	return p.classifier.Predict(x)
}

// MarkStale records that the example store has rows this pair was not fitted on.
func (p *Pair) MarkStale() { p.stale.Store(true) }

func (p *Pair) Stale() bool { return p.stale.Load() }
