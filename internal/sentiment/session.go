// Package sentiment runs the vocabulary-gated classify-or-label loop.
//
// A Session owns the example store and the current vectorizer/classifier
// pair. Input whose tokens are all in the vocabulary is classified; anything
// else is routed to a human for a label. Labeled examples are appended to the
// store but stay invisible to prediction until Retrain refits the pair from
// the whole store and swaps it in.
package sentiment

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/xaenox/sentiment-bot/internal/classifier"
	"github.com/xaenox/sentiment-bot/internal/models"
	"github.com/xaenox/sentiment-bot/internal/stats"
	"github.com/xaenox/sentiment-bot/internal/storage"
	"github.com/xaenox/sentiment-bot/internal/tokenizer"
)

// DefaultMinExamples is the smallest store Retrain will fit.
const DefaultMinExamples = 3

type Tokenizer interface {
	Tokenize(text string) []string
}

// LabelSuggester offers a label hint during labeling.
type LabelSuggester interface {
	Suggest(ctx context.Context, text string) (models.Label, error)
}

type Options struct {
	// MinExamples defaults to DefaultMinExamples.
	MinExamples int
	// ClassifierKind defaults to classifier.KindNaiveBayes.
	ClassifierKind string
	// Suggester is optional.
	Suggester LabelSuggester
}

// Session is the application context shared by one interactive run.
type Session struct {
	store          storage.Storage
	tokenizer      Tokenizer
	artifacts      *classifier.Artifacts
	pair           atomic.Pointer[classifier.Pair]
	minExamples    int
	classifierKind string
	suggester      LabelSuggester
	logger         *zap.Logger
}

// NewSession loads the stored pair, or fits one from the store when none can
// be read and the store is large enough. Otherwise it starts untrained.
func NewSession(ctx context.Context, store storage.Storage, tok Tokenizer, artifacts *classifier.Artifacts, opts Options, logger *zap.Logger) (*Session, error) {
	if opts.MinExamples <= 0 {
		opts.MinExamples = DefaultMinExamples
	}
	if opts.ClassifierKind == "" {
		opts.ClassifierKind = classifier.KindNaiveBayes
	}
	if _, err := classifier.New(opts.ClassifierKind); err != nil {
		return nil, err
	}

	s := &Session{
		store:          store,
		tokenizer:      tok,
		artifacts:      artifacts,
		minExamples:    opts.MinExamples,
		classifierKind: opts.ClassifierKind,
		suggester:      opts.Suggester,
		logger:         logger,
	}

	pair, format, err := artifacts.Load()
	if err == nil {
		n, err := s.Size(ctx)
		if err != nil {
			return nil, err
		}
		if n > pair.Examples() {
			pair.MarkStale()
		}
		logger.Info("Loaded model",
			zap.String("path", artifacts.ModelPath),
			zap.Stringer("format", format),
			zap.String("classifier", pair.Classifier().Kind()),
			zap.Int("vocabulary", pair.Vectorizer().Size()),
			zap.Int("fitted_examples", pair.Examples()),
			zap.Int("stored_examples", n),
			zap.Bool("stale", pair.Stale()))
		s.pair.Store(pair)
		return s, nil
	}
	if !errors.Is(err, classifier.ErrArtifactNotFound) {
		logger.Warn("Model artifact unusable, rebuilding from examples", zap.Error(err))
	}

	if err := s.bootstrap(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) bootstrap(ctx context.Context) error {
	examples, err := s.loadExamples(ctx)
	if err != nil {
		return err
	}
	if len(examples) < s.minExamples {
		s.logger.Info("Starting with an untrained model", zap.Int("examples", len(examples)))
		s.pair.Store(classifier.Untrained())
		return nil
	}

	pair, err := s.fit(examples)
	if err != nil {
		return err
	}
	if err := s.artifacts.Save(pair); err != nil {
		s.logger.Warn("Failed to save bootstrapped model", zap.Error(err))
	}
	s.logger.Info("Bootstrapped model from examples",
		zap.Int("examples", len(examples)),
		zap.Int("vocabulary", pair.Vectorizer().Size()))
	s.pair.Store(pair)
	return nil
}

// Pair returns the pair currently serving predictions.
func (s *Session) Pair() *classifier.Pair {
	return s.pair.Load()
}

// Stale reports whether examples were added since the pair was fitted.
func (s *Session) Stale() bool {
	return s.pair.Load().Stale()
}

func (s *Session) MinExamples() int {
	return s.minExamples
}

func (s *Session) Tokenize(text string) []string {
	return s.tokenizer.Tokenize(text)
}

// Route says which path an input takes.
type Route int

const (
	RoutePredict Route = iota + 1
	RouteLabel
)

func (r Route) String() string {
	switch r {
	case RoutePredict:
		return "predict"
	case RouteLabel:
		return "label"
	default:
		return fmt.Sprintf("Route(%d)", int(r))
	}
}

// Prediction is the classifier's answer for vocabulary-covered input.
type Prediction struct {
	Label      models.Label
	Confidence float64
}

// Analysis is the outcome of gating one input.
type Analysis struct {
	Input   string
	Tokens  []string
	Unknown []string
	Route   Route
	// Prediction is set when Route is RoutePredict and prediction succeeded.
	Prediction *Prediction
}

// Text is the stored form of the tokenized input.
func (a Analysis) Text() string {
	return tokenizer.Join(a.Tokens)
}

// Analyze tokenizes text and routes it. For RoutePredict the returned error
// is the prediction error, if any; the Analysis is still filled in.
func (s *Session) Analyze(ctx context.Context, text string) (Analysis, error) {
	tokens := s.tokenizer.Tokenize(text)
	a := Analysis{Input: text, Tokens: tokens}
	if len(tokens) == 0 {
		return a, ErrEmptyInput
	}

	pair := s.pair.Load()
	a.Unknown = UnknownTokens(tokens, pair.Vectorizer())
	if len(a.Unknown) > 0 {
		a.Route = RouteLabel
		return a, nil
	}

	a.Route = RoutePredict
	p, err := s.predict(pair, tokens)
	if err != nil {
		return a, err
	}
	a.Prediction = &p
	return a, nil
}

// Predict classifies tokens with the current pair. Every failure comes back
// as ErrModelNotTrained.
func (s *Session) Predict(tokens []string) (Prediction, error) {
	return s.predict(s.pair.Load(), tokens)
}

func (s *Session) predict(pair *classifier.Pair, tokens []string) (Prediction, error) {
	label, conf, err := pair.Predict(tokens)
	if err != nil {
		s.logger.Debug("Prediction unavailable", zap.Error(err), zap.Strings("tokens", tokens))
		return Prediction{}, fmt.Errorf("%w: %v", ErrModelNotTrained, err)
	}
	return Prediction{Label: label, Confidence: conf}, nil
}

// Suggest asks the optional suggester for a hint. ok is false when there is
// no suggester or it had no answer.
func (s *Session) Suggest(ctx context.Context, text string) (models.Label, bool) {
	if s.suggester == nil {
		return "", false
	}
	label, err := s.suggester.Suggest(ctx, text)
	if err != nil {
		s.logger.Debug("No label suggestion", zap.Error(err))
		return "", false
	}
	return label, true
}

// Submit stores tokens under label. The serving pair is not refitted; it is
// only marked stale until the next Retrain.
func (s *Session) Submit(ctx context.Context, rawText string, tokens []string, label models.Label) (models.Example, error) {
	if !label.Valid() {
		return models.Example{}, fmt.Errorf("%w: %q", ErrInvalidLabel, string(label))
	}
	if len(tokens) == 0 {
		return models.Example{}, ErrEmptyInput
	}

	ex := models.Example{Text: tokenizer.Join(tokens), Label: label}
	if err := s.store.Append(ctx, ex); err != nil {
		return models.Example{}, s.storageError("append example", err)
	}

	s.pair.Load().MarkStale()
	s.logger.Info("Saved labeled example",
		zap.String("input", rawText),
		zap.String("text", ex.Text),
		zap.String("label", string(label)))
	return ex, nil
}

// Retrain refits the pair from the whole store, saves it, and swaps it in.
// On any failure the serving pair is left as it was.
func (s *Session) Retrain(ctx context.Context) (*classifier.Pair, error) {
	examples, err := s.loadExamples(ctx)
	if err != nil {
		return nil, err
	}
	if len(examples) < s.minExamples {
		return nil, fmt.Errorf("%w: have %d examples, need %d", ErrInsufficientData, len(examples), s.minExamples)
	}

	pair, err := s.fit(examples)
	if err != nil {
		return nil, err
	}
	if err := s.artifacts.Save(pair); err != nil {
		s.logger.Error("Failed to save model", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	s.pair.Store(pair)
	s.logger.Info("Retrained model",
		zap.Int("examples", len(examples)),
		zap.Int("vocabulary", pair.Vectorizer().Size()),
		zap.String("classifier", s.classifierKind))
	return pair, nil
}

func (s *Session) fit(examples []models.Example) (*classifier.Pair, error) {
	c, err := classifier.New(s.classifierKind)
	if err != nil {
		return nil, err
	}
	pair, err := classifier.Train(examples, c)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInsufficientData, err)
	}
	return pair, nil
}

// Stats summarizes the label distribution of the store.
func (s *Session) Stats(ctx context.Context) (stats.Summary, error) {
	examples, err := s.loadExamples(ctx)
	if err != nil {
		return stats.Summary{}, err
	}
	return stats.Summarize(examples), nil
}

// Recent returns up to n of the most recently stored examples, oldest first.
func (s *Session) Recent(ctx context.Context, n int) ([]models.Example, error) {
	examples, err := s.loadExamples(ctx)
	if err != nil {
		return nil, err
	}
	if n >= 0 && len(examples) > n {
		examples = examples[len(examples)-n:]
	}
	return examples, nil
}

// Size is the number of stored examples.
func (s *Session) Size(ctx context.Context) (int, error) {
	n, err := s.store.Size(ctx)
	if err != nil {
		return 0, s.storageError("count examples", err)
	}
	return n, nil
}

func (s *Session) loadExamples(ctx context.Context) ([]models.Example, error) {
	examples, err := s.store.Load(ctx)
	if err != nil {
		return nil, s.storageError("load examples", err)
	}
	return examples, nil
}

func (s *Session) storageError(op string, err error) error {
	if errors.Is(err, ErrInvalidLabel) {
		return err
	}
	s.logger.Error("Example store failed", zap.String("op", op), zap.Error(err))
	if errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
}
