package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/xaenox/sentiment-bot/internal/models"
)

var (
	// ErrNotFitted is returned by Predict before a successful Fit.
	ErrNotFitted = errors.New("classifier not fitted")
	// ErrDimensionMismatch means a feature vector does not match the fitted width.
	ErrDimensionMismatch = errors.New("feature dimension mismatch")
	// ErrNoTrainingData is returned by Fit for an empty or ragged training set.
	ErrNoTrainingData = errors.New("no training data")
	// ErrCorruptArtifact means decoded parameters are internally inconsistent.
	ErrCorruptArtifact = errors.New("inconsistent model parameters")
)

// Classifier predicts one of the fitted labels from a count vector.
type Classifier interface {
	Kind() string
	Fit(x [][]float64, y []models.Label) error
	// Predict returns the most likely label and its probability.
	Predict(x []float64) (models.Label, float64, error)
	// Dims is the feature width the classifier was fitted with.
	Dims() int
	// validate checks decoded parameters before the classifier is served.
	validate() error
}

const (
	KindNaiveBayes         = "naive_bayes"
	KindLogisticRegression = "logistic_regression"
)

type maker func() Classifier

var makers = map[string]maker{
	KindNaiveBayes:         func() Classifier { return NewNaiveBayes(1.0) },
	KindLogisticRegression: func() Classifier { return NewLogisticRegression(200, 1.0) },
}

// New returns an unfitted classifier of the given kind.
func New(kind string) (Classifier, error) {
	m, ok := makers[kind]
	if !ok {
		return nil, fmt.Errorf("unknown classifier kind %q", kind)
	}
	return m(), nil
}

// envelope tags the serialized parameters with the classifier kind.
type envelope struct {
	Kind   string          `json:"kind"`
	Params json.RawMessage `json:"params"`
}

func marshalClassifier(c Classifier) ([]byte, error) {
	params, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", c.Kind(), err)
	}
	return json.Marshal(envelope{Kind: c.Kind(), Params: params})
}

func unmarshalClassifier(data []byte) (Classifier, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode classifier envelope: %w", err)
	}
	c, err := New(env.Kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(env.Params, c); err != nil {
		return nil, fmt.Errorf("failed to decode %s params: %w", env.Kind, err)
	}
	return c, nil
}

// classOrder returns the labels present in y, in models.Labels order.
func classOrder(y []models.Label) []models.Label {
	seen := make(map[models.Label]bool, len(models.Labels))
	for _, l := range y {
		seen[l] = true
	}
	classes := make([]models.Label, 0, len(models.Labels))
	for _, l := range models.Labels {
		if seen[l] {
			classes = append(classes, l)
		}
	}
	return classes
}

func checkTrainingSet(x [][]float64, y []models.Label) (int, error) {
	if len(x) == 0 || len(x) != len(y) {
		return 0, fmt.Errorf("%w: %d rows, %d labels", ErrNoTrainingData, len(x), len(y))
	}
	dims := len(x[0])
	for i, row := range x {
		if len(row) != dims {
			return 0, fmt.Errorf("%w: row %d has %d features, want %d", ErrNoTrainingData, i, len(row), dims)
		}
		if !y[i].Valid() {
			return 0, fmt.Errorf("row %d: %w: %q", i, models.ErrInvalidLabel, string(y[i]))
		}
	}
	return dims, nil
}

// checkClasses requires distinct valid labels and one parameter row per label.
func checkClasses(classes []models.Label, rows int) error {
	if len(classes) == 0 {
		return fmt.Errorf("%w: no classes", ErrCorruptArtifact)
	}
	seen := make(map[models.Label]bool, len(classes))
	for _, l := range classes {
		if !l.Valid() {
			return fmt.Errorf("%w: %w: %q", ErrCorruptArtifact, models.ErrInvalidLabel, string(l))
		}
		if seen[l] {
			return fmt.Errorf("%w: class %s listed twice", ErrCorruptArtifact, l)
		}
		seen[l] = true
	}
	if rows != len(classes) {
		return fmt.Errorf("%w: %d parameter rows for %d classes", ErrCorruptArtifact, rows, len(classes))
	}
	return nil
}

func checkWidth(rows [][]float64, width int) error {
	for i, row := range rows {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has width %d, want %d", ErrCorruptArtifact, i, len(row), width)
		}
	}
	return nil
}

// argmaxSoftmax picks the best score and turns scores into a probability.
// Ties go to the earlier class.
func argmaxSoftmax(scores []float64) (int, float64) {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	var sum float64
	for _, s := range scores {
		sum += math.Exp(s - scores[best])
	}
	return best, 1 / sum
}
