package classifier

import (
	"fmt"
	"io"
	"math"

	"github.com/cdipaolo/goml/base"
	"github.com/cdipaolo/goml/linear"

	"github.com/xaenox/sentiment-bot/internal/models"
)

const logisticLearningRate = 0.5

// LogisticRegression is a multinomial (softmax) logistic regression fitted
// with goml's batch gradient method. Parameters start at zero, so fitting is
// deterministic. Theta keeps goml's layout: one row per class, the intercept
// in column 0 followed by one weight per feature.
type LogisticRegression struct {
	MaxIter int            `json:"max_iter"`
	C       float64        `json:"c"`
	Labels  []models.Label `json:"classes"`
	Theta   [][]float64    `json:"theta"`
	NFeat   int            `json:"n_features"`
}

// NewLogisticRegression uses c as the inverse regularization strength.
func NewLogisticRegression(maxIter int, c float64) *LogisticRegression {
	return &LogisticRegression{MaxIter: maxIter, C: c}
}

func (lr *LogisticRegression) Kind() string { return KindLogisticRegression }

func (lr *LogisticRegression) Dims() int { return lr.NFeat }

func (lr *LogisticRegression) Fit(x [][]float64, y []models.Label) error {
	dims, err := checkTrainingSet(x, y)
	if err != nil {
		return err
	}
	classes := classOrder(y)
	index := make(map[models.Label]int, len(classes))
	for i, l := range classes {
		index[l] = i
	}
	targets := make([]float64, len(y))
	for i, l := range y {
		targets[i] = float64(index[l])
	}

	// C scales the summed loss; goml averages it, so the penalty is 1/(C*n).
	lambda := 1 / (lr.C * float64(len(x)))
	model := linear.NewSoftmax(base.BatchGA, logisticLearningRate, lambda, len(classes), lr.MaxIter, x, targets)
	model.Output = io.Discard
	if err := model.Learn(); err != nil {
		return fmt.Errorf("softmax regression: %w", err)
	}

	lr.Labels = classes
	lr.Theta = model.Parameters
	lr.NFeat = dims
	return nil
}

func (lr *LogisticRegression) Predict(x []float64) (models.Label, float64, error) {
	if len(lr.Labels) == 0 {
		return "", 0, ErrNotFitted
	}
	if len(x) != lr.NFeat {
		return "", 0, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(x), lr.NFeat)
	}

	// goml sizes a model from a training set; one zero row stands in for it.
	model := linear.NewSoftmax(base.BatchGA, logisticLearningRate, 0, len(lr.Labels), 0,
		[][]float64{make([]float64, lr.NFeat)}, []float64{0})
	model.Output = io.Discard
	model.Parameters = lr.Theta
	probs, err := model.Predict(x)
	if err != nil {
		return "", 0, fmt.Errorf("softmax regression: %w", err)
	}

	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	if math.IsNaN(probs[best]) {
		return "", 0, fmt.Errorf("%w: probabilities overflowed", ErrCorruptArtifact)
	}
	return lr.Labels[best], probs[best], nil
}

func (lr *LogisticRegression) validate() error {
	if err := checkClasses(lr.Labels, len(lr.Theta)); err != nil {
		return err
	}
	return checkWidth(lr.Theta, lr.NFeat+1)
}
