package classifier

import (
	"fmt"
	"math"

	"github.com/xaenox/sentiment-bot/internal/models"
)

// NaiveBayes is a multinomial naive Bayes classifier with additive smoothing.
type NaiveBayes struct {
	Alpha          float64        `json:"alpha"`
	Labels         []models.Label `json:"classes"`
	ClassLogPrior  []float64      `json:"class_log_prior"`
	FeatureLogProb [][]float64    `json:"feature_log_prob"`
	NFeatures      int            `json:"n_features"`
}

func NewNaiveBayes(alpha float64) *NaiveBayes {
	return &NaiveBayes{Alpha: alpha}
}

func (nb *NaiveBayes) Kind() string { return KindNaiveBayes }

func (nb *NaiveBayes) Dims() int { return nb.NFeatures }

func (nb *NaiveBayes) Fit(x [][]float64, y []models.Label) error {
	dims, err := checkTrainingSet(x, y)
	if err != nil {
		return err
	}
	classes := classOrder(y)
	index := make(map[models.Label]int, len(classes))
	for i, l := range classes {
		index[l] = i
	}

	docs := make([]float64, len(classes))
	counts := make([][]float64, len(classes))
	for i := range counts {
		counts[i] = make([]float64, dims)
	}
	for i, row := range x {
		c := index[y[i]]
		docs[c]++
		for j, v := range row {
			counts[c][j] += v
		}
	}

	prior := make([]float64, len(classes))
	flp := make([][]float64, len(classes))
	for c := range classes {
		prior[c] = math.Log(docs[c] / float64(len(x)))
		var total float64
		for _, v := range counts[c] {
			total += v
		}
		denom := math.Log(total + nb.Alpha*float64(dims))
		flp[c] = make([]float64, dims)
		for j, v := range counts[c] {
			flp[c][j] = math.Log(v+nb.Alpha) - denom
		}
	}

	nb.Labels = classes
	nb.ClassLogPrior = prior
	nb.FeatureLogProb = flp
	nb.NFeatures = dims
	return nil
}

func (nb *NaiveBayes) Predict(x []float64) (models.Label, float64, error) {
	if len(nb.Labels) == 0 {
		return "", 0, ErrNotFitted
	}
	if len(x) != nb.NFeatures {
		return "", 0, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(x), nb.NFeatures)
	}
	scores := make([]float64, len(nb.Labels))
	for c := range nb.Labels {
		s := nb.ClassLogPrior[c]
		for j, v := range x {
			if v != 0 {
				s += v * nb.FeatureLogProb[c][j]
			}
		}
		scores[c] = s
	}
	best, p := argmaxSoftmax(scores)
	return nb.Labels[best], p, nil
}

func (nb *NaiveBayes) validate() error {
	if err := checkClasses(nb.Labels, len(nb.ClassLogPrior)); err != nil {
		return err
	}
	if len(nb.FeatureLogProb) != len(nb.Labels) {
		return fmt.Errorf("%w: %d feature rows for %d classes", ErrCorruptArtifact, len(nb.FeatureLogProb), len(nb.Labels))
	}
	return checkWidth(nb.FeatureLogProb, nb.NFeatures)
}
