// Package evaluation splits labeled examples and scores a fitted pair.
package evaluation

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/xaenox/sentiment-bot/internal/classifier"
	"github.com/xaenox/sentiment-bot/internal/models"
	"github.com/xaenox/sentiment-bot/internal/tokenizer"
)

var ErrEmptySplit = errors.New("split leaves no examples on one side")

// Split shuffles examples with seed and holds out ceil(n*testSize) of them.
// The same seed and input always give the same split.
func Split(examples []models.Example, testSize float64, seed int64) (train, test []models.Example, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size %v must be in (0, 1)", testSize)
	}
	n := len(examples)
	nTest := int(math.Ceil(float64(n) * testSize))
	if nTest == 0 || nTest >= n {
		return nil, nil, fmt.Errorf("%w: %d examples, test size %v", ErrEmptySplit, n, testSize)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	test = make([]models.Example, 0, nTest)
	train = make([]models.Example, 0, n-nTest)
	for i, idx := range perm {
		if i < nTest {
			test = append(test, examples[idx])
		} else {
			train = append(train, examples[idx])
		}
	}
	return train, test, nil
}

// ClassMetrics are the per-label scores of a Report.
type ClassMetrics struct {
	Label     models.Label `yaml:"label"`
	Precision float64      `yaml:"precision"`
	Recall    float64      `yaml:"recall"`
	F1        float64      `yaml:"f1"`
	Support   int          `yaml:"support"`
}

type Report struct {
	Accuracy float64        `yaml:"accuracy"`
	Classes  []ClassMetrics `yaml:"classes"`
	// Confusion is indexed [actual][predicted] in models.Labels order.
	Confusion [][]int `yaml:"confusion"`
	Total     int     `yaml:"total"`
}

// Evaluate predicts every example with pair and compares against its label.
// Input with no known tokens still gets the classifier's bias-only answer.
func Evaluate(pair *classifier.Pair, examples []models.Example) (Report, error) {
	if !pair.Trained() {
		return Report{}, classifier.ErrUntrained
	}
	index := make(map[models.Label]int, len(models.Labels))
	for i, l := range models.Labels {
		index[l] = i
	}
	confusion := make([][]int, len(models.Labels))
	for i := range confusion {
		confusion[i] = make([]int, len(models.Labels))
	}

	correct := 0
	for _, ex := range examples {
		x := pair.Vectorizer().Transform(tokenizer.Resegment(ex.Text))
		got, _, err := pair.Classifier().Predict(x)
		if err != nil {
			return Report{}, fmt.Errorf("failed to predict %q: %w", ex.Text, err)
		}
		a, ok := index[ex.Label]
		if !ok {
			return Report{}, fmt.Errorf("%w: %q", models.ErrInvalidLabel, string(ex.Label))
		}
		confusion[a][index[got]]++
		if got == ex.Label {
			correct++
		}
	}

	r := Report{Confusion: confusion, Total: len(examples)}
	if len(examples) > 0 {
		r.Accuracy = float64(correct) / float64(len(examples))
	}
	for i, l := range models.Labels {
		var predicted, actual int
		for j := range models.Labels {
			predicted += confusion[j][i]
			actual += confusion[i][j]
		}
		tp := confusion[i][i]
		m := ClassMetrics{Label: l, Support: actual}
		m.Precision = ratio(tp, predicted)
		m.Recall = ratio(tp, actual)
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		r.Classes = append(r.Classes, m)
	}
	return r, nil
}

// MacroAvg averages precision, recall and F1 over labels with support.
func (r Report) MacroAvg() ClassMetrics {
	avg := ClassMetrics{Label: "macro avg", Support: r.Total}
	n := 0
	for _, m := range r.Classes {
		if m.Support == 0 {
			continue
		}
		avg.Precision += m.Precision
		avg.Recall += m.Recall
		avg.F1 += m.F1
		n++
	}
	if n > 0 {
		avg.Precision /= float64(n)
		avg.Recall /= float64(n)
		avg.F1 /= float64(n)
	}
	return avg
}

// WeightedAvg weights each label's scores by its support.
func (r Report) WeightedAvg() ClassMetrics {
	avg := ClassMetrics{Label: "weighted avg", Support: r.Total}
	if r.Total == 0 {
		return avg
	}
	for _, m := range r.Classes {
		w := float64(m.Support) / float64(r.Total)
		avg.Precision += w * m.Precision
		avg.Recall += w * m.Recall
		avg.F1 += w * m.F1
	}
	return avg
}

// Format writes the per-class table and the confusion matrix.
func (r Report) Format(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "\tprecision\trecall\tf1-score\tsupport\t")
	for _, m := range r.Classes {
		writeRow(tw, m)
	}
	fmt.Fprintln(tw, "\t\t\t\t\t")
	fmt.Fprintf(tw, "accuracy\t\t\t%.3f\t%d\t\n", r.Accuracy, r.Total)
	writeRow(tw, r.MacroAvg())
	writeRow(tw, r.WeightedAvg())
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nConfusion matrix (hàng: thực tế, cột: dự đoán)")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "\t")
	for _, l := range models.Labels {
		fmt.Fprintf(tw, "%s\t", l)
	}
	fmt.Fprintln(tw)
	for i, l := range models.Labels {
		fmt.Fprintf(tw, "%s\t", l)
		for j := range models.Labels {
			fmt.Fprintf(tw, "%d\t", r.Confusion[i][j])
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// WriteYAML writes the report with both averages for machine consumption.
func (r Report) WriteYAML(w io.Writer) error {
	doc := struct {
		Report      `yaml:",inline"`
		Labels      []models.Label `yaml:"labels"`
		MacroAvg    ClassMetrics   `yaml:"macro_avg"`
		WeightedAvg ClassMetrics   `yaml:"weighted_avg"`
	}{r, models.Labels, r.MacroAvg(), r.WeightedAvg()}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}

func writeRow(w io.Writer, m ClassMetrics) {
	fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%.3f\t%d\t\n", m.Label, m.Precision, m.Recall, m.F1, m.Support)
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}
