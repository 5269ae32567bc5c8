package stats

import (
	"math"
	"testing"

	"github.com/xaenox/sentiment-bot/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		pos, neg, neu int
		want          Category
	}{
		{"empty", 0, 0, 0, NoData},
		{"balanced", 5, 5, 5, Balanced},
		{"balanced small", 3, 3, 3, Balanced},
		{"pos-neg tie", 4, 4, 2, PositiveNegativeTie},
		{"pos-neg tie zero neutral", 1, 1, 0, PositiveNegativeTie},
		{"pos-neu tie", 3, 1, 3, PositiveNeutralTie},
		{"neg-neu tie", 0, 2, 2, NegativeNeutralTie},
		{"dominant positive", 4, 3, 3, DominantPositive},
		{"dominant negative", 1, 6, 2, DominantNegative},
		{"dominant neutral over tie", 2, 2, 3, DominantNeutral},
		{"single positive", 1, 0, 0, DominantPositive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(Snapshot{Positive: tt.pos, Negative: tt.neg, Neutral: tt.neu, Total: tt.pos + tt.neg + tt.neu})
			if got != tt.want {
				t.Errorf("Classify(%d,%d,%d) = %s, want %s", tt.pos, tt.neg, tt.neu, got, tt.want)
			}
		})
	}
}

func TestEveryCategoryHasDescriptor(t *testing.T) {
	for c := Balanced; c <= Mixed; c++ {
		if c.Indicator() == "" || c.Message() == "" {
			t.Errorf("%s has no indicator or message", c)
		}
	}
	if NoData.Indicator() != "" || NoData.Message() != "" {
		t.Error("NoData must carry no message")
	}
}

func TestSummarize(t *testing.T) {
	examples := []models.Example{
		{Text: "a", Label: models.Positive},
		{Text: "b", Label: models.Positive},
		{Text: "c", Label: models.Negative},
		{Text: "d", Label: models.Neutral},
	}
	s := Summarize(examples)
	if s.Snapshot != (Snapshot{Positive: 2, Negative: 1, Neutral: 1, Total: 4}) {
		t.Fatalf("Snapshot = %+v", s.Snapshot)
	}
	if s.Category != DominantPositive || s.Indicator != "😊" {
		t.Errorf("Category = %s %q", s.Category, s.Indicator)
	}
	want := Percentages{Positive: 50, Negative: 25, Neutral: 25}
	if s.Percentages != want {
		t.Errorf("Percentages = %+v, want %+v", s.Percentages, want)
	}
	sum := s.Percentages.Positive + s.Percentages.Negative + s.Percentages.Neutral
	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("percentages sum to %v", sum)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Category != NoData || s.Message != "" || s.Percentages != (Percentages{}) {
		t.Errorf("empty summary = %+v", s)
	}
}
