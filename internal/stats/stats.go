// Package stats summarizes the label distribution of the example store.
package stats

import (
	"fmt"

	"github.com/xaenox/sentiment-bot/internal/models"
)

// Category is the shape of the label distribution.
type Category int

const (
	NoData Category = iota
	Balanced
	PositiveNegativeTie
	PositiveNeutralTie
	NegativeNeutralTie
	DominantPositive
	DominantNegative
	DominantNeutral
	Mixed
)

func (c Category) String() string {
	switch c {
	case NoData:
		return "no_data"
	case Balanced:
		return "balanced"
	case PositiveNegativeTie:
		return "positive_negative_tie"
	case PositiveNeutralTie:
		return "positive_neutral_tie"
	case NegativeNeutralTie:
		return "negative_neutral_tie"
	case DominantPositive:
		return "dominant_positive"
	case DominantNegative:
		return "dominant_negative"
	case DominantNeutral:
		return "dominant_neutral"
	case Mixed:
		return "mixed"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

type descriptor struct {
	indicator string
	message   string
}

var descriptors = map[Category]descriptor{
	Balanced:            {"⚖️", "Dữ liệu cân bằng giữa tích cực, tiêu cực và trung lập."},
	PositiveNegativeTie: {"🎭", "Tích cực và tiêu cực ngang nhau, ít câu trung lập hơn."},
	PositiveNeutralTie:  {"🙂", "Tích cực và trung lập ngang nhau, ít câu tiêu cực hơn."},
	NegativeNeutralTie:  {"😕", "Tiêu cực và trung lập ngang nhau, ít câu tích cực hơn."},
	DominantPositive:    {"😊", "Phần lớn dữ liệu mang cảm xúc tích cực."},
	DominantNegative:    {"😞", "Phần lớn dữ liệu mang cảm xúc tiêu cực."},
	DominantNeutral:     {"😐", "Phần lớn dữ liệu mang cảm xúc trung lập."},
	Mixed:               {"🔀", "Dữ liệu pha trộn, không có xu hướng rõ ràng."},
}

// Indicator is the fixed symbol for c; empty for NoData.
func (c Category) Indicator() string { return descriptors[c].indicator }

// Message is the fixed description for c; empty for NoData.
func (c Category) Message() string { return descriptors[c].message }

// Snapshot holds the label counts. It is recomputed on demand and never stored.
type Snapshot struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
	Total    int `json:"total"`
}

// Count tallies examples by label.
func Count(examples []models.Example) Snapshot {
	var s Snapshot
	for _, ex := range examples {
		switch ex.Label {
		case models.Positive:
			s.Positive++
		case models.Negative:
			s.Negative++
		case models.Neutral:
			s.Neutral++
		default:
			continue
		}
		s.Total++
	}
	return s
}

// Of returns the count for one label.
func (s Snapshot) Of(l models.Label) int {
	switch l {
	case models.Positive:
		return s.Positive
	case models.Negative:
		return s.Negative
	case models.Neutral:
		return s.Neutral
	}
	return 0
}

// Classify applies the rules in precedence order: all equal, then the three
// two-way ties above the third count, then a single strict maximum.
func Classify(s Snapshot) Category {
	pos, neg, neu := s.Positive, s.Negative, s.Neutral
	switch {
	case pos+neg+neu == 0:
		return NoData
	case pos == neg && neg == neu:
		return Balanced
	case pos == neg && pos > neu:
		return PositiveNegativeTie
	case pos == neu && pos > neg:
		return PositiveNeutralTie
	case neg == neu && neg > pos:
		return NegativeNeutralTie
	case pos > neg && pos > neu:
		return DominantPositive
	case neg > pos && neg > neu:
		return DominantNegative
	case neu > pos && neu > neg:
		return DominantNeutral
	default:
		return Mixed
	}
}

// Percentages are count/total*100 per label; all zero when total is zero.
type Percentages struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

func (s Snapshot) Percentages() Percentages {
	if s.Total == 0 {
		return Percentages{}
	}
	total := float64(s.Total)
	return Percentages{
		Positive: float64(s.Positive) / total * 100,
		Negative: float64(s.Negative) / total * 100,
		Neutral:  float64(s.Neutral) / total * 100,
	}
}

// Of returns the percentage for one label.
func (p Percentages) Of(l models.Label) float64 {
	switch l {
	case models.Positive:
		return p.Positive
	case models.Negative:
		return p.Negative
	case models.Neutral:
		return p.Neutral
	}
	return 0
}

// Summary is everything a front-end needs to render the distribution.
type Summary struct {
	Snapshot    Snapshot    `json:"snapshot"`
	Percentages Percentages `json:"percentages"`
	Category    Category    `json:"category"`
	Indicator   string      `json:"indicator"`
	Message     string      `json:"message"`
}

func Summarize(examples []models.Example) Summary {
	snap := Count(examples)
	cat := Classify(snap)
	return Summary{
		Snapshot:    snap,
		Percentages: snap.Percentages(),
		Category:    cat,
		Indicator:   cat.Indicator(),
		Message:     cat.Message(),
	}
}
