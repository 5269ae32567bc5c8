package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidLabel is returned for any label outside the three sentiment classes.
var ErrInvalidLabel = errors.New("invalid label")

// Label is the sentiment class attached to an example.
type Label string

const (
	Positive Label = "positive"
	Negative Label = "negative"
	Neutral  Label = "neutral"
)

// Labels lists the classes in display order.
var Labels = []Label{Positive, Negative, Neutral}

func (l Label) Valid() bool {
	switch l {
	case Positive, Negative, Neutral:
		return true
	}
	return false
}

func (l Label) String() string {
	return string(l)
}

// ParseLabel accepts a label name in any case, surrounded by spaces or not.
func ParseLabel(s string) (Label, error) {
	l := Label(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidLabel, s)
	}
	return l, nil
}

// Example is one labeled training row. Text holds the tokenized form,
// tokens joined by a single space.
type Example struct {
	Text  string `json:"text" db:"text"`
	Label Label  `json:"label" db:"label"`
}

// Validate checks the invariants every stored example must satisfy.
func (e Example) Validate() error {
	if strings.TrimSpace(e.Text) == "" {
		return errors.New("example text is empty")
	}
	if !e.Label.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLabel, string(e.Label))
	}
	return nil
}
