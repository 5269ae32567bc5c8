package sentiment

import (
	"context"
	"errors"

	"github.com/xaenox/sentiment-bot/internal/models"
	"github.com/xaenox/sentiment-bot/internal/stats"
)

// Presenter is the output side of a front-end.
type Presenter interface {
	Present(ctx context.Context, message string, severity Severity) error
	RenderTable(ctx context.Context, recent []models.Example) error
	RenderDistribution(ctx context.Context, summary stats.Summary) error
}

// UI is a front-end that can also block for a label.
type UI interface {
	Presenter
	// RequestLabel asks the user to label candidate. ok is false on cancel.
	// suggestion is empty when there is no hint.
	RequestLabel(ctx context.Context, candidate string, suggestion models.Label) (label models.Label, ok bool, err error)
}

// Interact runs one input through the gate and either presents a prediction
// or asks ui for a label and stores it. Only UI failures and an unavailable
// store are returned; every other outcome is presented to the user.
func (s *Session) Interact(ctx context.Context, ui UI, text string) error {
	a, err := s.Analyze(ctx, text)
	if errors.Is(err, ErrEmptyInput) {
		return ui.Present(ctx, MsgEmptyInput, Warning)
	}

	if a.Route == RoutePredict {
		if err != nil {
			return s.presentError(ctx, ui, err)
		}
		return ui.Present(ctx, PredictionMessage(*a.Prediction), Success)
	}

	if err := ui.Present(ctx, UnknownWordsMessage(a.Unknown), Warning); err != nil {
		return err
	}
	if err := ui.Present(ctx, MsgAskToTeach, Info); err != nil {
		return err
	}

	suggestion, _ := s.Suggest(ctx, text)
	label, ok, err := ui.RequestLabel(ctx, text, suggestion)
	if err != nil {
		return err
	}
	if !ok {
		return ui.Present(ctx, MsgCancelled, Info)
	}

	if _, err := s.Submit(ctx, text, a.Tokens, label); err != nil {
		return s.presentError(ctx, ui, err)
	}
	if err := ui.Present(ctx, SavedMessage(text, label), Success); err != nil {
		return err
	}
	return ui.Present(ctx, MsgRetrainHint, Info)
}

// RetrainWith runs Retrain and reports the outcome through ui.
func (s *Session) RetrainWith(ctx context.Context, ui Presenter) error {
	if _, err := s.Retrain(ctx); err != nil {
		return s.presentError(ctx, ui, err)
	}
	return ui.Present(ctx, MsgRetrained, Success)
}

// ShowData renders the last n examples and the label distribution.
func (s *Session) ShowData(ctx context.Context, ui Presenter, n int) error {
	recent, err := s.Recent(ctx, n)
	if err != nil {
		return s.presentError(ctx, ui, err)
	}
	if len(recent) == 0 {
		return ui.Present(ctx, MsgNoData, Info)
	}
	if err := ui.RenderTable(ctx, recent); err != nil {
		return err
	}

	summary, err := s.Stats(ctx)
	if err != nil {
		return s.presentError(ctx, ui, err)
	}
	if err := ui.RenderDistribution(ctx, summary); err != nil {
		return err
	}
	if s.Stale() {
		return ui.Present(ctx, MsgStale, Info)
	}
	return nil
}

func (s *Session) presentError(ctx context.Context, ui Presenter, err error) error {
	msg, sev := ErrorMessage(err, s.minExamples)
	if perr := ui.Present(ctx, msg, sev); perr != nil {
		return perr
	}
	if errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	return nil
}
