package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/xaenox/sentiment-bot/internal/models"
	"github.com/xaenox/sentiment-bot/internal/stats"
	"github.com/xaenox/sentiment-bot/internal/storage"
)

type recordingUI struct {
	messages    []string
	severities  []Severity
	answer      models.Label
	cancel      bool
	asked       []string
	suggestions []models.Label
	tables      [][]models.Example
	summaries   []stats.Summary
}

func (u *recordingUI) Present(_ context.Context, msg string, sev Severity) error {
	u.messages = append(u.messages, msg)
	u.severities = append(u.severities, sev)
	return nil
}

func (u *recordingUI) RequestLabel(_ context.Context, candidate string, suggestion models.Label) (models.Label, bool, error) {
	u.asked = append(u.asked, candidate)
	u.suggestions = append(u.suggestions, suggestion)
	if u.cancel {
		return "", false, nil
	}
	return u.answer, true, nil
}

func (u *recordingUI) RenderTable(_ context.Context, recent []models.Example) error {
	u.tables = append(u.tables, recent)
	return nil
}

func (u *recordingUI) RenderDistribution(_ context.Context, summary stats.Summary) error {
	u.summaries = append(u.summaries, summary)
	return nil
}

func (u *recordingUI) said(substr string) bool {
	for _, m := range u.messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

type fixedSuggester struct {
	label models.Label
	err   error
}

func (f fixedSuggester) Suggest(context.Context, string) (models.Label, error) {
	return f.label, f.err
}

func TestInteractLabelsUnknownInput(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	s := newSession(t, store)
	s.suggester = fixedSuggester{label: models.Negative}
	ui := &recordingUI{answer: models.Negative}

	if err := s.Interact(ctx, ui, "Tôi giận"); err != nil {
		t.Fatalf("Interact: %v", err)
	}
	if len(ui.asked) != 1 || ui.asked[0] != "Tôi giận" {
		t.Fatalf("asked = %q", ui.asked)
	}
	if ui.suggestions[0] != models.Negative {
		t.Errorf("suggestion = %q, want negative", ui.suggestions[0])
	}
	if !ui.said("2 từ: tôi, giận") {
		t.Errorf("unknown words not reported: %q", ui.messages)
	}
	if !ui.said("'Tôi giận' → negative") {
		t.Errorf("save not confirmed: %q", ui.messages)
	}

	examples, _ := store.Load(ctx)
	if len(examples) != 1 || examples[0].Text != "tôi giận" || examples[0].Label != models.Negative {
		t.Errorf("stored = %v", examples)
	}
}

func TestInteractCancelStoresNothing(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	s := newSession(t, store)
	s.suggester = fixedSuggester{err: errors.New("quota")}
	ui := &recordingUI{cancel: true}

	if err := s.Interact(ctx, ui, "tôi giận"); err != nil {
		t.Fatal(err)
	}
	if ui.suggestions[0] != "" {
		t.Errorf("failed suggester should give no hint, got %q", ui.suggestions[0])
	}
	if !ui.said(MsgCancelled) {
		t.Errorf("messages = %q", ui.messages)
	}
	if n, _ := store.Size(ctx); n != 0 {
		t.Errorf("cancel stored %d rows", n)
	}
}

func TestInteractPredictsKnownInput(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, storage.NewMemoryStorage(
		models.Example{Text: "tôi vui", Label: models.Positive},
		models.Example{Text: "tôi buồn", Label: models.Negative},
		models.Example{Text: "tôi học", Label: models.Neutral},
	))
	ui := &recordingUI{}

	if err := s.Interact(ctx, ui, "Tôi VUI!"); err != nil {
		t.Fatal(err)
	}
	if len(ui.asked) != 0 {
		t.Error("known input should not ask for a label")
	}
	if !ui.said("POSITIVE 😊") {
		t.Errorf("messages = %q", ui.messages)
	}
}

func TestInteractInvalidLabel(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	s := newSession(t, store)
	ui := &recordingUI{answer: "angry"}

	if err := s.Interact(ctx, ui, "tôi giận"); err != nil {
		t.Fatal(err)
	}
	if !ui.said(MsgInvalidLabel) {
		t.Errorf("messages = %q", ui.messages)
	}
	if n, _ := store.Size(ctx); n != 0 {
		t.Errorf("invalid label stored %d rows", n)
	}
}

func TestInteractEmptyInput(t *testing.T) {
	s := newSession(t, storage.NewMemoryStorage())
	ui := &recordingUI{}
	if err := s.Interact(context.Background(), ui, "   "); err != nil {
		t.Fatal(err)
	}
	if len(ui.messages) != 1 || ui.messages[0] != MsgEmptyInput {
		t.Errorf("messages = %q", ui.messages)
	}
}

func TestInteractStorageFailureIsReturned(t *testing.T) {
	s := newSession(t, storage.NewMemoryStorage())
	s.store = failingStore{}
	ui := &recordingUI{answer: models.Positive}

	err := s.Interact(context.Background(), ui, "tôi vui")
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("err = %v, want ErrStorageUnavailable", err)
	}
	if ui.severities[len(ui.severities)-1] != Error {
		t.Error("storage failure should be presented as an error")
	}
}

func TestRetrainWith(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, storage.NewMemoryStorage())
	ui := &recordingUI{}

	if err := s.RetrainWith(ctx, ui); err != nil {
		t.Fatal(err)
	}
	if !ui.said(InsufficientDataMessage(DefaultMinExamples)) {
		t.Errorf("messages = %q", ui.messages)
	}

	submit(t, s, "tôi vui", models.Positive)
	submit(t, s, "tôi buồn", models.Negative)
	submit(t, s, "tôi học", models.Neutral)
	if err := s.RetrainWith(ctx, ui); err != nil {
		t.Fatal(err)
	}
	if ui.messages[len(ui.messages)-1] != MsgRetrained {
		t.Errorf("last message = %q", ui.messages[len(ui.messages)-1])
	}
}

func TestShowData(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, storage.NewMemoryStorage())
	ui := &recordingUI{}

	if err := s.ShowData(ctx, ui, 10); err != nil {
		t.Fatal(err)
	}
	if !ui.said(MsgNoData) {
		t.Errorf("empty store: messages = %q", ui.messages)
	}

	for i := 0; i < 12; i++ {
		submit(t, s, fmt.Sprintf("câu %d", i), models.Positive)
	}
	if err := s.ShowData(ctx, ui, 10); err != nil {
		t.Fatal(err)
	}
	if len(ui.tables) != 1 || len(ui.tables[0]) != 10 || ui.tables[0][9].Text != "câu 11" {
		t.Fatalf("tables = %v", ui.tables)
	}
	if ui.summaries[0].Category != stats.DominantPositive {
		t.Errorf("category = %s", ui.summaries[0].Category)
	}
	if !ui.said(MsgStale) {
		t.Error("stale hint missing")
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		err error
		msg string
		sev Severity
	}{
		{fmt.Errorf("wrap: %w", ErrStorageUnavailable), MsgStorage, Error},
		{ErrInsufficientData, InsufficientDataMessage(5), Warning},
		{ErrModelNotTrained, MsgNotTrained, Warning},
		{ErrInvalidLabel, MsgInvalidLabel, Warning},
		{ErrEmptyInput, MsgEmptyInput, Warning},
		{errors.New("boom"), MsgUnexpected, Error},
	}
	for _, tt := range tests {
		msg, sev := ErrorMessage(tt.err, 5)
		if msg != tt.msg || sev != tt.sev {
			t.Errorf("ErrorMessage(%v) = %q, %s; want %q, %s", tt.err, msg, sev, tt.msg, tt.sev)
		}
	}
}
