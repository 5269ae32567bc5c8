package sentiment

import (
	"errors"

	"github.com/xaenox/sentiment-bot/internal/models"
	"github.com/xaenox/sentiment-bot/internal/storage"
)

var (
	// ErrStorageUnavailable is fatal for the operation; nothing is retried.
	ErrStorageUnavailable = storage.ErrUnavailable
	// ErrModelNotTrained covers a never-trained pair and any prediction failure.
	ErrModelNotTrained = errors.New("model not trained")
	// ErrInsufficientData means the store is below the retraining threshold.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidLabel rejects a submission before anything is persisted.
	ErrInvalidLabel = models.ErrInvalidLabel
	// ErrEmptyInput means the text produced no tokens.
	ErrEmptyInput = errors.New("input has no words")
)
