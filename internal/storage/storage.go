package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/xaenox/sentiment-bot/internal/models"
)

var (
	// ErrUnavailable means the medium could not be read or written at all.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrMalformed means persisted data exists but violates the example format.
	ErrMalformed = errors.New("malformed example data")
)

// Storage is the durable, append-only collection of labeled examples.
// Insertion order is preserved.
type Storage interface {
	Load(ctx context.Context) ([]models.Example, error)
	Append(ctx context.Context, example models.Example) error
	Size(ctx context.Context) (int, error)
	Close() error
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}
