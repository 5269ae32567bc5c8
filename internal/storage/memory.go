package storage

import (
	"context"
	"sync"

	"github.com/xaenox/sentiment-bot/internal/models"
)

// MemoryStorage keeps examples for the lifetime of the process only.
type MemoryStorage struct {
	mu       sync.RWMutex
	examples []models.Example
}

func NewMemoryStorage(seed ...models.Example) *MemoryStorage {
	return &MemoryStorage{examples: append([]models.Example(nil), seed...)}
}

func (s *MemoryStorage) Load(ctx context.Context) ([]models.Example, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.Example(nil), s.examples...), nil
}

func (s *MemoryStorage) Append(ctx context.Context, example models.Example) error {
	if err := example.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.examples = append(s.examples, example)
	return nil
}

func (s *MemoryStorage) Size(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.examples), nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
