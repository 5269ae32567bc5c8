package storage

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/xaenox/sentiment-bot/internal/models"
)

var bucketExamples = []byte("examples")

// BoltStorage keeps examples in a bbolt file keyed by a big-endian sequence
// number, so cursor order is insertion order. bbolt's file lock also keeps a
// second process off the same store.
type BoltStorage struct {
	db     *bbolt.DB
	logger *zap.Logger
}

func NewBoltStorage(path string, logger *zap.Logger) (*BoltStorage, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, unavailable("open "+path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketExamples)
		return err
	})
	if err != nil {
		db.Close()
		return nil, unavailable("create bucket", err)
	}

	logger.Info("Example store ready", zap.String("path", path))
	return &BoltStorage{db: db, logger: logger}, nil
}

func (s *BoltStorage) Load(ctx context.Context) ([]models.Example, error) {
	var examples []models.Example
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketExamples).ForEach(func(k, v []byte) error {
			var ex models.Example
			if err := json.Unmarshal(v, &ex); err != nil {
				return fmt.Errorf("%w: key %x: %v", ErrMalformed, k, err)
			}
			if err := ex.Validate(); err != nil {
				return fmt.Errorf("%w: key %x: %v", ErrMalformed, k, err)
			}
			examples = append(examples, ex)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return examples, nil
}

func (s *BoltStorage) Append(ctx context.Context, example models.Example) error {
	if err := example.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(example)
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketExamples)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return b.Put(key, data)
	})
	if err != nil {
		return unavailable("append example", err)
	}
	return nil
}

func (s *BoltStorage) Size(ctx context.Context) (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketExamples).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, unavailable("count examples", err)
	}
	return n, nil
}

func (s *BoltStorage) Close() error {
	return s.db.Close()
}
