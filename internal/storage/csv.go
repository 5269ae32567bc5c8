package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/xaenox/sentiment-bot/internal/fsutil"
	"github.com/xaenox/sentiment-bot/internal/models"
)

var csvHeader = []string{"text", "label"}

// CSVStorage keeps examples in a UTF-8 CSV file with a text,label header,
// the layout the offline trainer and spreadsheet tools share. Every append
// rewrites the whole file.
type CSVStorage struct {
	mu       sync.Mutex
	path     string
	examples []models.Example
	logger   *zap.Logger
}

// NewCSVStorage reads path, creating it with only a header when it does not exist.
func NewCSVStorage(path string, logger *zap.Logger) (*CSVStorage, error) {
	s := &CSVStorage{path: path, logger: logger}

	examples, err := readCSV(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := writeCSV(path, nil); err != nil {
			return nil, unavailable("create "+path, err)
		}
		logger.Info("Created empty example store", zap.String("path", path))
	case err != nil:
		return nil, err
	default:
		s.examples = examples
		logger.Info("Loaded example store",
			zap.String("path", path),
			zap.Int("examples", len(examples)))
	}
	return s, nil
}

func (s *CSVStorage) Load(ctx context.Context) ([]models.Example, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]models.Example(nil), s.examples...), nil
}

func (s *CSVStorage) Append(ctx context.Context, example models.Example) error {
	if err := example.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.Example, len(s.examples), len(s.examples)+1)
	copy(next, s.examples)
	next = append(next, example)
	if err := writeCSV(s.path, next); err != nil {
		return unavailable("write "+s.path, err)
	}
	s.examples = next
	return nil
}

func (s *CSVStorage) Size(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.examples), nil
}

func (s *CSVStorage) Close() error {
	return nil
}

func readCSV(path string) ([]models.Example, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if err != nil {
		return nil, unavailable("open "+path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("read header of "+path, err)
	}

	textCol, labelCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case "text":
			textCol = i
		case "label":
			labelCol = i
		}
	}
	if textCol < 0 || labelCol < 0 {
		return nil, fmt.Errorf("%w: %s: header %q lacks text and label columns", ErrMalformed, path, header)
	}

	var examples []models.Example
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
		}
		ex := models.Example{Text: rec[textCol], Label: models.Label(strings.TrimSpace(rec[labelCol]))}
		if err := ex.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", ErrMalformed, path, line, err)
		}
		examples = append(examples, ex)
	}
	return examples, nil
}

func writeCSV(path string, examples []models.Example) error {
	return fsutil.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(csvHeader); err != nil {
			return err
		}
		for _, ex := range examples {
			if err := cw.Write([]string{ex.Text, string(ex.Label)}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}
