package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/xaenox/sentiment-bot/internal/models"
)

var sample = []models.Example{
	{Text: "tôi vui", Label: models.Positive},
	{Text: "tôi buồn", Label: models.Negative},
	{Text: "tôi học", Label: models.Neutral},
	{Text: "trời đẹp, \"thật\" tuyệt_vời", Label: models.Positive},
}

type backend struct {
	name string
	// open returns a store over dir; calling it twice reopens the same data.
	open       func(t *testing.T, dir string) Storage
	persistent bool
}

func backends() []backend {
	logger := zap.NewNop()
	return []backend{
		{
			name: "memory",
			open: func(t *testing.T, dir string) Storage { return NewMemoryStorage() },
		},
		{
			name: "csv",
			open: func(t *testing.T, dir string) Storage {
				s, err := NewCSVStorage(filepath.Join(dir, "data.csv"), logger)
				if err != nil {
					t.Fatalf("NewCSVStorage: %v", err)
				}
				return s
			},
			persistent: true,
		},
		{
			name: "sqlite",
			open: func(t *testing.T, dir string) Storage {
				s, err := NewSQLiteStorage(filepath.Join(dir, "data.db"), logger)
				if err != nil {
					t.Fatalf("NewSQLiteStorage: %v", err)
				}
				return s
			},
			persistent: true,
		},
		{
			name: "bolt",
			open: func(t *testing.T, dir string) Storage {
				s, err := NewBoltStorage(filepath.Join(dir, "data.bolt"), logger)
				if err != nil {
					t.Fatalf("NewBoltStorage: %v", err)
				}
				return s
			},
			persistent: true,
		},
	}
}

func TestStorageContract(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			dir := t.TempDir()
			s := b.open(t, dir)

			got, err := s.Load(ctx)
			if err != nil {
				t.Fatalf("Load on empty store: %v", err)
			}
			if len(got) != 0 {
				t.Fatalf("empty store returned %d examples", len(got))
			}

			for _, ex := range sample {
				if err := s.Append(ctx, ex); err != nil {
					t.Fatalf("Append(%v): %v", ex, err)
				}
			}

			if n, err := s.Size(ctx); err != nil || n != len(sample) {
				t.Fatalf("Size = %d, %v; want %d", n, err, len(sample))
			}
			got, err = s.Load(ctx)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !reflect.DeepEqual(got, sample) {
				t.Fatalf("Load = %v, want %v", got, sample)
			}

			if err := s.Append(ctx, models.Example{Text: "tôi", Label: "angry"}); !errors.Is(err, models.ErrInvalidLabel) {
				t.Errorf("invalid label err = %v", err)
			}
			if n, _ := s.Size(ctx); n != len(sample) {
				t.Errorf("rejected append changed size to %d", n)
			}

			if err := s.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}
			if !b.persistent {
				return
			}

			reopened := b.open(t, dir)
			defer reopened.Close()
			got, err = reopened.Load(ctx)
			if err != nil {
				t.Fatalf("Load after reopen: %v", err)
			}
			if !reflect.DeepEqual(got, sample) {
				t.Errorf("after reopen Load = %v, want %v", got, sample)
			}
		})
	}
}

func TestLoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage(sample...)
	got, _ := s.Load(ctx)
	got[0].Text = "changed"
	again, _ := s.Load(ctx)
	if again[0].Text != sample[0].Text {
		t.Error("Load exposed internal slice")
	}
}

func TestCSVCreatesHeaderOnlyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "data.csv")
	if _, err := NewCSVStorage(path, zap.NewNop()); err != nil {
		t.Fatal(err)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "text,label\n" {
		t.Errorf("file = %q", body)
	}
}

func TestCSVReadsForeignLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	body := "\ufefflabel,text\npositive,tôi vui\nnegative,\"tôi, buồn\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := NewCSVStorage(path, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	got, _ := s.Load(context.Background())
	want := []models.Example{
		{Text: "tôi vui", Label: models.Positive},
		{Text: "tôi, buồn", Label: models.Negative},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load = %v, want %v", got, want)
	}
}

func TestCSVMalformed(t *testing.T) {
	tests := map[string]string{
		"bad label":      "text,label\ntôi vui,happy\n",
		"missing column": "text\ntôi vui\n",
		"empty text":     "text,label\n,positive\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "data.csv")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := NewCSVStorage(path, zap.NewNop()); !errors.Is(err, ErrMalformed) {
				t.Errorf("err = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestCSVUnavailable(t *testing.T) {
	dir := t.TempDir()
	// A directory where the file should be cannot be read as CSV.
	path := filepath.Join(dir, "data.csv")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := NewCSVStorage(path, zap.NewNop()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestCSVAppendFailureKeepsState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	s, err := NewCSVStorage(path, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	// Replacing the file with a non-empty directory makes the rename fail.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(path, "block"), 0o755); err != nil {
		t.Fatal(err)
	}

	err = s.Append(context.Background(), sample[0])
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if n, _ := s.Size(context.Background()); n != 0 {
		t.Errorf("Size = %d after failed append", n)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open(Options{Backend: "redis"}, zap.NewNop()); err == nil {
		t.Error("expected error")
	}
}
