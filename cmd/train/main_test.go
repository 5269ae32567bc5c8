package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/xaenox/sentiment-bot/internal/classifier"
	"github.com/xaenox/sentiment-bot/internal/storage"
	"github.com/xaenox/sentiment-bot/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Storage:  config.StorageConfig{Backend: "csv", DataFile: filepath.Join(dir, "data.csv")},
		Model:    config.ModelConfig{File: filepath.Join(dir, "model.json")},
		Training: config.TrainingConfig{MinExamples: 3, TestSize: 0.25, Seed: 42},
	}
}

func TestRunSavesCombinedArtifact(t *testing.T) {
	for _, kind := range []string{classifier.KindLogisticRegression, classifier.KindNaiveBayes} {
		t.Run(kind, func(t *testing.T) {
			cfg := testConfig(t)
			var out bytes.Buffer
			if err := run(context.Background(), cfg, options{kind: kind}, &out, zap.NewNop()); err != nil {
				t.Fatalf("run: %v", err)
			}
			for _, want := range []string{"12 mẫu", "Accuracy", "precision", "Confusion matrix"} {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q", want)
				}
			}

			pair, format, err := classifier.NewArtifacts(cfg.Model.File, "").Load()
			if err != nil {
				t.Fatal(err)
			}
			if format != classifier.FormatCombined || pair.Classifier().Kind() != kind {
				t.Errorf("loaded %s %s", format, pair.Classifier().Kind())
			}
			// 12 seed sentences with a quarter held out.
			if pair.Examples() != 9 {
				t.Errorf("fitted on %d examples, want 9", pair.Examples())
			}
		})
	}
}

func TestRunWritesYAMLReport(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "report.yaml")
	var out bytes.Buffer
	if err := run(context.Background(), cfg, options{kind: classifier.KindNaiveBayes, reportPath: path}, &out, zap.NewNop()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"accuracy:", "confusion:", "macro_avg:"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("report missing %q\n%s", want, data)
		}
	}
}

func TestRunSeedsEmptyStoreOnce(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	opts := options{kind: classifier.KindLogisticRegression, seedStore: true}
	for i := 0; i < 2; i++ {
		var out bytes.Buffer
		if err := run(ctx, cfg, opts, &out, zap.NewNop()); err != nil {
			t.Fatal(err)
		}
	}

	store, err := storage.NewCSVStorage(cfg.Storage.DataFile, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	examples, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(examples) != len(seedCorpus) {
		t.Fatalf("store has %d examples, want %d", len(examples), len(seedCorpus))
	}
	if examples[1].Text != "trời đẹp quá tôi cảm_thấy hạnh_phúc" {
		t.Errorf("seed text not tokenized: %q", examples[1].Text)
	}
}

func TestRunUnknownClassifier(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), testConfig(t), options{kind: "svm"}, &out, zap.NewNop()); err == nil {
		t.Error("unknown classifier accepted")
	}
}
