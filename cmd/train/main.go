// Command train fits the initial model from the built-in seed corpus,
// prints an evaluation report on a held-out split and saves the pair as a
// combined artifact that the bot loads at startup.
//
//	go run ./cmd/train -config config.yaml
//
// With -seed-store the seed corpus is also appended to the configured
// example store when that store is empty.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/xaenox/sentiment-bot/internal/classifier"
	"github.com/xaenox/sentiment-bot/internal/evaluation"
	"github.com/xaenox/sentiment-bot/internal/fsutil"
	"github.com/xaenox/sentiment-bot/internal/models"
	"github.com/xaenox/sentiment-bot/internal/storage"
	"github.com/xaenox/sentiment-bot/internal/tokenizer"
	"github.com/xaenox/sentiment-bot/pkg/config"
)

var seedCorpus = []models.Example{
	{Text: "Hôm nay tôi rất vui", Label: models.Positive},
	{Text: "Trời đẹp quá, tôi cảm thấy hạnh phúc", Label: models.Positive},
	{Text: "Tôi ghét phải chờ đợi", Label: models.Negative},
	{Text: "Thật tệ, tôi mệt và buồn", Label: models.Negative},
	{Text: "Thành công rồi! Tuyệt vời quá", Label: models.Positive},
	{Text: "Tôi thấy chán và thất vọng", Label: models.Negative},
	{Text: "Cảm ơn bạn, tôi rất hài lòng", Label: models.Positive},
	{Text: "Dịch vụ quá tệ, không đáng tiền", Label: models.Negative},
	{Text: "Cái bàn này màu xanh", Label: models.Neutral},
	{Text: "Tôi đang ngồi học", Label: models.Neutral},
	{Text: "Chúng sinh đau buồn", Label: models.Negative},
	{Text: "Cả lớp cùng cười vui vẻ", Label: models.Positive},
}

type options struct {
	kind       string
	seedStore  bool
	reportPath string
}

func main() {
	configPath := flag.String("config", envOr("CONFIG_PATH", "config.yaml"), "path to config file")
	kind := flag.String("classifier", classifier.KindLogisticRegression, "classifier kind: naive_bayes or logistic_regression")
	seedStore := flag.Bool("seed-store", false, "append the seed corpus to the example store when it is empty")
	reportPath := flag.String("report", "", "also write the evaluation report as YAML to this path")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "train: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewProduction()
	if cfg.Log.Development {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	opts := options{kind: *kind, seedStore: *seedStore, reportPath: *reportPath}
	if err := run(context.Background(), cfg, opts, os.Stdout, logger); err != nil {
		logger.Fatal("Training failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, out io.Writer, logger *zap.Logger) error {
	tok := tokenizer.New()
	examples := make([]models.Example, len(seedCorpus))
	for i, ex := range seedCorpus {
		examples[i] = models.Example{Text: tokenizer.Join(tok.Tokenize(ex.Text)), Label: ex.Label}
	}
	fmt.Fprintf(out, "📘 Dữ liệu ban đầu: %d mẫu\n", len(examples))

	train, test, err := evaluation.Split(examples, cfg.Training.TestSize, cfg.Training.Seed)
	if err != nil {
		return err
	}

	c, err := classifier.New(opts.kind)
	if err != nil {
		return err
	}
	pair, err := classifier.Train(train, c)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✅ Số đặc trưng (features): %d\n", pair.Vectorizer().Size())

	report, err := evaluation.Evaluate(pair, test)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n🎯 Accuracy: %.2f%%\n\n", report.Accuracy*100)
	if err := report.Format(out); err != nil {
		return err
	}

	if opts.reportPath != "" {
		err := fsutil.WriteFileAtomic(opts.reportPath, 0o644, report.WriteYAML)
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	artifacts := classifier.NewArtifacts(cfg.Model.File, "")
	if err := artifacts.Save(pair); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n💾 Đã lưu mô hình vào: %s\n", cfg.Model.File)
	logger.Info("Saved model",
		zap.String("path", cfg.Model.File),
		zap.String("classifier", c.Kind()),
		zap.Int("train", len(train)),
		zap.Int("test", len(test)))

	if opts.seedStore {
		return seed(ctx, cfg, examples, logger)
	}
	return nil
}

func seed(ctx context.Context, cfg *config.Config, examples []models.Example, logger *zap.Logger) error {
	store, err := storage.Open(storage.OptionsFromConfig(cfg), logger)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Size(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Info("Example store already has data, not seeding", zap.Int("examples", n))
		return nil
	}
	for _, ex := range examples {
		if err := store.Append(ctx, ex); err != nil {
			return err
		}
	}
	logger.Info("Seeded example store", zap.Int("examples", len(examples)))
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
