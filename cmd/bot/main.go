package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/xaenox/sentiment-bot/internal/bot"
	"github.com/xaenox/sentiment-bot/internal/classifier"
	"github.com/xaenox/sentiment-bot/internal/console"
	"github.com/xaenox/sentiment-bot/internal/sentiment"
	"github.com/xaenox/sentiment-bot/internal/storage"
	"github.com/xaenox/sentiment-bot/internal/tokenizer"
	"github.com/xaenox/sentiment-bot/pkg/config"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger, _ := zap.NewProduction()
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", configPath))
	}

	// Initialize logger
	logger, _ := zap.NewProduction()
	if cfg.Log.Development {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	store, err := storage.Open(storage.OptionsFromConfig(cfg), logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer store.Close()

	opts := sentiment.Options{
		MinExamples:    cfg.Training.MinExamples,
		ClassifierKind: cfg.Model.Classifier,
	}
	if cfg.OpenAI.APIKey != "" {
		logger.Info("Using OpenAI label suggestions", zap.String("model", cfg.OpenAI.Model))
		opts.Suggester = classifier.NewGPTSuggester(
			cfg.OpenAI.APIKey,
			cfg.OpenAI.BaseURL,
			cfg.OpenAI.Model,
			cfg.OpenAI.MaxTokens,
			cfg.OpenAI.Temperature,
			logger,
		)
	}

	artifacts := classifier.NewArtifacts(cfg.Model.File, cfg.Model.VectorizerFile)
	session, err := sentiment.NewSession(ctx, store, tokenizer.New(), artifacts, opts, logger)
	if err != nil {
		logger.Fatal("Failed to start session", zap.Error(err))
	}

	switch cfg.Frontend {
	case "console":
		c := console.New(os.Stdin, os.Stdout, session, cfg.UI.RecentRows, logger)
		if err := c.Run(ctx); err != nil {
			logger.Fatal("Console error", zap.Error(err))
		}
	default:
		if cfg.Telegram.Token == "" {
			logger.Fatal("telegram.token or TELEGRAM_TOKEN must be set for the telegram frontend")
		}
		b, err := bot.New(cfg.Telegram.Token, session, cfg.UI.RecentRows, logger)
		if err != nil {
			logger.Fatal("Failed to create bot", zap.Error(err))
		}
		if err := b.Start(ctx); err != nil {
			logger.Fatal("Bot error", zap.Error(err))
		}
	}
	logger.Info("Shutting down")
}
