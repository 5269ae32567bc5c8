package storage

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/xaenox/sentiment-bot/pkg/config"
)

// Options picks a backend and its location.
type Options struct {
	Backend    string
	DataFile   string
	SQLitePath string
	BoltPath   string
	Database   DatabaseConfig
}

// OptionsFromConfig maps the storage and database sections of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Backend:    cfg.Storage.Backend,
		DataFile:   cfg.Storage.DataFile,
		SQLitePath: cfg.Storage.SQLitePath,
		BoltPath:   cfg.Storage.BoltPath,
		Database: DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		},
	}
}

// Open builds the configured backend.
func Open(opts Options, logger *zap.Logger) (Storage, error) {
	switch opts.Backend {
	case "csv", "":
		logger.Info("Using CSV storage", zap.String("path", opts.DataFile))
		return NewCSVStorage(opts.DataFile, logger)
	case "memory":
		logger.Info("Using in-memory storage")
		return NewMemoryStorage(), nil
	case "postgres":
		logger.Info("Using PostgreSQL storage", zap.String("host", opts.Database.Host))
		return NewPostgresStorage(opts.Database, logger)
	case "sqlite":
		logger.Info("Using SQLite storage", zap.String("path", opts.SQLitePath))
		return NewSQLiteStorage(opts.SQLitePath, logger)
	case "bolt":
		logger.Info("Using bbolt storage", zap.String("path", opts.BoltPath))
		return NewBoltStorage(opts.BoltPath, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
