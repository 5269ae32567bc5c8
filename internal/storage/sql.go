package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/xaenox/sentiment-bot/internal/models"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

//go:embed migrations/postgres/*.sql
var postgresMigrations embed.FS

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// SQLStorage keeps examples in an examples table, ordered by id.
type SQLStorage struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewPostgresStorage(config DatabaseConfig, logger *zap.Logger) (*SQLStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, unavailable("open postgres", err)
	}
	return newSQLStorage(db, migratePostgres, logger)
}

// NewSQLiteStorage opens (or creates) the database file at path.
func NewSQLiteStorage(path string, logger *zap.Logger) (*SQLStorage, error) {
	raw, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, unavailable("open sqlite", err)
	}
	raw.SetMaxOpenConns(1)
	// modernc registers as "sqlite"; sqlx picks the ? bindvar from "sqlite3".
	return newSQLStorage(sqlx.NewDb(raw, "sqlite3"), execSchema(sqliteSchema), logger)
}

func newSQLStorage(db *sqlx.DB, initSchema func(*sqlx.DB, *zap.Logger) error, logger *zap.Logger) (*SQLStorage, error) {
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, unavailable("connect", err)
	}

	if err := initSchema(db, logger); err != nil {
		db.Close()
		return nil, unavailable("initialize schema", err)
	}

	logger.Info("Example store ready", zap.String("driver", db.DriverName()))
	return &SQLStorage{db: db, logger: logger}, nil
}

// migratePostgres brings the database up to the latest embedded migration.
// The migrate instance is not closed since that would close db.
func migratePostgres(db *sqlx.DB, logger *zap.Logger) error {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to get migration driver: %w", err)
	}
	src, err := iofs.New(postgresMigrations, "migrations/postgres")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	version, _, _ := m.Version()
	logger.Info("Database migration was run successfully", zap.Uint("version", version))
	return nil
}

func execSchema(schema string) func(*sqlx.DB, *zap.Logger) error {
	return func(db *sqlx.DB, _ *zap.Logger) error {
		_, err := db.Exec(schema)
		return err
	}
}

func (s *SQLStorage) Load(ctx context.Context) ([]models.Example, error) {
	var examples []models.Example
	if err := s.db.SelectContext(ctx, &examples, `SELECT text, label FROM examples ORDER BY id`); err != nil {
		return nil, unavailable("load examples", err)
	}
	for i, ex := range examples {
		if err := ex.Validate(); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformed, i+1, err)
		}
	}
	return examples, nil
}

func (s *SQLStorage) Append(ctx context.Context, example models.Example) error {
	if err := example.Validate(); err != nil {
		return err
	}

	query := s.db.Rebind(`INSERT INTO examples (text, label) VALUES (?, ?)`)
	if _, err := s.db.ExecContext(ctx, query, example.Text, string(example.Label)); err != nil {
		s.logger.Error("Failed to append example", zap.Error(err))
		return unavailable("append example", err)
	}
	return nil
}

func (s *SQLStorage) Size(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM examples`); err != nil {
		return 0, unavailable("count examples", err)
	}
	return n, nil
}

func (s *SQLStorage) Close() error {
	return s.db.Close()
}
