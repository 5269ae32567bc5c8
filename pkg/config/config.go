package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Frontend string         `mapstructure:"frontend"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Model    ModelConfig    `mapstructure:"model"`
	Training TrainingConfig `mapstructure:"training"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	UI       UIConfig       `mapstructure:"ui"`
	Log      LogConfig      `mapstructure:"log"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

// StorageConfig selects where labeled examples live.
type StorageConfig struct {
	Backend    string `mapstructure:"backend"` // csv, memory, postgres, sqlite, bolt
	DataFile   string `mapstructure:"data_file"`
	SQLitePath string `mapstructure:"sqlite_path"`
	BoltPath   string `mapstructure:"bolt_path"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type ModelConfig struct {
	File           string `mapstructure:"file"`
	VectorizerFile string `mapstructure:"vectorizer_file"`
	Classifier     string `mapstructure:"classifier"`
}

type TrainingConfig struct {
	MinExamples int     `mapstructure:"min_examples"`
	TestSize    float64 `mapstructure:"test_size"`
	Seed        int64   `mapstructure:"seed"`
}

type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type UIConfig struct {
	RecentRows int `mapstructure:"recent_rows"`
}

type LogConfig struct {
	Development bool `mapstructure:"development"`
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		if _, err := fmt.Sscanf(u.Port(), "%d", &port); err != nil {
			return DatabaseConfig{}, fmt.Errorf("invalid port %q: %w", u.Port(), err)
		}
	}

	sslMode := u.Query().Get("sslmode")
	if sslMode == "" {
		sslMode = "disable"
	}

	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   strings.TrimPrefix(u.Path, "/"),
		SSLMode:  sslMode,
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("frontend", "telegram")
	v.SetDefault("storage.backend", "csv")
	v.SetDefault("storage.data_file", "sentiment_data.csv")
	v.SetDefault("storage.sqlite_path", "sentiment_data.db")
	v.SetDefault("storage.bolt_path", "sentiment_data.bolt")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "sentiment")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("model.file", "sentiment_model.json")
	v.SetDefault("model.vectorizer_file", "vectorizer.json")
	v.SetDefault("model.classifier", "naive_bayes")
	v.SetDefault("training.min_examples", 3)
	v.SetDefault("training.test_size", 0.25)
	v.SetDefault("training.seed", 42)
	v.SetDefault("openai.model", "gpt-3.5-turbo")
	v.SetDefault("openai.max_tokens", 20)
	v.SetDefault("openai.temperature", 0.0)
	v.SetDefault("ui.recent_rows", 10)
	v.SetDefault("log.development", false)
}

// LoadConfig reads path when it exists. A missing file leaves the defaults
// and environment in charge.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Enable environment variable support, storage.backend -> STORAGE_BACKEND
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		config.Database = dbConfig
	}

	if token := v.GetString("TELEGRAM_TOKEN"); token != "" {
		config.Telegram.Token = token
	}

	if apiKey := v.GetString("OPENAI_API_KEY"); apiKey != "" {
		config.OpenAI.APIKey = apiKey
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	switch c.Frontend {
	case "telegram", "console":
	default:
		return fmt.Errorf("unknown frontend %q", c.Frontend)
	}
	switch c.Storage.Backend {
	case "csv", "memory", "postgres", "sqlite", "bolt":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Training.MinExamples < 1 {
		return fmt.Errorf("training.min_examples must be at least 1, got %d", c.Training.MinExamples)
	}
	if c.Training.TestSize <= 0 || c.Training.TestSize >= 1 {
		return fmt.Errorf("training.test_size must be in (0, 1), got %v", c.Training.TestSize)
	}
	if c.Model.File == "" {
		return fmt.Errorf("model.file must be set")
	}
	return nil
}
