package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/ametov/course-rag-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreBackendMemory   = "memory"
	StoreBackendPostgres = "postgres"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8000"`

	// Course documents ingested at startup
	DocsPath string `env:"DOCS_PATH" envDefault:"docs"`

	// Chunking configuration
	ChunkSize    int `env:"CHUNK_SIZE" envDefault:"800"`
	ChunkOverlap int `env:"CHUNK_OVERLAP" envDefault:"100"`

	// Retrieval configuration
	MaxResults int `env:"MAX_RESULTS" envDefault:"5"`
	// ResolveMaxDistance rejects fuzzy course-name matches farther than
	// this distance. 0 keeps the nearest match unconditionally.
	ResolveMaxDistance float64 `env:"RESOLVE_MAX_DISTANCE" envDefault:"0"`

	// Conversation configuration
	MaxToolRounds int           `env:"MAX_TOOL_ROUNDS" envDefault:"2"`
	MaxHistory    int           `env:"MAX_HISTORY" envDefault:"2"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"2h"`

	// Vector store backend: memory or postgres
	StoreBackend string `env:"STORE_BACKEND" envDefault:"memory"`

	// Database configuration (postgres backend only)
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// External service configurations
	LLMConnectorCfg       LLMConnectorConfig       `envPrefix:"LLM_"`
	EmbeddingConnectorCfg EmbeddingConnectorConfig `envPrefix:"EMBEDDING_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

type LLMConnectorConfig struct {
	HTTPClientConfig
	MessagesEndpoint string               `env:"MESSAGES_ENDPOINT" envDefault:"/v1/messages"`
	Model            string               `env:"MODEL" envDefault:"claude-sonnet-4-20250514"`
	MaxTokens        int                  `env:"MAX_TOKENS" envDefault:"800"`
	APIVersion       string               `env:"API_VERSION" envDefault:"2023-06-01"`
	Retry            pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type EmbeddingConnectorConfig struct {
	HTTPClientConfig
	EmbeddingsEndpoint string               `env:"EMBEDDINGS_ENDPOINT" envDefault:"/v1/embeddings"`
	Model              string               `env:"MODEL" envDefault:"text-embedding-3-small"`
	Retry              pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"60s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL,notEmpty"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if cfg.ChunkSize < 1 {
		errors = append(errors, fmt.Sprintf("CHUNK_SIZE must be positive, got %d", cfg.ChunkSize))
	}

	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		errors = append(errors, fmt.Sprintf("CHUNK_OVERLAP must be between 0 and CHUNK_SIZE(%d), got %d", cfg.ChunkSize, cfg.ChunkOverlap))
	}

	if cfg.MaxResults < 1 || cfg.MaxResults > 50 {
		errors = append(errors, fmt.Sprintf("MAX_RESULTS must be between 1 and 50, got %d", cfg.MaxResults))
	}

	if cfg.MaxToolRounds < 1 || cfg.MaxToolRounds > 10 {
		errors = append(errors, fmt.Sprintf("MAX_TOOL_ROUNDS must be between 1 and 10, got %d", cfg.MaxToolRounds))
	}

	if cfg.MaxHistory < 1 || cfg.MaxHistory > 50 {
		errors = append(errors, fmt.Sprintf("MAX_HISTORY must be between 1 and 50, got %d", cfg.MaxHistory))
	}

	switch cfg.StoreBackend {
	case StoreBackendMemory:
	case StoreBackendPostgres:
		if cfg.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL is required when STORE_BACKEND is postgres")
		}
		if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
			errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
		}
		if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
			errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
		}
	default:
		errors = append(errors, fmt.Sprintf("STORE_BACKEND must be %q or %q, got %q", StoreBackendMemory, StoreBackendPostgres, cfg.StoreBackend))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
