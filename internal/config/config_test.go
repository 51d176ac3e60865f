package config

import (
	"strings"
	"testing"
)

func validTestConfig() *Config {
	return &Config{
		ServerAddr:    ":8000",
		DocsPath:      "docs",
		ChunkSize:     800,
		ChunkOverlap:  100,
		MaxResults:    5,
		MaxToolRounds: 2,
		MaxHistory:    2,
		StoreBackend:  StoreBackendMemory,
		DBMaxConns:    25,
		DBMinConns:    5,
	}
}

func TestValidateConfig_Valid(t *testing.T) {
	if err := validateConfig(validTestConfig()); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestValidateConfig_ChunkOverlapBounds(t *testing.T) {
	cfg := validTestConfig()
	cfg.ChunkOverlap = cfg.ChunkSize

	err := validateConfig(cfg)
	if err == nil || !strings.Contains(err.Error(), "CHUNK_OVERLAP") {
		t.Errorf("expected overlap validation error, got %v", err)
	}
}

func TestValidateConfig_PostgresRequiresDatabaseURL(t *testing.T) {
	cfg := validTestConfig()
	cfg.StoreBackend = StoreBackendPostgres
	cfg.DatabaseURL = ""

	err := validateConfig(cfg)
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("expected database url validation error, got %v", err)
	}

	cfg.DatabaseURL = "postgres://localhost:5432/rag"
	if err := validateConfig(cfg); err != nil {
		t.Errorf("postgres config with url rejected: %v", err)
	}
}

func TestValidateConfig_UnknownBackend(t *testing.T) {
	cfg := validTestConfig()
	cfg.StoreBackend = "redis"

	err := validateConfig(cfg)
	if err == nil || !strings.Contains(err.Error(), "STORE_BACKEND") {
		t.Errorf("expected backend validation error, got %v", err)
	}
}

func TestGetEnvFile(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"prod", ".env.prod"},
		{"production", ".env.prod"},
		{"local", ".env.local"},
		{"dev", ".env.local"},
		{"staging", ".env.staging"},
	}
	for _, tt := range tests {
		if got := getEnvFile(tt.env); got != tt.want {
			t.Errorf("getEnvFile(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}
