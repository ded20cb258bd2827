// Package config hydrates the service configuration from the environment.
package config

import (
	"fmt"
	"strings"
)

// Config is the effective service configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
	OpenAI   OpenAIConfig   `koanf:"openai"`
	Pinecone PineconeConfig `koanf:"pinecone"`
	Cache    CacheConfig    `koanf:"cache"`
	Tutor    TutorConfig    `koanf:"tutor"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Address string `koanf:"address"`
	Port    int    `koanf:"port"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// OpenAIConfig holds generation-service credentials and model selection.
type OpenAIConfig struct {
	APIKey         string `koanf:"api_key"`
	Model          string `koanf:"model"`
	EmbeddingModel string `koanf:"embedding_model"`
	BaseURL        string `koanf:"base_url"`
}

// PineconeConfig holds vector-index credentials and partition selection.
type PineconeConfig struct {
	APIKey    string `koanf:"api_key"`
	IndexHost string `koanf:"index_host"`
	Namespace string `koanf:"namespace"`
}

// CacheConfig selects and tunes the query-cache backend.
type CacheConfig struct {
	Backend      string `koanf:"backend"` // "memory" or "redis"
	TTLSeconds   int    `koanf:"ttl_seconds"`
	RedisURL     string `koanf:"redis_url"`
	SnapshotPath string `koanf:"snapshot_path"` // Warm file loaded at startup when present
}

// TutorConfig tunes the orchestration layer.
type TutorConfig struct {
	MaxConcurrent      int `koanf:"max_concurrent"`
	CallTimeoutSeconds int `koanf:"call_timeout_seconds"`
	RequestsPerMinute  int `koanf:"requests_per_minute"`
}

// DefaultConfig returns the built-in defaults, overridable by environment
// variables.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address: "0.0.0.0",
			Port:    8000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		OpenAI: OpenAIConfig{
			Model:          "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
		},
		Cache: CacheConfig{
			Backend:    "memory",
			TTLSeconds: 600,
		},
		Tutor: TutorConfig{
			MaxConcurrent:      5,
			CallTimeoutSeconds: 60,
			RequestsPerMinute:  60,
		},
	}
}

// Validate rejects configurations the service cannot run with.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server port %d out of range", c.Server.Port)
	}
	switch strings.ToLower(c.Cache.Backend) {
	case "memory":
	case "redis":
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("config: redis cache backend requires cache.redis_url")
		}
	default:
		return fmt.Errorf("config: unsupported cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("config: cache ttl must not be negative")
	}
	if c.Tutor.MaxConcurrent < 1 {
		return fmt.Errorf("config: tutor max_concurrent must be at least 1")
	}
	if c.Tutor.CallTimeoutSeconds < 1 {
		return fmt.Errorf("config: tutor call_timeout_seconds must be at least 1")
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("config: openai api_key is required")
	}
	if c.Pinecone.APIKey == "" || c.Pinecone.IndexHost == "" {
		return fmt.Errorf("config: pinecone api_key and index_host are required")
	}
	return nil
}
