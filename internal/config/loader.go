package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix recognized on configuration environment
// variables. Double underscores signal nesting: MWALIMU_CACHE__TTL_SECONDS
// maps to cache.ttl_seconds.
const EnvPrefix = "MWALIMU"

// Load assembles the effective configuration with env-over-default
// precedence.
func Load() (Config, error) {
	defaultCfg := DefaultConfig()
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(structToMap(defaultCfg), "."), nil); err != nil {
		return Config{}, fmt.Errorf("config: load defaults: %w", err)
	}

	transform := func(s string) string {
		key := strings.TrimPrefix(s, EnvPrefix+"_")
		key = strings.ReplaceAll(key, "__", ".")
		return strings.ToLower(key)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", transform), nil); err != nil {
		return Config{}, fmt.Errorf("config: load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// structToMap converts DefaultConfig into a map for the koanf confmap provider.
func structToMap(cfg Config) map[string]any {
	return map[string]any{
		"server": map[string]any{
			"address": cfg.Server.Address,
			"port":    cfg.Server.Port,
		},
		"logging": map[string]any{
			"level":  cfg.Logging.Level,
			"format": cfg.Logging.Format,
		},
		"openai": map[string]any{
			"api_key":         cfg.OpenAI.APIKey,
			"model":           cfg.OpenAI.Model,
			"embedding_model": cfg.OpenAI.EmbeddingModel,
			"base_url":        cfg.OpenAI.BaseURL,
		},
		"pinecone": map[string]any{
			"api_key":    cfg.Pinecone.APIKey,
			"index_host": cfg.Pinecone.IndexHost,
			"namespace":  cfg.Pinecone.Namespace,
		},
		"cache": map[string]any{
			"backend":       cfg.Cache.Backend,
			"ttl_seconds":   cfg.Cache.TTLSeconds,
			"redis_url":     cfg.Cache.RedisURL,
			"snapshot_path": cfg.Cache.SnapshotPath,
		},
		"tutor": map[string]any{
			"max_concurrent":       cfg.Tutor.MaxConcurrent,
			"call_timeout_seconds": cfg.Tutor.CallTimeoutSeconds,
			"requests_per_minute":  cfg.Tutor.RequestsPerMinute,
		},
	}
}
