// Command mwalimu serves the bilingual curriculum Q&A API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elimu-labs/mwalimu"
	"github.com/elimu-labs/mwalimu/cache"
	"github.com/elimu-labs/mwalimu/internal/api"
	"github.com/elimu-labs/mwalimu/internal/config"
	"github.com/elimu-labs/mwalimu/internal/logging"
	"github.com/elimu-labs/mwalimu/internal/metrics"
	"github.com/elimu-labs/mwalimu/internal/server"
	"github.com/elimu-labs/mwalimu/provider"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	queryCache, err := buildCache(cfg.Cache, logger)
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder(nil)

	generator := provider.NewOpenAIGenerator(provider.OpenAIConfig{
		APIKey:         cfg.OpenAI.APIKey,
		Model:          cfg.OpenAI.Model,
		EmbeddingModel: cfg.OpenAI.EmbeddingModel,
		BaseURL:        cfg.OpenAI.BaseURL,
	})
	retriever := provider.NewPineconeRetriever(provider.PineconeConfig{
		APIKey:    cfg.Pinecone.APIKey,
		IndexHost: cfg.Pinecone.IndexHost,
		Namespace: cfg.Pinecone.Namespace,
	}, generator)

	// Generation calls go through rate limiting first, then retry, so
	// retried attempts also consume rate-limit tokens.
	var gen mwalimu.Generator = generator
	gen = mwalimu.NewRateLimitedGenerator(gen, mwalimu.RateLimitConfig{
		RequestsPerMinute: cfg.Tutor.RequestsPerMinute,
	})
	gen = mwalimu.NewRetryableGenerator(gen, mwalimu.DefaultRetryConfig())

	tutor := mwalimu.NewTutor(retriever, gen,
		mwalimu.WithCache(queryCache),
		mwalimu.WithLogger(logger),
		mwalimu.WithObserver(recorder),
		mwalimu.WithCallTimeout(time.Duration(cfg.Tutor.CallTimeoutSeconds)*time.Second),
		mwalimu.WithMaxConcurrent(cfg.Tutor.MaxConcurrent),
	)

	handler := api.NewHandler(api.Options{
		Tutor:         tutor,
		Cache:         queryCache,
		TTL:           time.Duration(cfg.Cache.TTLSeconds) * time.Second,
		Logger:        logger,
		Model:         cfg.OpenAI.Model,
		MaxConcurrent: cfg.Tutor.MaxConcurrent,
	})

	srv, err := server.New(cfg.Server.Address, cfg.Server.Port, logger, api.NewRouter(handler, recorder))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting",
		slog.String("version", mwalimu.Version),
		slog.String("cache_backend", cfg.Cache.Backend),
		slog.Int("cache_ttl_seconds", cfg.Cache.TTLSeconds),
		slog.Int("max_concurrent", cfg.Tutor.MaxConcurrent),
	)

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// buildCache selects the cache backend and warms it from a snapshot file
// when one is configured.
func buildCache(cfg config.CacheConfig, logger *slog.Logger) (cache.Cache, error) {
	var c cache.Cache
	switch cfg.Backend {
	case "redis":
		rc, err := cache.NewRedisCache(cache.RedisConfig{
			URL: cfg.RedisURL,
			TTL: cfg.TTLSeconds,
		})
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		logger.Info("using redis cache", slog.Int("ttl_seconds", cfg.TTLSeconds))
		c = rc
	default:
		logger.Info("using in-memory cache; entries are lost on restart",
			slog.Int("ttl_seconds", cfg.TTLSeconds))
		c = cache.NewInMemoryCache(cfg.TTLSeconds)
	}

	if cfg.SnapshotPath != "" {
		result, err := cache.LoadSnapshotFile(cfg.SnapshotPath, c)
		if err != nil {
			logger.Warn("cache snapshot load failed", slog.Any("error", err))
		} else {
			logger.Info("cache warmed from snapshot",
				slog.Int("loaded", result.Loaded), slog.Int("failed", result.Failed))
		}
	}
	return c, nil
}
