package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/phambaophuc/image-batch-crop/internal/config"
)

var ErrNotFound = errors.New("not found")

const DefaultArchiveTTL = time.Hour

// NewArchiveStore returns a Redis-backed store when Redis is configured
// and reachable, and an in-memory store otherwise.
func NewArchiveStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) Store {
	ttl := cfg.Storage.ArchiveTTL
	if ttl <= 0 {
		ttl = DefaultArchiveTTL
	}

	if cfg.Redis.Addr == "" {
		logger.Info("Redis not configured, keeping archives in memory", zap.Duration("ttl", ttl))
		return NewMemoryStore(ttl)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unavailable, keeping archives in memory",
			zap.String("addr", cfg.Redis.Addr),
			zap.Error(err))
		client.Close()
		return NewMemoryStore(ttl)
	}

	logger.Info("Keeping archives in Redis", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", ttl))
	return NewRedisStore(client, ttl)
}
