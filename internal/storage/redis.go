package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/location-creator/pkg/location"
)

// DefaultRedisKey is the key the locations document is stored under.
const DefaultRedisKey = "locations"

// RedisStorage keeps the locations document under a single Redis key.
type RedisStorage struct {
	client *redis.Client
	key    string
	logger *slog.Logger
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a Redis storage instance. redisURL may be a
// redis:// URL or a bare host:port address.
func NewRedisStorage(redisURL string, key string, logger *slog.Logger) (*RedisStorage, error) {
	opts := &redis.Options{Addr: redisURL}
	if strings.Contains(redisURL, "://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis URL: %w", err)
		}
		opts = parsed
	}

	if key == "" {
		key = DefaultRedisKey
	}

	return &RedisStorage{
		client: redis.NewClient(opts),
		key:    key,
		logger: logger,
	}, nil
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	cmd := r.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context, attempts int, delay time.Duration) error {
	for i := 0; i < attempts; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(delay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", attempts)
}

func (r *RedisStorage) Describe() string {
	return "redis key " + r.key
}

func (r *RedisStorage) LoadLocations(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Warn("Locations not found", "key", r.key)
			return nil, fmt.Errorf("%w: redis key %s not found", location.ErrPersistenceUnavailable, r.key)
		}
		r.logger.Error("Failed to load locations", "key", r.key, "error", err)
		return nil, fmt.Errorf("%w: failed to load locations: %w", location.ErrPersistenceUnavailable, err)
	}

	if len(data) == 0 {
		r.logger.Warn("Locations are empty", "key", r.key)
		return nil, fmt.Errorf("%w: redis key %s: %w", location.ErrPersistenceUnavailable, r.key, location.ErrEmptyData)
	}

	return data, nil
}

func (r *RedisStorage) SaveLocations(ctx context.Context, data []byte) error {
	// No expiration: the document is the author's only copy.
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		r.logger.Error("Failed to save locations", "key", r.key, "error", err)
		return fmt.Errorf("failed to save locations: %w", err)
	}
	return nil
}
