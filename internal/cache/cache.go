// Package cache provides a small JSON read-through cache backed by Redis,
// with a no-op fallback when Redis is not configured or unreachable.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-redis/redis/v8"

	"github.com/Tomlord1122/buyareco-backend/internal/config"
)

// Cache stores JSON encoded values under string keys.
type Cache interface {
	// Get decodes the value for key into dst and reports whether it was found.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Close() error
}

// New connects to Redis when cfg.Addr is set. Connection failures are logged
// and yield a no-op cache so the API keeps working without it.
func New(ctx context.Context, cfg config.RedisConfig, logger *log.Logger) Cache {
	if cfg.Addr == "" {
		return Noop{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 2 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, caching disabled", "addr", cfg.Addr, "err", err)
		_ = client.Close()
		return Noop{}
	}
	logger.Info("connected to redis", "addr", cfg.Addr)
	return NewRedis(client, cfg.TTL.Duration)
}

// Redis is a Cache backed by a go-redis client.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis wraps client. Entries expire after ttl.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error) { return false, nil }
func (Noop) Set(context.Context, string, any) error         { return nil }
func (Noop) Close() error                                   { return nil }

// Key joins parts into a namespaced cache key. Empty parts are kept so
// that positional meaning survives.
func Key(parts ...string) string {
	return "buyareco:" + strings.Join(parts, ":")
}
