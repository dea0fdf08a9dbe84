package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"talent-match/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis is the optional hot tier in front of the durable match cache. It is
// strictly an optimization: when the server is unreachable every operation
// degrades to a no-op and the durable store stays authoritative.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration

	warnedUnavailable atomic.Bool
}

func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	ttl := time.Duration(cfg.HotTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	r := &Redis{logger: logger, ttl: ttl}

	if cfg.Addr == "" {
		return r
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		if logger != nil {
			logger.Warn("redis unavailable, hot tier disabled", zap.Error(err))
		}
		_ = client.Close()
		return r
	}

	r.client = client
	return r
}

func (r *Redis) isUnavailable() bool {
	return r == nil || r.client == nil
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r == nil || r.logger == nil {
		return
	}
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.Warn("redis unavailable, bypassing hot tier", zap.Error(err))
	}
}

// GetJSON reads a hot-tier value. A miss and an unavailable server look the
// same to the caller: (false, nil).
func (r *Redis) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if r.isUnavailable() {
		return false, nil
	}
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		r.warnUnavailableOnce(err)
		return false, nil
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, nil
	}
	return true, nil
}

// SetJSON writes a hot-tier value under the configured TTL. Best-effort.
func (r *Redis) SetJSON(ctx context.Context, key string, value any) {
	if r.isUnavailable() {
		return
	}
	b, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, key, b, r.ttl).Err(); err != nil {
		r.warnUnavailableOnce(err)
	}
}

// Delete drops a hot-tier key, used when the durable entry is overwritten.
func (r *Redis) Delete(ctx context.Context, key string) {
	if r.isUnavailable() {
		return
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.warnUnavailableOnce(err)
	}
}

func (r *Redis) Close() error {
	if r.isUnavailable() {
		return nil
	}
	return r.client.Close()
}
