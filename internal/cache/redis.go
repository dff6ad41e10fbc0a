package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"heroes/internal/catalog"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const statsKey = "heroes:stats"

// RedisStats keeps catalog statistics in Redis so several API instances
// share one cached copy.
type RedisStats struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient builds a pooled client for addr.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

// Connect pings the server once so misconfiguration surfaces at startup.
func Connect(ctx context.Context, client *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	log.Info().Str("addr", client.Options().Addr).Msg("connected to redis")
	return nil
}

// NewRedisStats wraps client. A zero ttl keeps the entry until invalidated.
func NewRedisStats(client *redis.Client, ttl time.Duration) *RedisStats {
	return &RedisStats{client: client, ttl: ttl}
}

func (r *RedisStats) Get(ctx context.Context) (*catalog.Stats, bool, error) {
	raw, err := r.client.Get(ctx, statsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get stats: %w", err)
	}

	var stats catalog.Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		// A corrupt entry is treated as a miss and overwritten on the next Set.
		return nil, false, nil
	}
	return &stats, true, nil
}

func (r *RedisStats) Set(ctx context.Context, stats catalog.Stats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, statsKey, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set stats: %w", err)
	}
	return nil
}

func (r *RedisStats) Invalidate(ctx context.Context) error {
	if err := r.client.Del(ctx, statsKey).Err(); err != nil {
		return fmt.Errorf("redis del stats: %w", err)
	}
	return nil
}
