package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL = 5 * time.Minute
	scanBatch  = 200
)

// Redis stores reports as JSON strings with a fixed TTL.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedis wraps client. Keys are namespaced by prefix when it is non-empty.
func NewRedis(client redis.UniversalClient, prefix string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (c *Redis) key(s string) string {
	if c.prefix == "" {
		return s
	}
	return c.prefix + ":" + s
}

func (c *Redis) Generation(ctx context.Context, rachaID string) (int64, error) {
	gen, err := c.client.Get(ctx, c.key(genKey(rachaID))).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation: %w", err)
	}
	return gen, nil
}

func (c *Redis) Load(ctx context.Context, key Key, dst any) (bool, error) {
	data, err := c.client.Get(ctx, c.key(key.String())).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("unmarshaling cached report: %w", err)
	}
	return true, nil
}

func (c *Redis) Store(ctx context.Context, key Key, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	return c.client.Set(ctx, c.key(key.String()), data, c.ttl).Err()
}

// InvalidateRacha bumps the generation of rachaID, then deletes its reports. SCAN keeps Redis
// responsive on large keyspaces.
func (c *Redis) InvalidateRacha(ctx context.Context, rachaID string) error {
	if err := c.client.Incr(ctx, c.key(genKey(rachaID))).Err(); err != nil {
		return fmt.Errorf("redis incr generation: %w", err)
	}
	iter := c.client.Scan(ctx, 0, c.key(rachaPattern(rachaID)), scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

var _ Stats = (*Redis)(nil)
