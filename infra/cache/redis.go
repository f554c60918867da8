package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/chrmc/storefront/pkg/memo"
	"github.com/redis/go-redis/v9"
)

// Redis implements memo.Store on a shared Redis instance so multiple
// server processes share one freshness window per key. Entries carry
// their own timestamp; Redis TTLs are not used for freshness.
type Redis struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedis creates a store from a redis URL (redis://host:port/db).
func NewRedis(url, prefix string, logger *slog.Logger) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &Redis{client: redis.NewClient(opt), prefix: prefix, logger: logger}, nil
}

func (r *Redis) key(key string) string {
	return r.prefix + key
}

// Get retrieves the entry under key, (nil, nil) on a miss.
func (r *Redis) Get(ctx context.Context, key string) (*memo.Entry, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		r.logger.Debug("redis cache miss", "key", key)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entry memo.Entry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		r.logger.Error("redis cache unmarshal error", "key", key, "error", err)
		return nil, err
	}
	return &entry, nil
}

// Set stores the entry under key, replacing any previous one.
func (r *Redis) Set(ctx context.Context, key string, e *memo.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(key), data, 0).Err()
}
