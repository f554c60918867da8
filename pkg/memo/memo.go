// Package memo provides a time-boxed cache for upstream fetches.
//
// A Fetcher wraps arbitrary producer functions: within the freshness
// window the cached value is returned without invoking the producer,
// after it the producer runs again and overwrites the entry. Entries
// are only ever overwritten, never evicted — the key space here is
// small and fixed (a handful of catalog endpoints per locale).
//
// Concurrent callers for the same stale key share one in-flight
// producer call via singleflight. A failed producer leaves the stored
// entry untouched, value and timestamp both, so the next caller
// retries.
package memo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// Entry is a cached value with the instant it was produced. Values are
// kept JSON-encoded so stores can be process-local or shared (Redis).
type Entry struct {
	CachedAt time.Time       `json:"cached_at"`
	Value    json.RawMessage `json:"value"`
}

// Store persists cache entries. Get returns (nil, nil) on a miss.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, e *Entry) error
}

// Fetcher memoizes producer results in a Store. Construct with New;
// each Fetcher owns its state, so tests can build isolated instances
// and substitute the clock.
type Fetcher struct {
	store  Store
	group  singleflight.Group
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Fetcher over the given store.
func New(store Store, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock substitutes the time source. Intended for tests.
func (f *Fetcher) WithClock(now func() time.Time) *Fetcher {
	f.now = now
	return f
}

// Get returns the value under key, invoking producer only when no
// entry exists or the entry is older than ttl. Producer failure
// propagates to every waiting caller and does not modify the cache.
func Get[T any](
	ctx context.Context,
	f *Fetcher,
	key string,
	ttl time.Duration,
	producer func(context.Context) (T, error),
) (T, error) {
	var zero T

	if raw, ok := f.fresh(ctx, key, ttl); ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		// Undecodable entry (schema drift); fall through and refetch.
		f.logger.Warn("memo: discarding undecodable cache entry", "key", key)
	}

	raw, err, _ := f.group.Do(key, func() (any, error) {
		// Re-check under the flight: a racing caller may have just
		// refreshed this key.
		if raw, ok := f.fresh(ctx, key, ttl); ok {
			return raw, nil
		}

		v, err := producer(ctx)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("memo: encode %q: %w", key, err)
		}

		entry := &Entry{CachedAt: f.now(), Value: data}
		if err := f.store.Set(ctx, key, entry); err != nil {
			// The produced value is still good; a write failure only
			// costs the next caller a refetch.
			f.logger.Warn("memo: cache write failed", "key", key, "error", err)
		}
		return json.RawMessage(data), nil
	})
	if err != nil {
		return zero, err
	}

	var v T
	if err := json.Unmarshal(raw.(json.RawMessage), &v); err != nil {
		return zero, fmt.Errorf("memo: decode %q: %w", key, err)
	}
	return v, nil
}

// fresh returns the stored raw value when the entry exists and is
// younger than ttl. Store read errors degrade to a miss.
func (f *Fetcher) fresh(ctx context.Context, key string, ttl time.Duration) (json.RawMessage, bool) {
	entry, err := f.store.Get(ctx, key)
	if err != nil {
		f.logger.Warn("memo: cache read failed", "key", key, "error", err)
		return nil, false
	}
	if entry == nil {
		return nil, false
	}
	if f.now().Sub(entry.CachedAt) >= ttl {
		return nil, false
	}
	return entry.Value, true
}
