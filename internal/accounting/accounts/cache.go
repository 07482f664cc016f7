package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// CachedRegistry is a read-through redis cache in front of another Registry.
// Only successful lookups are cached; misses always reach the source.
type CachedRegistry struct {
	source Registry
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewCachedRegistry wraps source. A nil client disables caching.
func NewCachedRegistry(source Registry, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedRegistry {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedRegistry{source: source, client: client, ttl: ttl, logger: logger}
}

// CacheKey builds the redis key for an account.
func CacheKey(id int64) string {
	return fmt.Sprintf("ledger:account:%d", id)
}

// Resolve implements Registry.
func (c *CachedRegistry) Resolve(ctx context.Context, id int64) (Account, error) {
	if c.client == nil {
		return c.source.Resolve(ctx, id)
	}
	key := CacheKey(id)
	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var a Account
		if err := json.Unmarshal(raw, &a); err == nil {
			return a, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("account cache get", slog.Int64("account_id", id), slog.Any("error", err))
	}

	v, err, _ := c.group.Do(strconv.FormatInt(id, 10), func() (any, error) {
		a, err := c.source.Resolve(ctx, id)
		if err != nil {
			return Account{}, err
		}
		c.store(ctx, a)
		return a, nil
	})
	if err != nil {
		return Account{}, err
	}
	return v.(Account), nil
}

// Refresh reads id from the source and rewrites the cached copy. Accounts
// that no longer exist are evicted.
func (c *CachedRegistry) Refresh(ctx context.Context, id int64) (Account, error) {
	a, err := c.source.Resolve(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrAccountNotFound) {
			if err := c.Invalidate(ctx, id); err != nil {
				c.logger.Warn("account cache evict", slog.Int64("account_id", id), slog.Any("error", err))
			}
		}
		return Account{}, err
	}
	if c.client != nil {
		c.store(ctx, a)
	}
	return a, nil
}

func (c *CachedRegistry) store(ctx context.Context, a Account) {
	payload, err := json.Marshal(a)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, CacheKey(a.ID), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("account cache set", slog.Int64("account_id", a.ID), slog.Any("error", err))
	}
}

// Fresh returns a Registry that reads through to the source on every lookup,
// refreshing the cache on the way. Uncached registries are returned as is.
func Fresh(r Registry) Registry {
	if c, ok := r.(*CachedRegistry); ok {
		return freshRegistry{cache: c}
	}
	return r
}

type freshRegistry struct {
	cache *CachedRegistry
}

func (f freshRegistry) Resolve(ctx context.Context, id int64) (Account, error) {
	return f.cache.Refresh(ctx, id)
}

// Invalidate drops the cached copy of an account.
func (c *CachedRegistry) Invalidate(ctx context.Context, id int64) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, CacheKey(id)).Err()
}
