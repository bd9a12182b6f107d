// Package redis provides the Redis-backed entry cache.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/shortener/internal/core"
	"github.com/target/shortener/internal/domain/model"
)

// DefaultPrefix namespaces cached entries.
const DefaultPrefix = "entry:"

var _ core.EntryCache = (*EntryCache)(nil)

// EntryCache stores entries as JSON with a fixed TTL.
type EntryCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewEntryCache creates a Redis entry cache. A non-positive ttl disables expiry.
func NewEntryCache(client redis.UniversalClient, ttl time.Duration) *EntryCache {
	return NewEntryCacheWithPrefix(client, DefaultPrefix, ttl)
}

// NewEntryCacheWithPrefix creates a Redis entry cache with a custom key prefix.
func NewEntryCacheWithPrefix(client redis.UniversalClient, prefix string, ttl time.Duration) *EntryCache {
	if ttl < 0 {
		ttl = 0
	}
	return &EntryCache{client: client, prefix: prefix, ttl: ttl}
}

// Get returns the cached entry, or nil when it is not cached.
func (c *EntryCache) Get(ctx context.Context, key string) (*model.Entry, error) {
	if key == "" {
		return nil, nil
	}

	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry model.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Drop undecodable payloads so the next lookup repopulates them.
		_ = c.client.Del(ctx, c.prefix+key).Err()
		return nil, fmt.Errorf("unmarshal entry: %w", err)
	}
	return &entry, nil
}

// Set caches entry under its key.
func (c *EntryCache) Set(ctx context.Context, entry *model.Entry) error {
	if entry == nil || entry.Key == "" {
		return errors.New("entry key cannot be empty")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	return c.client.Set(ctx, c.prefix+entry.Key, data, c.ttl).Err()
}

// Invalidate removes the given keys from the cache.
func (c *EntryCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			full = append(full, c.prefix+k)
		}
	}
	if len(full) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
