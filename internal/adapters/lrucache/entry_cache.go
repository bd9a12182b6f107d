// Package lrucache provides an in-process entry cache for single-replica deployments.
package lrucache

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/target/shortener/internal/core"
	"github.com/target/shortener/internal/domain/model"
)

var _ core.EntryCache = (*EntryCache)(nil)

// EntryCache is a size-bounded LRU whose items also expire after a TTL.
type EntryCache struct {
	lru *expirable.LRU[string, model.Entry]
}

// NewEntryCache creates a cache holding at most size entries for ttl each.
func NewEntryCache(size int, ttl time.Duration) *EntryCache {
	if size <= 0 {
		size = 1
	}
	return &EntryCache{lru: expirable.NewLRU[string, model.Entry](size, nil, ttl)}
}

// Get returns a copy of the cached entry, or nil when absent.
func (c *EntryCache) Get(_ context.Context, key string) (*model.Entry, error) {
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, nil
	}
	return &e, nil
}

// Set caches a copy of entry.
func (c *EntryCache) Set(_ context.Context, entry *model.Entry) error {
	if entry == nil || entry.Key == "" {
		return errors.New("entry key cannot be empty")
	}
	c.lru.Add(entry.Key, *entry)
	return nil
}

// Invalidate removes the given keys.
func (c *EntryCache) Invalidate(_ context.Context, keys ...string) error {
	for _, k := range keys {
		c.lru.Remove(k)
	}
	return nil
}

// Len reports the number of cached entries.
func (c *EntryCache) Len() int {
	return c.lru.Len()
}
