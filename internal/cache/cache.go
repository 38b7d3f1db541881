// Package cache memoizes route query responses behind Redis so repeat
// queries for the same origin/destination/profile bucket skip the
// McRAPTOR search entirely.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RouteCache wraps a Redis client with a fixed TTL. A nil *RouteCache,
// or one built around a nil client, is a valid always-miss cache, so
// the host can run with caching disabled rather than failing to start.
type RouteCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRouteCache builds a RouteCache. Pass a nil client to disable caching.
func NewRouteCache(client *redis.Client, ttl time.Duration) *RouteCache {
	return &RouteCache{client: client, ttl: ttl}
}

// Get unmarshals the cached value for key into dest, reporting whether
// the entry existed and decoded cleanly.
func (c *RouteCache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil || c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// Set stores value under key with the cache's TTL. Failures are
// swallowed: a cache write is never allowed to fail a route query.
func (c *RouteCache) Set(ctx context.Context, key string, value any) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.client.Set(ctx, key, raw, c.ttl)
}
