package places

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/venuedesk/backend/pkg/redis"
)

// Cache stores Places responses in Redis so repeated lookups within the TTL
// do not hit the upstream quota. A nil Cache is a no-op.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a Places response cache. Returns nil when no Redis
// client is available, which disables caching.
func NewCache(client *redis.Client, ttlSec int) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client, ttl: time.Duration(ttlSec) * time.Second}
}

func cacheKey(kind, payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return "places:" + kind + ":" + hex.EncodeToString(sum[:])
}

// Get returns the cached response or nil on miss. Redis failures degrade to
// a miss.
func (c *Cache) Get(ctx context.Context, kind, payload string) json.RawMessage {
	if c == nil {
		return nil
	}
	data, err := c.client.Get(ctx, cacheKey(kind, payload)).Bytes()
	if err != nil {
		return nil
	}
	return json.RawMessage(data)
}

// Set stores a response. Redis failures are ignored.
func (c *Cache) Set(ctx context.Context, kind, payload string, data json.RawMessage) {
	if c == nil {
		return
	}
	c.client.Set(ctx, cacheKey(kind, payload), []byte(data), c.ttl)
}
