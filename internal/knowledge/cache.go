// AngelaMos | 2026
// cache.go

package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keeps effective contexts in redis under a per-tenant generation
// number. Writers bump the generation after their transaction commits, so a
// reader that raced the write can only populate a key nobody reads again.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client, ttl: ttl}
}

func generationKey(tenantID string) string {
	return "knowledge:gen:" + tenantID
}

func contextKey(tenantID string, gen int64) string {
	return fmt.Sprintf("knowledge:ctx:%s:%d", tenantID, gen)
}

func (c *Cache) Generation(ctx context.Context, tenantID string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(tenantID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get knowledge generation: %w", err)
	}
	return gen, nil
}

// Get returns ok=false on a miss.
func (c *Cache) Get(
	ctx context.Context,
	tenantID string,
	gen int64,
) (Context, bool, error) {
	raw, err := c.client.Get(ctx, contextKey(tenantID, gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached knowledge: %w", err)
	}

	var facts Context
	if err := json.Unmarshal(raw, &facts); err != nil {
		return nil, false, fmt.Errorf("decode cached knowledge: %w", err)
	}
	return facts, true, nil
}

func (c *Cache) Set(
	ctx context.Context,
	tenantID string,
	gen int64,
	facts Context,
) error {
	if facts == nil {
		facts = Context{}
	}

	raw, err := json.Marshal(facts)
	if err != nil {
		return fmt.Errorf("encode knowledge: %w", err)
	}

	if err := c.client.Set(ctx, contextKey(tenantID, gen), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached knowledge: %w", err)
	}
	return nil
}

func (c *Cache) Invalidate(ctx context.Context, tenantID string) error {
	if err := c.client.Incr(ctx, generationKey(tenantID)).Err(); err != nil {
		return fmt.Errorf("bump knowledge generation: %w", err)
	}
	return nil
}
