package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ThomasMo54/teaching-shop-example/internal/domain"
)

const (
	viewCountsKey    = "analytics:view_counts"
	viewCountsGenKey = "analytics:view_counts:gen"
)

// setIfGeneration writes the list only while the generation counter still
// holds the value read before the database query.
var setIfGeneration = redis.NewScript(`
if (redis.call('GET', KEYS[1]) or '0') ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// AnalyticsCache implements repository.AnalyticsCache using Redis. A zero TTL
// disables caching.
//
// Every invalidation bumps a generation counter. A reader that loaded the list
// from PostgreSQL can only store it if no invalidation happened since it read
// the counter, so a slow reader never overwrites fresher data.
type AnalyticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAnalyticsCache creates a new Redis-backed analytics cache.
func NewAnalyticsCache(client *redis.Client, ttl time.Duration) *AnalyticsCache {
	return &AnalyticsCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached view counts, if any.
func (c *AnalyticsCache) Get(ctx context.Context) ([]domain.ProductViewCount, bool, error) {
	if c.ttl <= 0 {
		return nil, false, nil
	}

	data, err := c.client.Get(ctx, viewCountsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get view counts: %w", err)
	}

	var counts []domain.ProductViewCount
	if err := json.Unmarshal(data, &counts); err != nil {
		return nil, false, fmt.Errorf("unmarshal view counts: %w", err)
	}

	return counts, true, nil
}

// Generation returns the current invalidation counter.
func (c *AnalyticsCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, viewCountsGenKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get view counts generation: %w", err)
	}
	return gen, nil
}

// Set stores counts for the configured TTL if the cache is still at
// generation gen. It reports whether the list was stored.
func (c *AnalyticsCache) Set(ctx context.Context, gen int64, counts []domain.ProductViewCount) (bool, error) {
	if c.ttl <= 0 {
		return false, nil
	}

	data, err := json.Marshal(counts)
	if err != nil {
		return false, fmt.Errorf("marshal view counts: %w", err)
	}

	stored, err := setIfGeneration.Run(ctx, c.client,
		[]string{viewCountsGenKey, viewCountsKey},
		strconv.FormatInt(gen, 10), data, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("redis set view counts: %w", err)
	}

	return stored == 1, nil
}

// Invalidate drops the cached list and bumps the generation so that reads
// already in flight cannot store their result.
func (c *AnalyticsCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, viewCountsGenKey)
		pipe.Del(ctx, viewCountsKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate view counts: %w", err)
	}
	return nil
}
