package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ThomasMo54/teaching-shop-example/internal/domain"
)

const trendingKey = "analytics:trending"

// TrendingBoard keeps a sorted set of product ids scored by view events.
type TrendingBoard struct {
	client *redis.Client
}

// NewTrendingBoard creates a new Redis-backed trending board.
func NewTrendingBoard(client *redis.Client) *TrendingBoard {
	return &TrendingBoard{client: client}
}

// Increment adds one view to productID.
func (b *TrendingBoard) Increment(ctx context.Context, productID string) error {
	if err := b.client.ZIncrBy(ctx, trendingKey, 1, productID).Err(); err != nil {
		return fmt.Errorf("redis zincrby trending: %w", err)
	}
	return nil
}

// Top returns the n highest scored products. Names are left empty for the
// caller to fill in.
func (b *TrendingBoard) Top(ctx context.Context, n int) ([]domain.TrendingProduct, error) {
	if n <= 0 {
		return []domain.TrendingProduct{}, nil
	}

	entries, err := b.client.ZRevRangeWithScores(ctx, trendingKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zrevrange trending: %w", err)
	}

	out := make([]domain.TrendingProduct, 0, len(entries))
	for _, e := range entries {
		id, ok := e.Member.(string)
		if !ok {
			continue
		}
		out = append(out, domain.TrendingProduct{ProductID: id, Views: int64(e.Score)})
	}

	return out, nil
}

// Remove drops productID from the board, e.g. after the product is deleted.
func (b *TrendingBoard) Remove(ctx context.Context, productID string) error {
	if err := b.client.ZRem(ctx, trendingKey, productID).Err(); err != nil {
		return fmt.Errorf("redis zrem trending: %w", err)
	}
	return nil
}
