package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/fridgechef/internal/core/domain"
)

// RecipeCache stores generated recipe lists as JSON with a TTL.
type RecipeCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRecipeCache creates a Redis-backed recipe cache.
func NewRecipeCache(client *Client, ttl time.Duration) *RecipeCache {
	return &RecipeCache{
		rdb:    client.rdb,
		prefix: client.prefix,
		ttl:    ttl,
	}
}

// Get returns the cached recipes for key. A missing key is a miss, not an error.
func (c *RecipeCache) Get(ctx context.Context, key string) ([]domain.Recipe, bool, error) {
	data, err := c.rdb.Get(ctx, recipeKey(c.prefix, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get failed: %w", err)
	}

	var recipes []domain.Recipe
	if err := json.Unmarshal(data, &recipes); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached recipes: %w", err)
	}
	return recipes, true, nil
}

// Set stores recipes under key.
func (c *RecipeCache) Set(ctx context.Context, key string, recipes []domain.Recipe) error {
	data, err := json.Marshal(recipes)
	if err != nil {
		return fmt.Errorf("failed to marshal recipes: %w", err)
	}
	if err := c.rdb.Set(ctx, recipeKey(c.prefix, key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set failed: %w", err)
	}
	return nil
}
