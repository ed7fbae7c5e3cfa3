package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/fridgechef/internal/core/domain"
)

type cacheEntry struct {
	recipes   []domain.Recipe
	expiresAt time.Time
}

// RecipeCache is an in-process recipe cache used when Redis is not configured.
type RecipeCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewRecipeCache(ttl time.Duration) *RecipeCache {
	return &RecipeCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *RecipeCache) Get(ctx context.Context, key string) ([]domain.Recipe, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if c.ttl > 0 && c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return append([]domain.Recipe(nil), e.recipes...), true, nil
}

func (c *RecipeCache) Set(ctx context.Context, key string, recipes []domain.Recipe) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	// Drop expired entries
	if c.ttl > 0 {
		for k, e := range c.entries {
			if now.After(e.expiresAt) {
				delete(c.entries, k)
			}
		}
	}
	c.entries[key] = cacheEntry{
		recipes:   append([]domain.Recipe(nil), recipes...),
		expiresAt: now.Add(c.ttl),
	}
	return nil
}

// Quota counts model calls per user per calendar day in memory.
type Quota struct {
	mu     sync.Mutex
	limit  int
	counts map[string]int
	now    func() time.Time
}

// NewQuota creates a daily quota; limit <= 0 disables it.
func NewQuota(limit int) *Quota {
	return &Quota{
		limit:  limit,
		counts: make(map[string]int),
		now:    time.Now,
	}
}

// Allow consumes one unit for userID and reports whether it was within the limit.
func (q *Quota) Allow(ctx context.Context, userID string) (bool, error) {
	if q.limit <= 0 {
		return true, nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	today := q.now().UTC().Format(time.DateOnly)
	key := userID + ":" + today
	// Drop counters from previous days
	for k := range q.counts {
		if len(k) < len(today) || k[len(k)-len(today):] != today {
			delete(q.counts, k)
		}
	}
	q.counts[key]++
	return q.counts[key] <= q.limit, nil
}

// Refund gives back one unit consumed today by userID.
func (q *Quota) Refund(ctx context.Context, userID string) error {
	if q.limit <= 0 {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	key := userID + ":" + q.now().UTC().Format(time.DateOnly)
	if q.counts[key] > 0 {
		q.counts[key]--
	}
	return nil
}
