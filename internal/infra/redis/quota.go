package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// refundScript decrements the counter only while it is positive.
var refundScript = redis.NewScript(`
local n = tonumber(redis.call("GET", KEYS[1]) or "0")
if n > 0 then
	return redis.call("DECR", KEYS[1])
end
return 0
`)

// Quota counts model calls per user per UTC day.
type Quota struct {
	rdb    *redis.Client
	prefix string
	limit  int
	now    func() time.Time
}

// NewQuota creates a daily quota; limit <= 0 disables it.
func NewQuota(client *Client, limit int) *Quota {
	return &Quota{
		rdb:    client.rdb,
		prefix: client.prefix,
		limit:  limit,
		now:    time.Now,
	}
}

// Allow consumes one unit for userID and reports whether it was within the limit.
func (q *Quota) Allow(ctx context.Context, userID string) (bool, error) {
	if q.limit <= 0 {
		return true, nil
	}

	now := q.now()
	key := quotaKey(q.prefix, userID, now)

	var incr *redis.IntCmd
	_, err := q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		// Counter lives until the end of the day plus slack for clock skew
		pipe.Expire(ctx, key, untilEndOfDay(now)+time.Hour)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("quota incr failed: %w", err)
	}
	return incr.Val() <= int64(q.limit), nil
}

// Refund gives back one unit consumed today by userID.
func (q *Quota) Refund(ctx context.Context, userID string) error {
	if q.limit <= 0 {
		return nil
	}
	key := quotaKey(q.prefix, userID, q.now())
	if err := refundScript.Run(ctx, q.rdb, []string{key}).Err(); err != nil {
		return fmt.Errorf("quota refund failed: %w", err)
	}
	return nil
}

func untilEndOfDay(now time.Time) time.Duration {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	return next.Sub(now)
}
