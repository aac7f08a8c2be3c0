// Package cache keeps per-author post id indexes in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// PostIndex stores each author's post ids, newest first, as a Redis list.
type PostIndex struct {
	client *redis.Client
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

func NewPostIndex(client *redis.Client, ttl time.Duration) *PostIndex {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &PostIndex{client: client, ttl: ttl}
}

func indexKey(authorID int) string { return fmt.Sprintf("posts:index:%d", authorID) }

// Get returns the cached ids for authorID. ok is false on a miss.
func (c *PostIndex) Get(ctx context.Context, authorID int) ([]int, bool, error) {
	raw, err := c.client.LRange(ctx, indexKey(authorID), 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, false, err
	}
	if len(raw) == 0 {
		c.misses.Add(1)
		return nil, false, nil
	}

	ids := make([]int, 0, len(raw))
	for _, s := range raw {
		id, err := strconv.Atoi(s)
		if err != nil {
			// corrupt entry, let the caller rebuild
			c.misses.Add(1)
			return nil, false, nil
		}
		ids = append(ids, id)
	}
	c.hits.Add(1)
	return ids, true, nil
}

// Set replaces the index for authorID. An empty list is not cached.
func (c *PostIndex) Set(ctx context.Context, authorID int, ids []int) error {
	key := indexKey(authorID)
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(ids) > 0 {
		pipe.RPush(ctx, key, intsToArgs(ids)...)
		pipe.Expire(ctx, key, c.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Invalidate drops the index so the next read reloads it.
func (c *PostIndex) Invalidate(ctx context.Context, authorID int) error {
	return c.client.Del(ctx, indexKey(authorID)).Err()
}

func intsToArgs(ids []int) []interface{} {
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

// ResetCounters clears hit/miss counters.
func (c *PostIndex) ResetCounters() {
	c.hits.Store(0)
	c.misses.Store(0)
}

// Counters reports cache hits and misses since the last reset.
func (c *PostIndex) Counters() Counters {
	return Counters{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Counters summarises index lookups.
type Counters struct {
	Hits   int64
	Misses int64
}

// PageAfter returns up to limit ids strictly older than cursor from a newest-first list.
// cursor 0 starts at the head.
func PageAfter(ids []int, cursor, limit int) []int {
	start := 0
	if cursor > 0 {
		start = len(ids)
		for i, id := range ids {
			if id < cursor {
				start = i
				break
			}
		}
	}
	end := start + limit
	if end > len(ids) {
		end = len(ids)
	}
	return ids[start:end]
}
