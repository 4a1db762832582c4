// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// tree.go caches the flattened category list in Valkey. Any committed
// mutation can change depths anywhere below the moved node, so the whole
// projection is dropped rather than patched.
//
// Every commit also bumps a generation counter. A reader samples the
// generation before it queries the store and Set writes only while the
// counter still holds that value, so a list read before a commit can never
// be stored after the commit's invalidation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"categoryd/internal/category"
)

const (
	treeKey = "categories:list"
	genKey  = "categories:list:gen"

	// DefaultTreeTTL is how long the cached list stays valid without a mutation.
	DefaultTreeTTL = 5 * time.Minute
)

// setIfGeneration stores ARGV[2] under KEYS[1] with a PX of ARGV[3] only
// when the counter at KEYS[2] (missing counts as 0) equals ARGV[1].
var setIfGeneration = redis.NewScript(`
if (redis.call('GET', KEYS[2]) or '0') ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// TreeCache stores the result of category.Service.List. A nil *TreeCache
// is valid and always misses.
type TreeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTreeCache creates a tree cache backed by the given Valkey client.
func NewTreeCache(client *redis.Client, ttl time.Duration) *TreeCache {
	if ttl <= 0 {
		ttl = DefaultTreeTTL
	}
	return &TreeCache{client: client, ttl: ttl}
}

// Get returns the cached list. The second result is false on a miss or
// when Valkey is unavailable.
func (tc *TreeCache) Get(ctx context.Context) ([]category.DTO, bool) {
	if tc == nil {
		return nil, false
	}
	raw, err := tc.client.Get(ctx, treeKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("tree cache get error", "error", err)
		return nil, false
	}

	var items []category.DTO
	if err := json.Unmarshal(raw, &items); err != nil {
		slog.Warn("tree cache decode error", "error", err)
		tc.Invalidate(ctx)
		return nil, false
	}
	slog.Debug("tree cache hit", "count", len(items))
	return items, true
}

// Generation returns the current invalidation generation. Callers read it
// before loading the list and pass it to Set. The second result is false
// when Valkey is unavailable; the list should not be cached then.
func (tc *TreeCache) Generation(ctx context.Context) (int64, bool) {
	if tc == nil {
		return 0, false
	}
	gen, err := tc.client.Get(ctx, genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		slog.Warn("tree cache generation error", "error", err)
		return 0, false
	}
	return gen, true
}

// Set stores the list with the configured TTL, unless a mutation committed
// after gen was read. It reports whether the list was stored.
func (tc *TreeCache) Set(ctx context.Context, gen int64, items []category.DTO) bool {
	if tc == nil {
		return false
	}
	raw, err := json.Marshal(items)
	if err != nil {
		slog.Warn("tree cache encode error", "error", err)
		return false
	}
	stored, err := setIfGeneration.Run(ctx, tc.client,
		[]string{treeKey, genKey},
		strconv.FormatInt(gen, 10), raw, tc.ttl.Milliseconds(),
	).Int()
	if err != nil {
		slog.Warn("tree cache set error", "error", err)
		return false
	}
	if stored == 0 {
		slog.Debug("tree cache set skipped: stale generation", "generation", gen)
		return false
	}
	return true
}

// Invalidate drops the cached list.
func (tc *TreeCache) Invalidate(ctx context.Context) {
	if tc == nil {
		return
	}
	if err := tc.client.Del(ctx, treeKey).Err(); err != nil {
		slog.Warn("tree cache invalidate error", "error", err)
		return
	}
	slog.Debug("tree cache invalidated")
}

// Committed implements category.Observer. It advances the generation and
// drops the cached list in one transaction.
func (tc *TreeCache) Committed(ctx context.Context, ev category.Event) {
	if tc == nil {
		return
	}
	_, err := tc.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Del(ctx, treeKey)
		return nil
	})
	if err != nil {
		slog.Warn("tree cache invalidate error", "op", ev.Op, "error", err)
		return
	}
	slog.Debug("tree cache invalidated", "op", ev.Op)
}

// Rejected implements category.Observer. A rejected mutation rolled back,
// so the cached list is still accurate.
func (tc *TreeCache) Rejected(context.Context, string, error) {}
