package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/koyamadev/stockkeeper-backend/pkg/redis"
)

// summaryStore is the slice of the redis client the cache needs.
type summaryStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SummaryKey(version int64, month string) string
	SummaryVersion(ctx context.Context) (int64, error)
	BumpSummaryVersion(ctx context.Context) error
}

// Cache stores rendered monthly summaries in Redis. Invalidation bumps a
// generation counter instead of scanning keys; stale entries expire on TTL.
type Cache struct {
	store summaryStore
	ttl   time.Duration
}

// NewCache wires a summary cache.
func NewCache(store summaryStore, ttl time.Duration) (*Cache, error) {
	if store == nil {
		return nil, fmt.Errorf("summary store is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("summary cache ttl must be positive")
	}
	return &Cache{store: store, ttl: ttl}, nil
}

// Get returns the cached summary for a month label, if present.
func (c *Cache) Get(ctx context.Context, label string) (*MonthlySummary, bool) {
	version, err := c.store.SummaryVersion(ctx)
	if err != nil {
		return nil, false
	}

	raw, err := c.store.Get(ctx, c.store.SummaryKey(version, label))
	if err != nil {
		return nil, false
	}

	var summary MonthlySummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return nil, false
	}
	return &summary, true
}

// Put stores a rendered summary under the current cache generation.
func (c *Cache) Put(ctx context.Context, label string, summary *MonthlySummary) error {
	version, err := c.store.SummaryVersion(ctx)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	return c.store.Set(ctx, c.store.SummaryKey(version, label), string(raw), c.ttl)
}

// InvalidateSummaries drops every cached month by advancing the generation.
// Ledger and catalog services call this after each mutation.
func (c *Cache) InvalidateSummaries(ctx context.Context) error {
	return c.store.BumpSummaryVersion(ctx)
}

var _ summaryStore = (*redis.Client)(nil)
