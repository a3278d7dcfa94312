package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fieldcost/fieldcost/internal/engine"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// FiguresCache keeps the aggregated budget figures of a project in
// Redis so read-heavy dashboards do not pay the full aggregation on
// every request. Entries are best effort: a miss or a Redis outage
// just costs a fresh pass.
type FiguresCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewFiguresCache(rdb *redis.Client, ttl time.Duration) *FiguresCache {
	return &FiguresCache{rdb: rdb, ttl: ttl}
}

func figuresKey(projectID uuid.UUID) string {
	return fmt.Sprintf("fieldcost:figures:%s", projectID)
}

// Get returns the cached figures, or (nil, nil) on a miss.
func (c *FiguresCache) Get(ctx context.Context, projectID uuid.UUID) (*engine.ProjectFigures, error) {
	raw, err := c.rdb.Get(ctx, figuresKey(projectID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("figures cache get: %w", err)
	}
	var f engine.ProjectFigures
	if err := json.Unmarshal(raw, &f); err != nil {
		// A corrupt entry behaves like a miss.
		_ = c.rdb.Del(ctx, figuresKey(projectID)).Err()
		return nil, nil
	}
	return &f, nil
}

func (c *FiguresCache) Set(ctx context.Context, projectID uuid.UUID, f engine.ProjectFigures) error {
	raw, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("figures cache encode: %w", err)
	}
	return c.rdb.Set(ctx, figuresKey(projectID), raw, c.ttl).Err()
}

func (c *FiguresCache) Invalidate(ctx context.Context, projectID uuid.UUID) error {
	return c.rdb.Del(ctx, figuresKey(projectID)).Err()
}
