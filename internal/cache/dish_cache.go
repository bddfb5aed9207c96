// Package cache keeps read-mostly catalog data in Redis.
package cache

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/metrics"
	"alcyxob/coaching-app/internal/repository"
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const dishKeyPrefix = "coaching:dish:"

// DishCache is a read-through repository.DishCatalog. Redis failures degrade
// to direct catalog reads and are only logged.
type DishCache struct {
	rdb     redis.Cmdable
	next    repository.DishCatalog
	ttl     time.Duration
	metrics *metrics.Manager
	logger  *zap.Logger
}

var _ repository.DishCatalog = (*DishCache)(nil)

func NewDishCache(rdb redis.Cmdable, next repository.DishCatalog, ttl time.Duration, m *metrics.Manager, logger *zap.Logger) *DishCache {
	return &DishCache{
		rdb:     rdb,
		next:    next,
		ttl:     ttl,
		metrics: m,
		logger:  logger,
	}
}

func dishKey(id string) string {
	return dishKeyPrefix + id
}

// GetByIDs returns the dishes in the order of ids, skipping unknown ones.
func (c *DishCache) GetByIDs(ctx context.Context, ids []string) ([]domain.Dish, error) {
	ids = distinct(ids)
	if len(ids) == 0 {
		return []domain.Dish{}, nil
	}

	found := make(map[string]domain.Dish, len(ids))
	missing := c.readCached(ctx, ids, found)

	if len(missing) > 0 {
		c.metrics.CounterDishCacheMisses.Add(float64(len(missing)))
		dishes, err := c.next.GetByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, d := range dishes {
			found[d.ID.Hex()] = d
			c.store(ctx, d)
		}
	}
	c.metrics.CounterDishCacheHits.Add(float64(len(ids) - len(missing)))

	out := make([]domain.Dish, 0, len(found))
	for _, id := range ids {
		if d, ok := found[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// readCached fills found from Redis and returns the ids it could not serve.
func (c *DishCache) readCached(ctx context.Context, ids []string, found map[string]domain.Dish) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = dishKey(id)
	}
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("dish cache read failed", zap.Error(err))
		return ids
	}

	var missing []string
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		var d domain.Dish
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			c.logger.Warn("dropping undecodable cached dish", zap.String("dishId", ids[i]), zap.Error(err))
			missing = append(missing, ids[i])
			continue
		}
		found[ids[i]] = d
	}
	return missing
}

func (c *DishCache) store(ctx context.Context, d domain.Dish) {
	data, err := json.Marshal(d)
	if err != nil {
		c.logger.Warn("cannot encode dish for cache", zap.String("dishId", d.ID.Hex()), zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, dishKey(d.ID.Hex()), string(data), c.ttl).Err(); err != nil {
		c.logger.Warn("dish cache write failed", zap.String("dishId", d.ID.Hex()), zap.Error(err))
	}
}

func distinct(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
