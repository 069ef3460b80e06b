package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"food-ordering-api/internal/model"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	itemsKey          = "catalog:items"
	idempotencyPrefix = "idempotent-key:"
)

type IdempotencyStore interface {
	// Acquire records key and reports whether it was unused until now.
	Acquire(ctx context.Context, key string) (bool, error)
	// Release frees key after a failed attempt.
	Release(ctx context.Context, key string) error
}

type CatalogCache interface {
	GetItems(ctx context.Context) ([]*model.Item, bool, error)
	SetItems(ctx context.Context, items []*model.Item) error
	InvalidateItems(ctx context.Context) error
}

type redisIdempotencyImpl struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisIdempotencyStore(rdb *redis.Client, ttl time.Duration) IdempotencyStore {
	return &redisIdempotencyImpl{
		rdb: rdb,
		ttl: ttl,
	}
}

func (s *redisIdempotencyImpl) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, idempotencyPrefix+key, time.Now().Unix(), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx idempotency key: %w", err)
	}
	return ok, nil
}

func (s *redisIdempotencyImpl) Release(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, idempotencyPrefix+key).Err(); err != nil {
		return fmt.Errorf("del idempotency key: %w", err)
	}
	return nil
}

type redisCatalogImpl struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCatalogCache(rdb *redis.Client, ttl time.Duration) CatalogCache {
	return &redisCatalogImpl{
		rdb: rdb,
		ttl: ttl,
	}
}

func (c *redisCatalogImpl) GetItems(ctx context.Context) ([]*model.Item, bool, error) {
	raw, err := c.rdb.Get(ctx, itemsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached items: %w", err)
	}

	var items []*model.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached items: %w", err)
	}
	return items, true, nil
}

func (c *redisCatalogImpl) SetItems(ctx context.Context, items []*model.Item) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	if err := c.rdb.Set(ctx, itemsKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached items: %w", err)
	}
	return nil
}

func (c *redisCatalogImpl) InvalidateItems(ctx context.Context) error {
	if err := c.rdb.Del(ctx, itemsKey).Err(); err != nil {
		return fmt.Errorf("del cached items: %w", err)
	}
	return nil
}

type nopIdempotencyImpl struct{}

// NewNopIdempotencyStore accepts every key. Used when redis is not configured.
func NewNopIdempotencyStore() IdempotencyStore {
	return nopIdempotencyImpl{}
}

func (nopIdempotencyImpl) Acquire(context.Context, string) (bool, error) { return true, nil }

func (nopIdempotencyImpl) Release(context.Context, string) error { return nil }

type nopCatalogImpl struct{}

func NewNopCatalogCache() CatalogCache {
	return nopCatalogImpl{}
}

func (nopCatalogImpl) GetItems(context.Context) ([]*model.Item, bool, error) { return nil, false, nil }

func (nopCatalogImpl) SetItems(context.Context, []*model.Item) error { return nil }

func (nopCatalogImpl) InvalidateItems(context.Context) error { return nil }
