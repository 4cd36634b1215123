package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/redis/go-redis/v9"
)

// CachedStore puts a Redis read-through cache in front of a Store. Redis errors
// are logged and fall through to the underlying store.
type CachedStore struct {
	Store Store
	Redis redis.Cmdable
	Log   *slog.Logger
}

func (c *CachedStore) List(ctx context.Context) ([]Product, error) {
	var ps []Product
	if c.load(ctx, redisx.KeyProductList, &ps) {
		return ps, nil
	}
	ps, err := c.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	c.save(ctx, redisx.KeyProductList, ps, redisx.TTLProductList)
	return ps, nil
}

func (c *CachedStore) Get(ctx context.Context, id string) (Product, error) {
	key := fmt.Sprintf(redisx.KeyProduct, id)
	var p Product
	if c.load(ctx, key, &p) {
		return p, nil
	}
	p, err := c.Store.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	c.save(ctx, key, p, redisx.TTLProduct)
	return p, nil
}

func (c *CachedStore) Create(ctx context.Context, p Product) error {
	if err := c.Store.Create(ctx, p); err != nil {
		return err
	}
	c.evict(ctx, redisx.KeyProductList)
	return nil
}

func (c *CachedStore) Update(ctx context.Context, p Product) error {
	err := c.Store.Update(ctx, p)
	// evict walaupun gagal, biar cache tidak basi
	c.evict(ctx, fmt.Sprintf(redisx.KeyProduct, p.ID), redisx.KeyProductList)
	return err
}

func (c *CachedStore) Delete(ctx context.Context, id string) error {
	err := c.Store.Delete(ctx, id)
	c.evict(ctx, fmt.Sprintf(redisx.KeyProduct, id), redisx.KeyProductList)
	return err
}

func (c *CachedStore) load(ctx context.Context, key string, out any) bool {
	b, err := c.Redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.Log.WarnContext(ctx, "catalog cache get failed", "key", key, "err", err)
		}
		return false
	}
	if err := json.Unmarshal(b, out); err != nil {
		c.Log.WarnContext(ctx, "catalog cache entry unreadable", "key", key, "err", err)
		return false
	}
	return true
}

func (c *CachedStore) save(ctx context.Context, key string, v any, ttl time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.Redis.Set(ctx, key, b, ttl).Err(); err != nil {
		c.Log.WarnContext(ctx, "catalog cache set failed", "key", key, "err", err)
	}
}

func (c *CachedStore) evict(ctx context.Context, keys ...string) {
	if err := c.Redis.Del(ctx, keys...).Err(); err != nil {
		c.Log.WarnContext(ctx, "catalog cache evict failed", "keys", keys, "err", err)
	}
}
