// Package filtercache memoizes geographic filter results. L1 is an in-process
// LRU, L2 an optional shared Redis namespace.
package filtercache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mohammed-shakir/dggs-ldapi/internal/cache"
	"github.com/mohammed-shakir/dggs-ldapi/internal/cache/keys"
	"github.com/mohammed-shakir/dggs-ldapi/internal/cache/redisstore"
	"github.com/mohammed-shakir/dggs-ldapi/internal/catalog"
	"github.com/mohammed-shakir/dggs-ldapi/internal/core/observability"
	"github.com/mohammed-shakir/dggs-ldapi/internal/geosource"
	"github.com/mohammed-shakir/dggs-ldapi/internal/grid"
	"github.com/mohammed-shakir/dggs-ldapi/internal/zone"
)

const (
	DefaultSize = 1024
	DefaultTTL  = 10 * time.Minute
)

type Cache struct {
	log   *slog.Logger
	next  geosource.Source
	l1    *lru.Cache[string, []zone.Address]
	l2    cache.Interface
	ttl   time.Duration
	opTTL time.Duration
}

type Option func(*Cache)

// WithRedis enables the shared L2 tier.
func WithRedis(kv cache.Interface) Option { return func(c *Cache) { c.l2 = kv } }

func WithTTL(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithOpTimeout bounds each Redis call.
func WithOpTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.opTTL = d
		}
	}
}

func New(log *slog.Logger, next geosource.Source, size int, opts ...Option) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	l1, err := lru.New[string, []zone.Address](size)
	if err != nil {
		return nil, fmt.Errorf("filtercache lru: %w", err)
	}
	c := &Cache{log: log, next: next, l1: l1, ttl: DefaultTTL, opTTL: 250 * time.Millisecond}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func key(coll catalog.Collection, bbox grid.BBox) string {
	value := num(bbox.MinLon) + "," + num(bbox.MinLat) + "," + num(bbox.MaxLon) + "," + num(bbox.MaxLat)
	return keys.Filter(coll.ID, coll.Resolution, "geographic", value)
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// Within implements geosource.Source. Redis failures degrade to the wrapped source.
func (c *Cache) Within(ctx context.Context, coll catalog.Collection, bbox grid.BBox) ([]zone.Address, error) {
	k := key(coll, bbox)
	if ids, ok := c.l1.Get(k); ok {
		observability.IncFilterCache("l1", true)
		return ids, nil
	}
	observability.IncFilterCache("l1", false)

	if c.l2 != nil {
		if ids, ok := c.getL2(ctx, k); ok {
			observability.IncFilterCache("l2", true)
			c.l1.Add(k, ids)
			return ids, nil
		}
		observability.IncFilterCache("l2", false)
	}

	ids, err := c.next.Within(ctx, coll, bbox)
	if err != nil {
		return nil, err
	}
	c.l1.Add(k, ids)
	if c.l2 != nil {
		c.putL2(ctx, k, ids)
	}
	return ids, nil
}

func (c *Cache) getL2(ctx context.Context, k string) ([]zone.Address, bool) {
	opCtx, cancel := context.WithTimeout(ctx, c.opTTL)
	defer cancel()
	b, err := c.l2.Get(opCtx, k)
	if err != nil {
		if !errors.Is(err, redisstore.ErrMiss) {
			c.log.WarnContext(ctx, "filter cache read failed", "key", k, "err", err)
		}
		return nil, false
	}
	var ids []zone.Address
	if err := json.Unmarshal(b, &ids); err != nil {
		c.log.WarnContext(ctx, "filter cache entry corrupt", "key", k, "err", err)
		return nil, false
	}
	return ids, true
}

func (c *Cache) putL2(ctx context.Context, k string, ids []zone.Address) {
	b, err := json.Marshal(ids)
	if err != nil {
		return
	}
	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opTTL)
	defer cancel()
	if err := c.l2.Set(opCtx, k, b, c.ttl); err != nil {
		c.log.WarnContext(ctx, "filter cache write failed", "key", k, "err", err)
	}
}

// Invalidate drops cached results for collection; empty drops everything.
func (c *Cache) Invalidate(ctx context.Context, collection string) error {
	if collection == "" {
		c.l1.Purge()
	} else {
		prefix := keys.FilterPrefix(collection)
		for _, k := range c.l1.Keys() {
			if strings.HasPrefix(k, prefix) {
				c.l1.Remove(k)
			}
		}
	}
	if c.l2 == nil {
		return nil
	}
	n, err := c.l2.DelPrefix(ctx, keys.FilterPrefix(collection))
	if err != nil {
		return fmt.Errorf("filtercache invalidate %q: %w", collection, err)
	}
	c.log.InfoContext(ctx, "filter cache invalidated", "collection", collection, "redis_keys", n)
	return nil
}
