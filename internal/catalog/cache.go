package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mohammed-shakir/dggs-ldapi/internal/core/observability"
)

// Cache serves the catalog. The first Get builds it (from the snapshot store,
// else from the source); concurrent callers share one build. Entries expire
// after TTL and are dropped by Invalidate; both rebuild from the source.
type Cache struct {
	src   Source
	store SnapshotStore
	ttl   time.Duration
	log   *slog.Logger
	now   func() time.Time

	sf singleflight.Group

	mu          sync.RWMutex
	cur         *Catalog
	loadedAt    time.Time
	gen         uint64
	forceSource bool
}

type CacheOption func(*Cache)

func WithTTL(d time.Duration) CacheOption {
	return func(c *Cache) { c.ttl = d }
}

func WithSnapshotStore(s SnapshotStore) CacheOption {
	return func(c *Cache) {
		if s != nil {
			c.store = s
		}
	}
}

func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

func NewCache(src Source, log *slog.Logger, opts ...CacheOption) *Cache {
	c := &Cache{
		src:   src,
		store: NopStore{},
		log:   log,
		now:   time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Cache) Get(ctx context.Context) (*Catalog, error) {
	c.mu.RLock()
	cur, loadedAt, gen := c.cur, c.loadedAt, c.gen
	c.mu.RUnlock()
	if cur != nil && (c.ttl <= 0 || c.now().Sub(loadedAt) < c.ttl) {
		return cur, nil
	}

	v, err, _ := c.sf.Do("catalog:"+strconv.FormatUint(gen, 10), func() (any, error) {
		return c.build(context.WithoutCancel(ctx), gen, cur != nil)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Catalog), nil
}

func (c *Cache) build(ctx context.Context, gen uint64, expired bool) (*Catalog, error) {
	c.mu.RLock()
	force := c.forceSource || expired
	c.mu.RUnlock()

	if !force {
		snap, ok, err := c.store.Load(ctx)
		if err != nil {
			c.log.WarnContext(ctx, "catalog snapshot load failed", "err", err)
		}
		if ok {
			cat, err := New(snap)
			if err == nil {
				observability.IncCatalogBuild("snapshot")
				c.install(cat, gen)
				return cat, nil
			}
			c.log.WarnContext(ctx, "catalog snapshot rejected", "err", err)
		}
	}

	snap, err := c.src.Load(ctx)
	if err != nil {
		observability.IncCatalogBuild("error")
		return nil, fmt.Errorf("catalog: build: %w", err)
	}
	snap.BuiltAt = c.now().UTC()
	cat, err := New(snap)
	if err != nil {
		observability.IncCatalogBuild("error")
		return nil, fmt.Errorf("catalog: build: %w", err)
	}
	if err := c.store.Save(ctx, snap); err != nil {
		c.log.WarnContext(ctx, "catalog snapshot save failed", "err", err)
	}
	observability.IncCatalogBuild("source")
	c.log.InfoContext(ctx, "catalog built",
		"collections", len(snap.Collections),
		"features", len(snap.Features),
	)
	c.install(cat, gen)
	return cat, nil
}

// install publishes cat unless an invalidation happened while it was built.
func (c *Cache) install(cat *Catalog, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	c.cur = cat
	c.loadedAt = c.now()
	c.forceSource = false
}

// Invalidate drops the cached catalog; the next Get rebuilds from the source.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.cur = nil
	c.gen++
	c.forceSource = true
	c.mu.Unlock()
}

// Loaded reports whether a catalog is currently cached.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cur != nil
}
