package invalidation_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/IBM/sarama"
	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/mohammed-shakir/dggs-ldapi/internal/cache/filtercache"
	"github.com/mohammed-shakir/dggs-ldapi/internal/cache/keys"
	"github.com/mohammed-shakir/dggs-ldapi/internal/cache/redisstore"
	"github.com/mohammed-shakir/dggs-ldapi/internal/catalog"
	"github.com/mohammed-shakir/dggs-ldapi/internal/grid"
	"github.com/mohammed-shakir/dggs-ldapi/internal/invalidation"
	"github.com/mohammed-shakir/dggs-ldapi/internal/invalidation/kafkaconsumer"
	"github.com/mohammed-shakir/dggs-ldapi/internal/zone"
)

type countingGeo struct{ calls atomic.Int32 }

func (g *countingGeo) Within(context.Context, catalog.Collection, grid.BBox) ([]zone.Address, error) {
	g.calls.Add(1)
	return []zone.Address{"R12"}, nil
}

type countingCatalog struct{ loads atomic.Int32 }

func (s *countingCatalog) Load(context.Context) (catalog.Snapshot, error) {
	s.loads.Add(1)
	return catalog.Snapshot{
		Dataset: catalog.Dataset{URI: "https://w3id.org/dggs/tb16pix", Title: "TB16Pix"},
		Collections: []catalog.Collection{
			{ID: "g2", Resolution: 2},
			{ID: "g3", Resolution: 3},
		},
	}, nil
}

func countPrefix(mr *miniredis.Miniredis, prefix string) int {
	n := 0
	for _, k := range mr.Keys() {
		if strings.HasPrefix(k, prefix) {
			n++
		}
	}
	return n
}

func message(t *testing.T, off int64, ev invalidation.Event) *sarama.ConsumerMessage {
	t.Helper()
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return &sarama.ConsumerMessage{Topic: "dggs-catalog-invalidation", Offset: off, Value: b}
}

func TestInvalidationDropsCachedState(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mr := miniredis.RunT(t)
	rdb, err := redisstore.New(ctx, mr.Addr())
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })

	src := &countingCatalog{}
	cat := catalog.NewCache(src, log, catalog.WithSnapshotStore(catalog.NewRedisStore(rdb, time.Hour)))
	geo := &countingGeo{}
	fc, err := filtercache.New(log, geo, 8, filtercache.WithRedis(rdb))
	if err != nil {
		t.Fatalf("filtercache: %v", err)
	}

	box := grid.BBox{MinLon: 149, MinLat: -36, MaxLon: 150, MaxLat: -35}
	c, err := cat.Get(ctx)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	for _, coll := range c.Collections() {
		if _, err := fc.Within(ctx, coll, box); err != nil {
			t.Fatalf("within %s: %v", coll.ID, err)
		}
	}
	if countPrefix(mr, keys.FilterPrefix("g2")) != 1 || countPrefix(mr, keys.FilterPrefix("g3")) != 1 {
		t.Fatalf("filter results not in redis: %v", mr.Keys())
	}

	consumer := kafkaconsumer.New(kafkaconsumer.Config{DedupeSize: 16}, log, cat, fc)

	err = consumer.ProcessOne(ctx, message(t, 1, invalidation.Event{
		Version: 1, Op: invalidation.OpCollection, Collection: "g2", TS: time.Now().UTC(),
	}))
	if err != nil {
		t.Fatalf("process collection event: %v", err)
	}
	if n := countPrefix(mr, keys.FilterPrefix("g2")); n != 0 {
		t.Fatalf("g2 keys left=%d", n)
	}
	if n := countPrefix(mr, keys.FilterPrefix("g3")); n != 1 {
		t.Fatalf("g3 keys=%d want untouched", n)
	}
	g2, _ := c.Collection("g2")
	if _, err := fc.Within(ctx, g2, box); err != nil {
		t.Fatalf("within: %v", err)
	}
	if got := geo.calls.Load(); got != 3 {
		t.Fatalf("geometry calls=%d want 3 after g2 invalidation", got)
	}

	err = consumer.ProcessOne(ctx, message(t, 2, invalidation.Event{
		Version: 1, Op: invalidation.OpCatalog, TS: time.Now().UTC(),
	}))
	if err != nil {
		t.Fatalf("process catalog event: %v", err)
	}
	if countPrefix(mr, keys.FilterPrefix("")) != 0 {
		t.Fatalf("filter keys survived catalog invalidation: %v", mr.Keys())
	}
	if _, err := cat.Get(ctx); err != nil {
		t.Fatalf("catalog rebuild: %v", err)
	}
	if got := src.loads.Load(); got != 2 {
		t.Fatalf("catalog source loads=%d want 2", got)
	}
}
