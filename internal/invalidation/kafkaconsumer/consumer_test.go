package kafkaconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/IBM/sarama"

	"github.com/mohammed-shakir/dggs-ldapi/internal/invalidation"
)

type fakeCatalog struct{ n atomic.Int32 }

func (f *fakeCatalog) Invalidate() { f.n.Add(1) }

type fakeFilters struct {
	failFirst atomic.Bool
	mu        sync.Mutex
	seen      []string
}

func (f *fakeFilters) Invalidate(_ context.Context, collection string) error {
	f.mu.Lock()
	f.seen = append(f.seen, collection)
	f.mu.Unlock()
	if f.failFirst.Load() {
		f.failFirst.Store(false)
		return errors.New("redis unavailable")
	}
	return nil
}

func (f *fakeFilters) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.seen...)
}

type sess struct {
	ctx    context.Context
	claims map[string][]int32
	mu     sync.Mutex
	marked []int64
}

func (s *sess) Claims() map[string][]int32 { return s.claims }
func (s *sess) MemberID() string           { return "" }
func (s *sess) GenerationID() int32        { return 0 }
func (s *sess) MarkMessage(m *sarama.ConsumerMessage, _ string) {
	s.mu.Lock()
	s.marked = append(s.marked, m.Offset)
	s.mu.Unlock()
}
func (s *sess) ResetOffset(_ string, _ int32, _ int64, _ string) {}
func (s *sess) MarkOffset(_ string, _ int32, _ int64, _ string)  {}
func (s *sess) Context() context.Context                         { return s.ctx }
func (s *sess) Errors() <-chan error                             { return nil }
func (s *sess) Commit()                                          {}

type claim struct {
	part int32
	msgs chan *sarama.ConsumerMessage
}

func (c *claim) Topic() string                            { return "dggs-catalog-invalidation" }
func (c *claim) Partition() int32                         { return c.part }
func (c *claim) InitialOffset() int64                     { return 0 }
func (c *claim) HighWaterMarkOffset() int64               { return 0 }
func (c *claim) Messages() <-chan *sarama.ConsumerMessage { return c.msgs }

func eventBytes(op invalidation.Op, collection string, version uint64) []byte {
	ev := invalidation.Event{Version: version, Op: op, Collection: collection, TS: time.Now().UTC()}
	b, _ := json.Marshal(ev)
	return b
}

func message(part int32, off int64, value []byte) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{Topic: "dggs-catalog-invalidation", Partition: part, Offset: off, Value: value}
}

func newConsumerForTest(cat *fakeCatalog, f *fakeFilters) *Consumer {
	cfg := Config{Brokers: []string{"x"}, Topic: "dggs-catalog-invalidation", GroupID: "g", DedupeSize: 16}
	return New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), cat, f)
}

func consume(t *testing.T, c *Consumer, s *sess, part int32, msgs ...*sarama.ConsumerMessage) error {
	t.Helper()
	ch := make(chan *sarama.ConsumerMessage, len(msgs))
	for _, m := range msgs {
		ch <- m
	}
	close(ch)
	g := &groupHandler{process: c.ProcessOne}
	return g.ConsumeClaim(s, &claim{part: part, msgs: ch})
}

func TestSinglePartition_OrderAndCommitAfterWork(t *testing.T) {
	cat, f := &fakeCatalog{}, &fakeFilters{}
	c := newConsumerForTest(cat, f)
	s := &sess{ctx: t.Context()}

	err := consume(t, c, s, 0,
		message(0, 10, eventBytes(invalidation.OpCollection, "g4", 1)),
		message(0, 11, eventBytes(invalidation.OpCollection, "g4", 2)),
	)
	if err != nil {
		t.Fatalf("ConsumeClaim: %v", err)
	}
	if len(s.marked) != 2 || s.marked[0] != 10 || s.marked[1] != 11 {
		t.Fatalf("marked offsets=%v want [10 11]", s.marked)
	}
	if got := f.calls(); len(got) != 2 || got[0] != "g4" {
		t.Fatalf("filter invalidations=%v", got)
	}
	if cat.n.Load() != 0 {
		t.Fatal("collection event must not drop the catalog")
	}
}

func TestRetry_CommitOnceAfterSuccess(t *testing.T) {
	cat, f := &fakeCatalog{}, &fakeFilters{}
	f.failFirst.Store(true)
	c := newConsumerForTest(cat, f)

	msg := message(0, 5, eventBytes(invalidation.OpCollection, "g7", 1))
	if err := c.ProcessOne(context.Background(), msg); err == nil {
		t.Fatalf("expected error on first attempt")
	}

	s := &sess{ctx: context.Background()}
	if err := consume(t, c, s, 0, msg); err != nil {
		t.Fatalf("ConsumeClaim second attempt: %v", err)
	}
	if len(s.marked) != 1 || s.marked[0] != 5 {
		t.Fatalf("offset was not marked after success; marked=%v", s.marked)
	}
	if got := f.calls(); len(got) != 2 {
		t.Fatalf("failed version must be retried; calls=%v", got)
	}
}

func TestReplayedVersionIsSkipped(t *testing.T) {
	cat, f := &fakeCatalog{}, &fakeFilters{}
	c := newConsumerForTest(cat, f)
	s := &sess{ctx: t.Context()}

	err := consume(t, c, s, 0,
		message(0, 1, eventBytes(invalidation.OpCatalog, "", 7)),
		message(0, 2, eventBytes(invalidation.OpCatalog, "", 7)),
		message(0, 3, eventBytes(invalidation.OpCatalog, "", 6)),
		message(0, 4, eventBytes(invalidation.OpCatalog, "", 8)),
	)
	if err != nil {
		t.Fatalf("ConsumeClaim: %v", err)
	}
	if got := cat.n.Load(); got != 2 {
		t.Fatalf("catalog invalidations=%d want 2", got)
	}
	if len(s.marked) != 4 {
		t.Fatalf("skipped events must still be marked; marked=%v", s.marked)
	}
}

func TestCatalogEventDropsEverything(t *testing.T) {
	cat, f := &fakeCatalog{}, &fakeFilters{}
	c := newConsumerForTest(cat, f)

	if err := c.ProcessOne(context.Background(), message(0, 1, eventBytes(invalidation.OpAll, "", 1))); err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	if cat.n.Load() != 1 {
		t.Fatal("catalog not invalidated")
	}
	if got := f.calls(); len(got) != 1 || got[0] != "" {
		t.Fatalf("filter invalidations=%v want one purge", got)
	}
}

func TestMalformedEventsAreDropped(t *testing.T) {
	cat, f := &fakeCatalog{}, &fakeFilters{}
	c := newConsumerForTest(cat, f)
	s := &sess{ctx: t.Context()}

	err := consume(t, c, s, 0,
		message(0, 1, []byte("{not json")),
		message(0, 2, eventBytes(invalidation.OpCollection, "", 1)),
	)
	if err != nil {
		t.Fatalf("ConsumeClaim: %v", err)
	}
	if len(s.marked) != 2 {
		t.Fatalf("marked=%v want both", s.marked)
	}
	if cat.n.Load() != 0 || len(f.calls()) != 0 {
		t.Fatal("malformed events must not invalidate")
	}
}

func TestMultiPartition_Parallel_NoCrossOrdering(t *testing.T) {
	cat, f := &fakeCatalog{}, &fakeFilters{}
	c := newConsumerForTest(cat, f)
	s := &sess{ctx: t.Context()}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = consume(t, c, s, 0,
			message(0, 1, eventBytes(invalidation.OpCollection, "g1", 1)),
			message(0, 2, eventBytes(invalidation.OpCollection, "g1", 2)))
	}()
	go func() {
		defer wg.Done()
		_ = consume(t, c, s, 1,
			message(1, 1, eventBytes(invalidation.OpCollection, "g2", 1)),
			message(1, 2, eventBytes(invalidation.OpCollection, "g2", 2)))
	}()
	wg.Wait()

	if len(s.marked) != 4 {
		t.Fatalf("expected 4 marks total; got %v", s.marked)
	}
}

func TestReadyTracksAssignment(t *testing.T) {
	c := newConsumerForTest(&fakeCatalog{}, &fakeFilters{})
	if err := c.Ready(context.Background()); err == nil {
		t.Fatal("expected not ready before assignment")
	}

	c.trackAssignment(&sess{ctx: context.Background(), claims: map[string][]int32{"t": {2, 0}}})
	if err := c.Ready(context.Background()); err != nil {
		t.Fatalf("Ready: %v", err)
	}

	c.setAssigned(nil)
	if err := c.Ready(context.Background()); err == nil {
		t.Fatal("expected not ready after cleanup")
	}
}
