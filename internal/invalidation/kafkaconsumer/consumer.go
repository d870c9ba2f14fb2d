package kafkaconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/IBM/sarama"

	obs "github.com/mohammed-shakir/dggs-ldapi/internal/core/observability"
	"github.com/mohammed-shakir/dggs-ldapi/internal/invalidation"
	mylog "github.com/mohammed-shakir/dggs-ldapi/internal/logger"
)

// CatalogInvalidator drops the cached catalog so the next request rebuilds it.
type CatalogInvalidator interface {
	Invalidate()
}

// FilterInvalidator drops cached filter results of one collection, or all when empty.
type FilterInvalidator interface {
	Invalidate(ctx context.Context, collection string) error
}

type Consumer struct {
	cfg     Config
	logger  *slog.Logger
	catalog CatalogInvalidator
	filters FilterInvalidator
	dedupe  *invalidation.VersionDedupe

	mu       sync.RWMutex
	assigned []int32
}

func New(cfg Config, logger *slog.Logger, cat CatalogInvalidator, filters FilterInvalidator) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		cfg:     cfg,
		logger:  logger,
		catalog: cat,
		filters: filters,
		dedupe:  invalidation.NewVersionDedupe(cfg.DedupeSize),
	}
}

// Start consumes invalidation events until ctx is done.
func (c *Consumer) Start(ctx context.Context) error {
	if c.catalog == nil {
		return errors.New("kafkaconsumer: missing catalog dependency")
	}

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.Consumer.Group.Session.Timeout = c.cfg.SessionTimeout
	cfg.Consumer.Group.Heartbeat.Interval = c.cfg.Heartbeat
	cfg.Consumer.Group.Rebalance.Timeout = c.cfg.RebalanceTimeout
	if c.cfg.InitialOffsetOldest {
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	cfg.Consumer.Offsets.AutoCommit.Enable = true
	cfg.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(c.cfg.Brokers, c.cfg.GroupID, cfg)
	if err != nil {
		return fmt.Errorf("create consumer group: %w", err)
	}
	defer func() { _ = group.Close() }()

	go func() {
		for err := range group.Errors() {
			obs.IncKafkaConsumerError("group")
			c.logger.Error("kafka group error", "err", err)
		}
	}()

	handler := &groupHandler{
		process: c.ProcessOne,
		setup:   c.trackAssignment,
		cleanup: func(sarama.ConsumerGroupSession) { c.setAssigned(nil) },
	}

	ctx = mylog.WithComponent(ctx, "kafka_consumer")
	c.logger.InfoContext(ctx, "kafka invalidation consumer starting",
		"brokers", c.cfg.Brokers, "topic", c.cfg.Topic, "group", c.cfg.GroupID)

	for {
		if err := group.Consume(ctx, []string{c.cfg.Topic}, handler); err != nil {
			obs.IncKafkaConsumerError("consume")
			c.logger.ErrorContext(ctx, "consumer error", "err", err)
			select {
			case <-time.After(2 * time.Second):
			case <-ctx.Done():
			}
		}
		if ctx.Err() != nil {
			c.logger.InfoContext(ctx, "kafka invalidation consumer shutting down")
			return nil
		}
	}
}

func (c *Consumer) trackAssignment(sess sarama.ConsumerGroupSession) {
	var parts []int32
	for _, ps := range sess.Claims() {
		parts = append(parts, ps...)
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i] < parts[j] })
	c.setAssigned(parts)
}

func (c *Consumer) setAssigned(parts []int32) {
	c.mu.Lock()
	c.assigned = parts
	c.mu.Unlock()
}

// Ready fails until the group has assigned this consumer at least one partition.
func (c *Consumer) Ready(context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.assigned) == 0 {
		return errors.New("no partitions assigned")
	}
	return nil
}

// ProcessOne applies a single invalidation message. Malformed events are
// dropped; failures to invalidate are returned so the message is retried.
func (c *Consumer) ProcessOne(ctx context.Context, msg *sarama.ConsumerMessage) error {
	start := time.Now()
	log := c.logger.With("topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)

	var ev invalidation.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		obs.IncKafkaConsumerError("decode")
		obs.IncInvalidation("malformed")
		log.WarnContext(ctx, "dropping undecodable invalidation event", "err", err)
		return nil
	}
	if err := ev.Validate(); err != nil {
		obs.IncKafkaConsumerError("validate")
		obs.IncInvalidation("malformed")
		log.WarnContext(ctx, "dropping invalid invalidation event", "err", err)
		return nil
	}

	key := ev.Key()
	if !c.dedupe.ShouldApply(key, ev.Version) {
		obs.IncInvalidation("duplicate")
		log.DebugContext(ctx, "skipping replayed invalidation", "key", key, "version", ev.Version)
		return nil
	}

	if err := c.apply(ctx, ev); err != nil {
		obs.IncKafkaConsumerError("apply")
		obs.IncInvalidation("error")
		return fmt.Errorf("apply %s v%d: %w", key, ev.Version, err)
	}
	c.dedupe.Applied(key, ev.Version)

	obs.IncInvalidation("applied")
	obs.ObserveUpstreamLatency("kafka_invalidation", time.Since(start).Seconds())
	log.InfoContext(ctx, "invalidation applied",
		"op", string(ev.Op), "collection", ev.Collection, "version", ev.Version)
	return nil
}

func (c *Consumer) apply(ctx context.Context, ev invalidation.Event) error {
	switch ev.Op {
	case invalidation.OpCatalog, invalidation.OpAll:
		c.catalog.Invalidate()
		return c.invalidateFilters(ctx, "")
	case invalidation.OpCollection:
		return c.invalidateFilters(ctx, ev.Collection)
	default:
		return fmt.Errorf("unsupported op %q", ev.Op)
	}
}

func (c *Consumer) invalidateFilters(ctx context.Context, collection string) error {
	if c.filters == nil {
		return nil
	}
	if err := c.filters.Invalidate(ctx, collection); err != nil {
		return fmt.Errorf("filter cache: %w", err)
	}
	return nil
}
