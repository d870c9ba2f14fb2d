// Command invalidate publishes a cache invalidation event to the topic the
// API instances consume.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/joho/godotenv"

	"github.com/mohammed-shakir/dggs-ldapi/internal/core/config"
	"github.com/mohammed-shakir/dggs-ldapi/internal/invalidation"
)

type options struct {
	Op         string
	Collection string
	Version    uint64
	Source     string
	Topic      string
	Brokers    []string
}

func parseFlags(args []string, cfg config.InvalidationCfg) (options, error) {
	fs := flag.NewFlagSet("invalidate", flag.ContinueOnError)
	var o options
	var brokers string
	fs.StringVar(&o.Op, "op", string(invalidation.OpCollection), "catalog|collection|all")
	fs.StringVar(&o.Collection, "collection", "", "collection id (op=collection)")
	fs.Uint64Var(&o.Version, "version", 0, "event version; 0 uses the current unix time in milliseconds")
	fs.StringVar(&o.Source, "source", "cli", "free-form origin recorded on the event")
	fs.StringVar(&o.Topic, "topic", cfg.Topic, "kafka topic")
	fs.StringVar(&brokers, "brokers", strings.Join(cfg.Brokers, ","), "comma separated kafka brokers")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			o.Brokers = append(o.Brokers, b)
		}
	}
	if len(o.Brokers) == 0 {
		return options{}, errors.New("at least one broker is required")
	}
	return o, nil
}

func buildEvent(o options, now time.Time) (invalidation.Event, error) {
	v := o.Version
	if v == 0 {
		// #nosec G115 -- unix milliseconds are positive after 1970.
		v = uint64(now.UnixMilli())
	}
	ev := invalidation.Event{
		Version:    v,
		Op:         invalidation.Op(strings.ToLower(o.Op)),
		Collection: o.Collection,
		TS:         now.UTC(),
		Source:     o.Source,
	}
	if err := ev.Validate(); err != nil {
		return invalidation.Event{}, err
	}
	return ev, nil
}

// publish keys the message by the event's version stream so one partition
// sees every version of it in order.
func publish(p sarama.SyncProducer, topic string, ev invalidation.Event) (int32, int64, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return 0, 0, fmt.Errorf("encode event: %w", err)
	}
	return p.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(ev.Key()),
		Value: sarama.ByteEncoder(b),
	})
}

func producerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	return cfg
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	o, err := parseFlags(args, cfg.Invalidation)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalidate:", err)
		return 2
	}
	ev, err := buildEvent(o, time.Now())
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalidate:", err)
		return 2
	}

	prod, err := sarama.NewSyncProducer(o.Brokers, producerConfig())
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalidate: producer create:", err)
		return 1
	}
	defer func() { _ = prod.Close() }()

	part, off, err := publish(prod, o.Topic, ev)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalidate: send:", err)
		return 1
	}
	fmt.Printf("published %s version=%d topic=%s partition=%d offset=%d\n", ev.Key(), ev.Version, o.Topic, part, off)
	return 0
}
