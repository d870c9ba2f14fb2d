package main

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"

	"github.com/mohammed-shakir/dggs-ldapi/internal/core/config"
	"github.com/mohammed-shakir/dggs-ldapi/internal/invalidation"
)

var defaults = config.InvalidationCfg{
	Topic:   "dggs-catalog-invalidation",
	Brokers: []string{"localhost:9092"},
}

func TestParseFlags_Defaults(t *testing.T) {
	o, err := parseFlags([]string{"-collection", "g4"}, defaults)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if o.Op != "collection" || o.Collection != "g4" || o.Topic != defaults.Topic {
		t.Fatalf("unexpected options: %+v", o)
	}
	if len(o.Brokers) != 1 || o.Brokers[0] != "localhost:9092" {
		t.Fatalf("brokers=%v", o.Brokers)
	}
}

func TestParseFlags_BrokerList(t *testing.T) {
	o, err := parseFlags([]string{"-brokers", "a:9092, b:9092,", "-op", "all"}, defaults)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(o.Brokers) != 2 || o.Brokers[1] != "b:9092" {
		t.Fatalf("brokers=%v", o.Brokers)
	}
	if _, err := parseFlags([]string{"-brokers", " , "}, defaults); err == nil {
		t.Fatal("expected error for empty broker list")
	}
}

func TestBuildEvent(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	ev, err := buildEvent(options{Op: "COLLECTION", Collection: "g7"}, now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if ev.Op != invalidation.OpCollection || ev.Version != uint64(now.UnixMilli()) {
		t.Fatalf("unexpected event: %+v", ev)
	}

	ev, err = buildEvent(options{Op: "catalog", Version: 42}, now)
	if err != nil || ev.Version != 42 {
		t.Fatalf("explicit version: %+v %v", ev, err)
	}

	if _, err := buildEvent(options{Op: "collection"}, now); err == nil {
		t.Fatal("collection op without a collection must fail")
	}
	if _, err := buildEvent(options{Op: "purge"}, now); err == nil {
		t.Fatal("unknown op must fail")
	}
}

func TestPublish_KeysByVersionStream(t *testing.T) {
	p := mocks.NewSyncProducer(t, producerConfig())
	defer func() { _ = p.Close() }()

	ev := invalidation.Event{Version: 3, Op: invalidation.OpCollection, Collection: "g2", TS: time.Now().UTC()}
	p.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(m *sarama.ProducerMessage) error {
		if m.Topic != "inv" {
			return fmt.Errorf("topic=%s", m.Topic)
		}
		k, _ := m.Key.Encode()
		if string(k) != "collection:g2" {
			return fmt.Errorf("key=%s", k)
		}
		v, _ := m.Value.Encode()
		var got invalidation.Event
		if err := json.Unmarshal(v, &got); err != nil {
			return err
		}
		if got.Version != 3 || got.Collection != "g2" {
			return fmt.Errorf("payload=%+v", got)
		}
		return nil
	})

	if _, _, err := publish(p, "inv", ev); err != nil {
		t.Fatalf("publish: %v", err)
	}
}

func TestPublish_SendError(t *testing.T) {
	p := mocks.NewSyncProducer(t, producerConfig())
	defer func() { _ = p.Close() }()
	p.ExpectSendMessageAndFail(sarama.ErrNotLeaderForPartition)

	ev := invalidation.Event{Version: 1, Op: invalidation.OpAll, TS: time.Now().UTC()}
	if _, _, err := publish(p, "inv", ev); err == nil {
		t.Fatal("expected send error")
	}
}
