package kafkaconsumer

import (
	"time"

	"github.com/mohammed-shakir/dggs-ldapi/internal/core/config"
)

type Config struct {
	Brokers             []string
	Topic               string
	GroupID             string
	SessionTimeout      time.Duration
	Heartbeat           time.Duration
	RebalanceTimeout    time.Duration
	InitialOffsetOldest bool
	// DedupeSize bounds the number of event keys whose versions are remembered.
	DedupeSize int
}

func FromConfig(c config.InvalidationCfg) Config {
	return Config{
		Brokers:             c.Brokers,
		Topic:               c.Topic,
		GroupID:             c.GroupID,
		SessionTimeout:      30 * time.Second,
		Heartbeat:           3 * time.Second,
		RebalanceTimeout:    30 * time.Second,
		InitialOffsetOldest: false,
		DedupeSize:          4096,
	}
}
