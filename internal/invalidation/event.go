// Package invalidation defines the change events that drop cached catalog
// metadata and filter results.
package invalidation

import (
	"fmt"
	"strings"
	"time"
)

type Op string

const (
	// OpCatalog: dataset, collection or record metadata changed.
	OpCatalog Op = "catalog"
	// OpCollection: the zone geometry behind one collection changed.
	OpCollection Op = "collection"
	// OpAll drops everything.
	OpAll Op = "all"
)

type Event struct {
	// Version increases per Key; replays at or below the last applied version are skipped.
	Version    uint64    `json:"version"`
	Op         Op        `json:"op"`
	Collection string    `json:"collection,omitempty"`
	TS         time.Time `json:"ts"`
	Source     string    `json:"source,omitempty"`
}

func (e Event) Validate() error {
	if e.Version == 0 {
		return fmt.Errorf("version must be 1 or more")
	}
	switch e.Op {
	case OpCatalog, OpAll:
	case OpCollection:
		if strings.TrimSpace(e.Collection) == "" {
			return fmt.Errorf("collection is required for op %s", e.Op)
		}
	default:
		return fmt.Errorf("op must be catalog|collection|all")
	}
	if e.TS.IsZero() {
		return fmt.Errorf("ts is required")
	}
	return nil
}

// Key identifies the stream of events whose versions are compared.
func (e Event) Key() string {
	if e.Op == OpCollection {
		return string(e.Op) + ":" + e.Collection
	}
	return string(e.Op)
}
