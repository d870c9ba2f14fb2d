// Package catalog is the read-only view over the dataset metadata: the
// dataset itself, its conformance classes, collections and zone records.
package catalog

import (
	"fmt"
	"time"

	"github.com/mohammed-shakir/dggs-ldapi/internal/grid/rhealpix"
	"github.com/mohammed-shakir/dggs-ldapi/internal/zone"
)

type Dataset struct {
	URI         string `json:"uri" yaml:"uri"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

type ConformanceClass struct {
	URI   string `json:"uri" yaml:"uri"`
	Title string `json:"title" yaml:"title"`
}

type Collection struct {
	ID          string `json:"id" yaml:"id"`
	URI         string `json:"uri" yaml:"uri"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Resolution  int    `json:"resolution" yaml:"resolution"`
}

// FeatureCount is the number of zones at the collection's resolution.
func (c Collection) FeatureCount() int64 {
	return rhealpix.Count(c.Resolution)
}

// Member reports whether a is a zone of the collection.
func (c Collection) Member(a zone.Address) bool {
	if a.Resolution() != c.Resolution {
		return false
	}
	_, ok := rhealpix.Index(string(a))
	return ok
}

type FeatureRecord struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// Snapshot is the serialized catalog content.
type Snapshot struct {
	Dataset     Dataset            `json:"dataset" yaml:"dataset"`
	Conformance []ConformanceClass `json:"conformance" yaml:"conformance"`
	Collections []Collection       `json:"collections" yaml:"collections"`
	Features    []FeatureRecord    `json:"features" yaml:"features"`
	BuiltAt     time.Time          `json:"built_at" yaml:"-"`
}

// Validate fills derived defaults and rejects inconsistent content.
func (s *Snapshot) Validate() error {
	if s.Dataset.URI == "" {
		return fmt.Errorf("catalog: dataset uri is required")
	}
	seen := make(map[string]struct{}, len(s.Collections))
	for i := range s.Collections {
		c := &s.Collections[i]
		if c.ID == "" {
			return fmt.Errorf("catalog: collection %d has no id", i)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("catalog: duplicate collection id %q", c.ID)
		}
		seen[c.ID] = struct{}{}
		if c.Resolution < 0 || c.Resolution > rhealpix.MaxResolution {
			return fmt.Errorf("catalog: collection %q resolution %d out of range", c.ID, c.Resolution)
		}
		if c.URI == "" {
			c.URI = s.Dataset.URI + "/collection/" + c.ID
		}
		if c.Title == "" {
			c.Title = fmt.Sprintf("TB16Pix resolution %d", c.Resolution)
		}
	}
	for _, f := range s.Features {
		if !zone.Valid(f.ID) {
			return fmt.Errorf("catalog: feature record %q is not a zone address", f.ID)
		}
	}
	return nil
}

// Catalog indexes a validated snapshot for lookups.
type Catalog struct {
	snap    Snapshot
	byID    map[string]int
	records map[string]FeatureRecord
}

func New(s Snapshot) (*Catalog, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	c := &Catalog{
		snap:    s,
		byID:    make(map[string]int, len(s.Collections)),
		records: make(map[string]FeatureRecord, len(s.Features)),
	}
	for i, coll := range s.Collections {
		c.byID[coll.ID] = i
	}
	for _, f := range s.Features {
		c.records[f.ID] = f
	}
	return c, nil
}

func (c *Catalog) Dataset() Dataset { return c.snap.Dataset }

func (c *Catalog) Conformance() []ConformanceClass { return c.snap.Conformance }

// Collections returns the collections in catalog order.
func (c *Catalog) Collections() []Collection { return c.snap.Collections }

func (c *Catalog) Collection(id string) (Collection, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Collection{}, false
	}
	return c.snap.Collections[i], true
}

// AtResolution returns the first collection holding zones of level res.
func (c *Catalog) AtResolution(res int) (Collection, bool) {
	for _, coll := range c.snap.Collections {
		if coll.Resolution == res {
			return coll, true
		}
	}
	return Collection{}, false
}

// Record returns the annotation for a zone, or nil.
func (c *Catalog) Record(a zone.Address) *zone.Record {
	f, ok := c.records[string(a)]
	if !ok {
		return nil
	}
	return &zone.Record{Title: f.Title, Description: f.Description}
}

func (c *Catalog) Snapshot() Snapshot { return c.snap }

func (c *Catalog) BuiltAt() time.Time { return c.snap.BuiltAt }
