// Package geosource answers "which zones of a collection lie within this
// bounding box" either from the grid math directly or from a SPARQL store.
package geosource

import (
	"context"

	"github.com/mohammed-shakir/dggs-ldapi/internal/catalog"
	"github.com/mohammed-shakir/dggs-ldapi/internal/grid"
	"github.com/mohammed-shakir/dggs-ldapi/internal/zone"
)

// Source is the geometry-query collaborator used by the geographic filter.
type Source interface {
	Within(ctx context.Context, coll catalog.Collection, bbox grid.BBox) ([]zone.Address, error)
}

const (
	KindLocal  = "local"
	KindSPARQL = "sparql"
)
