package geosource

import (
	"context"
	"fmt"
	"strings"

	"github.com/mohammed-shakir/dggs-ldapi/internal/catalog"
	"github.com/mohammed-shakir/dggs-ldapi/internal/core/apperr"
	"github.com/mohammed-shakir/dggs-ldapi/internal/core/executor"
	"github.com/mohammed-shakir/dggs-ldapi/internal/core/sparql"
	"github.com/mohammed-shakir/dggs-ldapi/internal/grid"
	"github.com/mohammed-shakir/dggs-ldapi/internal/zone"
)

// Remote asks a GeoSPARQL store for the features of a collection within the box.
type Remote struct {
	exec executor.Interface
}

func NewRemote(exec executor.Interface) *Remote {
	return &Remote{exec: exec}
}

func (r *Remote) Within(ctx context.Context, coll catalog.Collection, bbox grid.BBox) ([]zone.Address, error) {
	res, err := r.exec.Select(ctx, sparql.WithinQuery(coll.URI, bbox))
	if err != nil {
		return nil, apperr.DataSourceUnavailable(fmt.Errorf("sparql within %s: %w", coll.ID, err))
	}
	col := res.Column("f")
	out := make([]zone.Address, 0, len(col))
	for _, b := range col {
		if b.Type != "uri" {
			continue
		}
		id, ok := strings.CutPrefix(b.Value, zone.URIBase)
		if !ok {
			continue
		}
		a, err := zone.Parse(id)
		if err != nil {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}
