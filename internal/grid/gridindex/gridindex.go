// Package gridindex keeps an R-tree of cell envelopes at a coarse resolution
// so bbox queries only descend into cells that can intersect the box.
package gridindex

import (
	"fmt"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/mohammed-shakir/dggs-ldapi/internal/grid"
	"github.com/mohammed-shakir/dggs-ldapi/internal/grid/rhealpix"
)

// DefaultResolution indexes 486 cells.
const DefaultResolution = 2

// Enveloper computes a conservative lon/lat bound for a cell.
type Enveloper interface {
	Envelope(addr string) (grid.Envelope, error)
}

type entry struct {
	addr  string
	index int64
	env   grid.Envelope
}

// Bounds implements rtreego.Spatial.
func (e entry) Bounds() rtreego.Rect {
	return toRect(e.env)
}

func toRect(env grid.Envelope) rtreego.Rect {
	point := rtreego.Point{env.MinLon, env.MinLat}
	lengths := []float64{
		positive(env.MaxLon - env.MinLon),
		positive(env.MaxLat - env.MinLat),
	}
	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}

// rtreego rejects zero-length sides.
func positive(v float64) float64 {
	if v <= 0 {
		return 1e-9
	}
	return v
}

type Index struct {
	rtree *rtreego.Rtree
	res   int
	size  int
}

// Build envelopes every cell at res and loads them into the tree.
func Build(g Enveloper, res int) (*Index, error) {
	if res < 0 || res > rhealpix.MaxResolution {
		return nil, fmt.Errorf("gridindex: resolution %d out of range", res)
	}
	n := rhealpix.Count(res)
	objs := make([]rtreego.Spatial, 0, n)
	for i := int64(0); i < n; i++ {
		addr := rhealpix.CellAt(res, i)
		env, err := g.Envelope(addr)
		if err != nil {
			return nil, fmt.Errorf("gridindex: envelope %s: %w", addr, err)
		}
		objs = append(objs, entry{addr: addr, index: i, env: env})
	}
	return &Index{
		rtree: rtreego.NewTree(2, 25, 50, objs...),
		res:   res,
		size:  len(objs),
	}, nil
}

func (ix *Index) Resolution() int { return ix.res }

func (ix *Index) Size() int { return ix.size }

// Hit is an indexed cell whose envelope intersects the query.
type Hit struct {
	Addr     string
	Envelope grid.Envelope
}

// Query returns the indexed cells intersecting any part of bbox, in grid order.
func (ix *Index) Query(bbox grid.BBox) []Hit {
	seen := make(map[string]struct{})
	var found []entry
	for _, part := range bbox.Parts() {
		for _, s := range ix.rtree.SearchIntersect(toRect(part)) {
			e := s.(entry)
			if _, ok := seen[e.addr]; ok {
				continue
			}
			seen[e.addr] = struct{}{}
			found = append(found, e)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].index < found[j].index })
	out := make([]Hit, len(found))
	for i, e := range found {
		out[i] = Hit{Addr: e.addr, Envelope: e.env}
	}
	return out
}
