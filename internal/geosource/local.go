package geosource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/mohammed-shakir/dggs-ldapi/internal/catalog"
	"github.com/mohammed-shakir/dggs-ldapi/internal/core/apperr"
	"github.com/mohammed-shakir/dggs-ldapi/internal/grid"
	"github.com/mohammed-shakir/dggs-ldapi/internal/grid/gridindex"
	"github.com/mohammed-shakir/dggs-ldapi/internal/grid/rhealpix"
	"github.com/mohammed-shakir/dggs-ldapi/internal/zone"
)

// DefaultMaxZones caps the number of zones a single bbox may select.
const DefaultMaxZones = 200_000

// Local selects zones whose vertices and nucleus all fall inside the box,
// walking down from the coarse R-tree hits.
type Local struct {
	log      *slog.Logger
	grid     *rhealpix.Grid
	index    *gridindex.Index
	maxZones int
}

type LocalOption func(*Local)

func WithMaxZones(n int) LocalOption {
	return func(l *Local) {
		if n > 0 {
			l.maxZones = n
		}
	}
}

func NewLocal(log *slog.Logger, g *rhealpix.Grid, ix *gridindex.Index, opts ...LocalOption) *Local {
	l := &Local{log: log, grid: g, index: ix, maxZones: DefaultMaxZones}
	for _, o := range opts {
		o(l)
	}
	return l
}

type walk struct {
	ctx    context.Context
	grid   *rhealpix.Grid
	bbox   grid.BBox
	parts  []grid.Envelope
	target int
	max    int
	seen   map[string]struct{}
	out    []zone.Address
}

var errTooMany = errors.New("too many zones")

func (l *Local) Within(ctx context.Context, coll catalog.Collection, bbox grid.BBox) ([]zone.Address, error) {
	w := &walk{
		ctx:    ctx,
		grid:   l.grid,
		bbox:   bbox,
		parts:  bbox.Parts(),
		target: coll.Resolution,
		max:    l.maxZones,
		seen:   make(map[string]struct{}),
	}
	hits := l.index.Query(bbox)
	for _, h := range hits {
		var err error
		if len(h.Addr)-1 > w.target {
			err = w.leaf(h.Addr[:w.target+1])
		} else {
			err = w.descend(h.Addr, h.Envelope)
		}
		if errors.Is(err, errTooMany) {
			return nil, apperr.InvalidParameterValue("bbox",
				fmt.Sprintf("selects more than %d zones of collection %s", l.maxZones, coll.ID))
		}
		if err != nil {
			return nil, err
		}
	}
	sort.Slice(w.out, func(i, j int) bool {
		a, _ := rhealpix.Index(string(w.out[i]))
		b, _ := rhealpix.Index(string(w.out[j]))
		return a < b
	})
	l.log.DebugContext(ctx, "local bbox query",
		"collection", coll.ID,
		"index_hits", len(hits),
		"zones", len(w.out))
	return w.out, nil
}

func (w *walk) descend(addr string, env grid.Envelope) error {
	if err := w.ctx.Err(); err != nil {
		return err
	}
	if len(addr)-1 == w.target {
		return w.leaf(addr)
	}
	if w.inside(env) {
		return w.subtree(addr)
	}
	for d := byte('0'); d <= '8'; d++ {
		child := addr + string(d)
		cenv, err := w.grid.Envelope(child)
		if err != nil {
			return fmt.Errorf("envelope %s: %w", child, err)
		}
		if !w.intersects(cenv) {
			continue
		}
		if err := w.descend(child, cenv); err != nil {
			return err
		}
	}
	return nil
}

// subtree adds every target-level descendant of addr without geometry checks.
func (w *walk) subtree(addr string) error {
	lo, hi, ok := rhealpix.DescendantRange(addr, w.target)
	if !ok {
		return nil
	}
	for i := lo; i < hi; i++ {
		if err := w.add(rhealpix.CellAt(w.target, i)); err != nil {
			return err
		}
	}
	return nil
}

func (w *walk) leaf(addr string) error {
	if _, ok := w.seen[addr]; ok {
		return nil
	}
	vs, err := w.grid.Vertices(addr)
	if err != nil {
		return fmt.Errorf("vertices %s: %w", addr, err)
	}
	c, err := w.grid.Centroid(addr)
	if err != nil {
		return fmt.Errorf("centroid %s: %w", addr, err)
	}
	if !w.bbox.Contains(c) {
		return nil
	}
	for _, v := range vs {
		if !w.bbox.Contains(v) {
			return nil
		}
	}
	return w.add(addr)
}

func (w *walk) add(addr string) error {
	if _, ok := w.seen[addr]; ok {
		return nil
	}
	if len(w.out) >= w.max {
		return errTooMany
	}
	w.seen[addr] = struct{}{}
	w.out = append(w.out, zone.Address(addr))
	return nil
}

func (w *walk) inside(env grid.Envelope) bool {
	for _, p := range w.parts {
		if env.Within(p) {
			return true
		}
	}
	return false
}

func (w *walk) intersects(env grid.Envelope) bool {
	for _, p := range w.parts {
		if env.Intersects(p) {
			return true
		}
	}
	return false
}
