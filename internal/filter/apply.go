package filter

import (
	"context"
	"fmt"
	"sort"

	"github.com/mohammed-shakir/dggs-ldapi/internal/catalog"
	"github.com/mohammed-shakir/dggs-ldapi/internal/grid"
	"github.com/mohammed-shakir/dggs-ldapi/internal/grid/rhealpix"
	"github.com/mohammed-shakir/dggs-ldapi/internal/zone"
)

// GeometrySource answers polygon containment queries for a collection.
type GeometrySource interface {
	Within(ctx context.Context, coll catalog.Collection, bbox grid.BBox) ([]zone.Address, error)
}

type Engine struct {
	geo GeometrySource
}

func NewEngine(geo GeometrySource) *Engine {
	return &Engine{geo: geo}
}

// Apply returns the zones of coll selected by f, in grid order.
func (e *Engine) Apply(ctx context.Context, coll catalog.Collection, f Filter) (IDList, error) {
	switch f.Kind {
	case KindNone:
		return All(coll), nil
	case KindGeographic:
		ids, err := e.geo.Within(ctx, coll, f.BBox)
		if err != nil {
			return nil, fmt.Errorf("filter %s on %s: %w", f.Raw, coll.ID, err)
		}
		return members(coll, ids), nil
	case KindCell:
		return Descendants(coll, f.Cell), nil
	case KindCellPair:
		return Envelope(coll, f.Pair[0], f.Pair[1]), nil
	default:
		panic(fmt.Sprintf("filter: unhandled kind %d", f.Kind))
	}
}

// All enumerates every zone of coll.
func All(coll catalog.Collection) Range {
	return Range{Res: coll.Resolution, Lo: 0, Hi: rhealpix.Count(coll.Resolution)}
}

// Descendants selects the zones of coll whose address starts with prefix.
func Descendants(coll catalog.Collection, prefix string) Range {
	lo, hi, ok := rhealpix.DescendantRange(prefix, coll.Resolution)
	if !ok {
		return Range{Res: coll.Resolution}
	}
	return Range{Res: coll.Resolution, Lo: lo, Hi: hi}
}

// Envelope selects the grid-order run of coll spanning the descendants of
// both addresses. Addresses deeper than the collection are truncated to
// their ancestor at its resolution.
func Envelope(coll catalog.Collection, a, b string) Range {
	out := Range{Res: coll.Resolution}
	found := false
	for _, x := range []string{a, b} {
		if len(x) > coll.Resolution+1 {
			x = x[:coll.Resolution+1]
		}
		lo, hi, ok := rhealpix.DescendantRange(x, coll.Resolution)
		if !ok {
			continue
		}
		if !found {
			out.Lo, out.Hi, found = lo, hi, true
			continue
		}
		out.Lo = min(out.Lo, lo)
		out.Hi = max(out.Hi, hi)
	}
	return out
}

func members(coll catalog.Collection, ids []zone.Address) Addresses {
	type indexed struct {
		a zone.Address
		i int64
	}
	seen := make(map[zone.Address]struct{}, len(ids))
	keep := make([]indexed, 0, len(ids))
	for _, a := range ids {
		if !zone.Valid(string(a)) || !coll.Member(a) {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		i, ok := rhealpix.Index(string(a))
		if !ok {
			continue
		}
		seen[a] = struct{}{}
		keep = append(keep, indexed{a: a, i: i})
	}
	sort.Slice(keep, func(x, y int) bool { return keep[x].i < keep[y].i })
	out := make(Addresses, len(keep))
	for k, v := range keep {
		out[k] = v.a
	}
	return out
}
