// Package filter classifies the bbox parameter and computes the zones of a
// collection that satisfy it.
package filter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/dggs-ldapi/internal/core/apperr"
	"github.com/mohammed-shakir/dggs-ldapi/internal/grid"
)

type Kind int

const (
	KindNone Kind = iota
	KindGeographic
	KindCell
	KindCellPair
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindGeographic:
		return "geographic"
	case KindCell:
		return "cell"
	case KindCellPair:
		return "cell_pair"
	default:
		panic("filter: unknown kind " + strconv.Itoa(int(k)))
	}
}

// Filter is the classified bbox value. Exactly the fields of Kind are set.
type Filter struct {
	Kind Kind
	Raw  string
	BBox grid.BBox
	Cell string
	Pair [2]string
}

const (
	decimal = `(-?\d+(?:\.\d+)?)`
	cell    = `([A-Z][0-8]{0,15})`
)

type pattern struct {
	kind  Kind
	re    *regexp.Regexp
	shape string
}

// patterns are tried in order; the first match wins.
var patterns = []pattern{
	{
		kind:  KindGeographic,
		re:    regexp.MustCompile(`^` + decimal + `,` + decimal + `,` + decimal + `,` + decimal + `$`),
		shape: "four comma separated decimals minLon,minLat,maxLon,maxLat (e.g. 149.0,-35.3,149.3,-35.1)",
	},
	{
		kind:  KindCell,
		re:    regexp.MustCompile(`^` + cell + `$`),
		shape: "a single zone address (e.g. N123)",
	},
	{
		kind:  KindCellPair,
		re:    regexp.MustCompile(`^` + cell + `,` + cell + `$`),
		shape: "two comma separated zone addresses (e.g. N12,N45)",
	},
}

// AcceptedShapes describes the bbox forms in classification order.
func AcceptedShapes() []string {
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = p.shape
	}
	return out
}

// Classify maps a raw bbox value to a Filter. Empty input is KindNone.
func Classify(raw string) (Filter, error) {
	v := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if v == "" {
		return Filter{Kind: KindNone}, nil
	}
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(v)
		if m == nil {
			continue
		}
		f := Filter{Kind: p.kind, Raw: v}
		switch p.kind {
		case KindGeographic:
			var nums [4]float64
			for i := range nums {
				n, err := strconv.ParseFloat(m[i+1], 64)
				if err != nil {
					return Filter{}, apperr.InvalidFilter(raw, AcceptedShapes())
				}
				nums[i] = n
			}
			f.BBox = grid.BBox{MinLon: nums[0], MinLat: nums[1], MaxLon: nums[2], MaxLat: nums[3]}
			if !f.BBox.Valid() {
				return Filter{}, apperr.InvalidFilter(raw, AcceptedShapes())
			}
		case KindCell:
			f.Cell = m[1]
		case KindCellPair:
			f.Pair = [2]string{m[1], m[2]}
		}
		return f, nil
	}
	return Filter{}, apperr.InvalidFilter(raw, AcceptedShapes())
}
