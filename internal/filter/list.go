package filter

import (
	"github.com/mohammed-shakir/dggs-ldapi/internal/grid/rhealpix"
	"github.com/mohammed-shakir/dggs-ldapi/internal/zone"
)

// IDList is an ordered, possibly lazily enumerated, list of zone addresses.
type IDList interface {
	Len() int64
	At(i int64) zone.Address
}

// Slice returns the addresses in [start, end).
func Slice(l IDList, start, end int64) []zone.Address {
	if start >= end {
		return nil
	}
	out := make([]zone.Address, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, l.At(i))
	}
	return out
}

// Range is the contiguous grid-order run [Lo, Hi) of cells at Res.
type Range struct {
	Res    int
	Lo, Hi int64
}

func (r Range) Len() int64 {
	if r.Hi <= r.Lo {
		return 0
	}
	return r.Hi - r.Lo
}

func (r Range) At(i int64) zone.Address {
	return zone.Address(rhealpix.CellAt(r.Res, r.Lo+i))
}

// Addresses is a materialized list in grid order.
type Addresses []zone.Address

func (a Addresses) Len() int64 { return int64(len(a)) }

func (a Addresses) At(i int64) zone.Address { return a[i] }
