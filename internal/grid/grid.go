// Package grid defines the geometry primitives shared between the zone model
// and the grid-geometry engines that compute cell coordinates.
package grid

import "math"

type LonLat struct {
	Lon float64
	Lat float64
}

// Grid is the capability the zone model calls out to for cell coordinates.
type Grid interface {
	// Vertices returns the cell corners in ul, ur, lr, ll order.
	Vertices(addr string) ([]LonLat, error)
	Centroid(addr string) (LonLat, error)
	// Neighbours maps a direction name to the adjacent cell at the same resolution.
	Neighbours(addr string) (map[string]string, error)
}

// Envelope is an axis-aligned lon/lat rectangle that never crosses the antimeridian.
type Envelope struct {
	MinLon, MinLat float64
	MaxLon, MaxLat float64
}

func (e Envelope) Contains(p LonLat) bool {
	return p.Lon >= e.MinLon && p.Lon <= e.MaxLon && p.Lat >= e.MinLat && p.Lat <= e.MaxLat
}

func (e Envelope) Intersects(o Envelope) bool {
	return e.MinLon <= o.MaxLon && o.MinLon <= e.MaxLon && e.MinLat <= o.MaxLat && o.MinLat <= e.MaxLat
}

func (e Envelope) Within(o Envelope) bool {
	return e.MinLon >= o.MinLon && e.MaxLon <= o.MaxLon && e.MinLat >= o.MinLat && e.MaxLat <= o.MaxLat
}

// BBox is a geographic bounding box as supplied by clients. MinLon > MaxLon
// means the box crosses the antimeridian.
type BBox struct {
	MinLon, MinLat float64
	MaxLon, MaxLat float64
}

func (b BBox) CrossesAntimeridian() bool { return b.MinLon > b.MaxLon }

// Parts splits the box into envelopes that do not cross the antimeridian.
func (b BBox) Parts() []Envelope {
	if !b.CrossesAntimeridian() {
		return []Envelope{{MinLon: b.MinLon, MinLat: b.MinLat, MaxLon: b.MaxLon, MaxLat: b.MaxLat}}
	}
	return []Envelope{
		{MinLon: b.MinLon, MinLat: b.MinLat, MaxLon: 180, MaxLat: b.MaxLat},
		{MinLon: -180, MinLat: b.MinLat, MaxLon: b.MaxLon, MaxLat: b.MaxLat},
	}
}

func (b BBox) Contains(p LonLat) bool {
	for _, e := range b.Parts() {
		if e.Contains(p) {
			return true
		}
	}
	return false
}

// Ring returns the closed rectangle ring (lon,lat) starting at the min corner.
func (b BBox) Ring() []LonLat {
	return []LonLat{
		{Lon: b.MinLon, Lat: b.MinLat},
		{Lon: b.MinLon, Lat: b.MaxLat},
		{Lon: b.MaxLon, Lat: b.MaxLat},
		{Lon: b.MaxLon, Lat: b.MinLat},
		{Lon: b.MinLon, Lat: b.MinLat},
	}
}

func (b BBox) Valid() bool {
	for _, v := range []float64{b.MinLon, b.MinLat, b.MaxLon, b.MaxLat} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	if b.MinLon < -180 || b.MinLon > 180 || b.MaxLon < -180 || b.MaxLon > 180 {
		return false
	}
	if b.MinLat < -90 || b.MinLat > 90 || b.MaxLat < -90 || b.MaxLat > 90 {
		return false
	}
	return b.MaxLat > b.MinLat && b.MaxLon != b.MinLon
}
