// Package zone models TB16Pix zones: address parsing, hierarchy and the
// geometry records derived for each zone.
package zone

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/dggs-ldapi/internal/core/apperr"
	"github.com/mohammed-shakir/dggs-ldapi/internal/grid"
)

const (
	// MaxLen is the longest address: one face letter and fourteen digits.
	MaxLen = 15
	// Root is the conceptual parent of the face zones.
	Root Address = "Earth"

	URIBase = "https://w3id.org/dggs/tb16pix/zone/"
)

type Address string

// Parse validates s as a zone address.
func Parse(s string) (Address, error) {
	if !Valid(s) {
		return "", apperr.InvalidAddress(s)
	}
	return Address(s), nil
}

// Valid reports whether s is one letter A-Z followed by digits 0-8, at most MaxLen long.
func Valid(s string) bool {
	if len(s) == 0 || len(s) > MaxLen {
		return false
	}
	if s[0] < 'A' || s[0] > 'Z' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '8' {
			return false
		}
	}
	return true
}

func (a Address) String() string { return string(a) }

func (a Address) URI() string { return URIBase + string(a) }

// Resolution is the subdivision depth; face zones are resolution 0.
func (a Address) Resolution() int { return len(a) - 1 }

func (a Address) Face() byte { return a[0] }

// Parent drops the last character. Face zones return Root.
func (a Address) Parent() Address {
	if len(a) <= 1 {
		return Root
	}
	return a[:len(a)-1]
}

// Children lists the nine sub-zones in digit order, or nil at MaxLen.
func (a Address) Children() []Address {
	if len(a) >= MaxLen {
		return nil
	}
	out := make([]Address, 9)
	for d := 0; d < 9; d++ {
		out[d] = a + Address(strconv.Itoa(d))
	}
	return out
}

// Contains reports whether b is a or one of its descendants.
func (a Address) Contains(b Address) bool {
	return strings.HasPrefix(string(b), string(a))
}

type Neighbour struct {
	Direction string
	Address   Address
}

// Neighbours returns the adjacent zones sorted by direction name.
func Neighbours(g grid.Grid, a Address) ([]Neighbour, error) {
	m, err := g.Neighbours(string(a))
	if err != nil {
		return nil, fmt.Errorf("neighbours of %s: %w", a, err)
	}
	out := make([]Neighbour, 0, len(m))
	for dir, id := range m {
		na, err := Parse(id)
		if err != nil {
			// a bad address from the grid is a server fault, not a client one
			return nil, fmt.Errorf("neighbour %s of %s: grid returned %q: %v", dir, a, id, err)
		}
		out = append(out, Neighbour{Direction: dir, Address: na})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Direction < out[j].Direction })
	return out, nil
}

// Geometries holds the WGS84 shapes computed for a zone.
type Geometries struct {
	Boundary Geometry
	Centroid Geometry
}

// GeometryOf computes the boundary polygon (closed ring) and centroid point of a.
func GeometryOf(g grid.Grid, a Address) (Geometries, error) {
	verts, err := g.Vertices(string(a))
	if err != nil {
		return Geometries{}, fmt.Errorf("vertices of %s: %w", a, err)
	}
	if len(verts) < 3 {
		return Geometries{}, fmt.Errorf("vertices of %s: got %d points", a, len(verts))
	}
	c, err := g.Centroid(string(a))
	if err != nil {
		return Geometries{}, fmt.Errorf("centroid of %s: %w", a, err)
	}
	ring := make([]grid.LonLat, 0, len(verts)+1)
	ring = append(ring, verts...)
	ring = append(ring, verts[0])
	return Geometries{
		Boundary: Geometry{
			Kind:   KindPolygon,
			Role:   RoleBoundary,
			CRS:    CRSWGS84,
			Label:  "WGS84 Boundary",
			Points: ring,
		},
		Centroid: Geometry{
			Kind:   KindPoint,
			Role:   RoleCentroid,
			CRS:    CRSWGS84,
			Label:  "WGS84 Cell centroid",
			Points: []grid.LonLat{c},
		},
	}, nil
}

// AreaGeometry is the grid-native geometry every zone carries.
func AreaGeometry(a Address) Geometry {
	return Geometry{
		Kind:  KindCell,
		Role:  RoleArea,
		CRS:   CRSTB16Pix,
		Label: "TB16Pix Cell Geometry",
		Cell:  a,
	}
}

// Record is catalog-provided annotation for a single zone.
type Record struct {
	Title       string
	Description string
}

type Zone struct {
	Address     Address
	Title       string
	Description string
	Collection  string
	Geometries  []Geometry
	Parent      Address
	Children    []Address
	Neighbours  []Neighbour
}

func (z Zone) URI() string { return z.Address.URI() }

// Boundary returns the WGS84 boundary polygon, the geometry used for GeoJSON output.
func (z Zone) Boundary() (Geometry, bool) {
	for _, g := range z.Geometries {
		if g.Kind == KindPolygon && g.CRS == CRSWGS84 {
			return g, true
		}
	}
	return Geometry{}, false
}

// Build assembles a zone with its derived hierarchy and geometry. rec may be nil.
func Build(g grid.Grid, a Address, collection string, rec *Record) (Zone, error) {
	geoms, err := GeometryOf(g, a)
	if err != nil {
		return Zone{}, err
	}
	nbs, err := Neighbours(g, a)
	if err != nil {
		return Zone{}, err
	}
	z := Zone{
		Address:    a,
		Title:      "Zone " + string(a),
		Collection: collection,
		Geometries: []Geometry{AreaGeometry(a), geoms.Centroid, geoms.Boundary},
		Parent:     a.Parent(),
		Children:   a.Children(),
		Neighbours: nbs,
	}
	if rec != nil {
		if rec.Title != "" {
			z.Title = rec.Title
		}
		z.Description = rec.Description
	}
	return z, nil
}
