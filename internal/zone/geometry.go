package zone

import (
	"strconv"
	"strings"

	"github.com/mohammed-shakir/dggs-ldapi/internal/grid"
)

type Role int

const (
	RoleArea Role = iota + 1
	RoleBoundary
	RoleBoundingBox
	RoleBoundingCircle
	RoleCentroid
	RoleConcaveHull
	RoleConvexHull
	RoleDetailed
)

const roleBase = "https://linked.data.gov.au/def/geometry-roles/"

func (r Role) Token() string {
	switch r {
	case RoleArea:
		return "area"
	case RoleBoundary:
		return "boundary"
	case RoleBoundingBox:
		return "bounding-box"
	case RoleBoundingCircle:
		return "bounding-circle"
	case RoleCentroid:
		return "centroid"
	case RoleConcaveHull:
		return "concave-hull"
	case RoleConvexHull:
		return "convex-hull"
	case RoleDetailed:
		return "detailed"
	default:
		panic("zone: unknown geometry role " + strconv.Itoa(int(r)))
	}
}

func (r Role) URI() string { return roleBase + r.Token() }

type CRS int

const (
	CRSWGS84 CRS = iota + 1
	CRSTB16Pix
)

func (c CRS) URI() string {
	switch c {
	case CRSWGS84:
		return "http://www.opengis.net/def/crs/EPSG/0/4326"
	case CRSTB16Pix:
		return "https://w3id.org/dggs/tb16pix"
	default:
		panic("zone: unknown crs " + strconv.Itoa(int(c)))
	}
}

func (c CRS) Label() string {
	switch c {
	case CRSWGS84:
		return "WGS84"
	case CRSTB16Pix:
		return "TB16Pix"
	default:
		panic("zone: unknown crs " + strconv.Itoa(int(c)))
	}
}

type Kind int

const (
	KindCell Kind = iota + 1
	KindPoint
	KindPolygon
)

type Geometry struct {
	Kind  Kind
	Role  Role
	CRS   CRS
	Label string
	// Cell is set for KindCell.
	Cell Address
	// Points holds one point for KindPoint and a closed ring for KindPolygon.
	Points []grid.LonLat
}

// Literal is the coordinate payload: WKT for WGS84 shapes, the address for cells.
func (g Geometry) Literal() string {
	switch g.Kind {
	case KindCell:
		return string(g.Cell)
	case KindPoint:
		if len(g.Points) == 0 {
			return "POINT EMPTY"
		}
		return "POINT (" + coord(g.Points[0]) + ")"
	case KindPolygon:
		if len(g.Points) == 0 {
			return "POLYGON EMPTY"
		}
		parts := make([]string, len(g.Points))
		for i, p := range g.Points {
			parts[i] = coord(p)
		}
		return "POLYGON ((" + strings.Join(parts, ", ") + "))"
	default:
		panic("zone: unknown geometry kind " + strconv.Itoa(int(g.Kind)))
	}
}

// WKTLiteral prefixes the literal with its CRS, the GeoSPARQL wktLiteral form.
func (g Geometry) WKTLiteral() string {
	return "<" + g.CRS.URI() + "> " + g.Literal()
}

func coord(p grid.LonLat) string {
	return FormatFloat(p.Lon) + " " + FormatFloat(p.Lat)
}

func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
