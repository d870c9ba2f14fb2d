// Package sparql builds the SPARQL queries sent to the geometry endpoint and
// decodes its JSON result format.
package sparql

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/dggs-ldapi/internal/grid"
)

const (
	// CRS84 is the lon/lat axis order CRS used for query polygons.
	CRS84 = "http://www.opengis.net/def/crs/OGC/1.3/CRS84"

	ResultsMediaType = "application/sparql-results+json"

	prefixes = `PREFIX dcterms: <http://purl.org/dc/terms/>
PREFIX geo: <http://www.opengis.net/ont/geosparql#>
PREFIX geof: <http://www.opengis.net/def/function/geosparql/>
PREFIX ogcapi: <https://data.surroundaustralia.com/def/ogcapi/>
`
)

// WithinQuery selects the features of collection whose WKT geometry lies
// within bbox. Boxes crossing the antimeridian become two polygons.
func WithinQuery(collectionURI string, bbox grid.BBox) string {
	var conds []string
	for _, part := range bbox.Parts() {
		conds = append(conds, fmt.Sprintf("geof:sfWithin(?wkt, %s)", polygonLiteral(part)))
	}
	var b strings.Builder
	b.WriteString(prefixes)
	b.WriteString("SELECT DISTINCT ?f\nWHERE {\n")
	fmt.Fprintf(&b, "    ?f a ogcapi:Feature ;\n        dcterms:isPartOf <%s> ;\n", collectionURI)
	b.WriteString("        geo:hasGeometry/geo:asWKT ?wkt .\n")
	fmt.Fprintf(&b, "    FILTER(%s)\n", strings.Join(conds, " || "))
	b.WriteString("}\nORDER BY ?f\n")
	return b.String()
}

func polygonLiteral(e grid.Envelope) string {
	box := grid.BBox{MinLon: e.MinLon, MinLat: e.MinLat, MaxLon: e.MaxLon, MaxLat: e.MaxLat}
	ring := box.Ring()
	pts := make([]string, len(ring))
	for i, p := range ring {
		pts[i] = num(p.Lon) + " " + num(p.Lat)
	}
	return fmt.Sprintf(`"<%s> POLYGON ((%s))"^^geo:wktLiteral`, CRS84, strings.Join(pts, ", "))
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// SelectParams encodes a query for the SPARQL protocol GET binding.
func SelectParams(query string) url.Values {
	params := url.Values{}
	params.Set("query", query)
	return params
}
