package negotiate

import (
	"strconv"
	"strings"
)

type MediaType int

const (
	JSON MediaType = iota + 1
	GeoJSON
	HTML
	Turtle
	NTriples
	JSONLD
	RDFXML
	N3
	OpenAPI
)

var allMediaTypes = []MediaType{JSON, GeoJSON, HTML, Turtle, NTriples, JSONLD, RDFXML, N3, OpenAPI}

// RDFMediaTypes are the graph serializations every RDF-capable profile offers.
var RDFMediaTypes = []MediaType{Turtle, NTriples, JSONLD, RDFXML, N3}

// String is the wire form.
func (m MediaType) String() string {
	switch m {
	case JSON:
		return "application/json"
	case GeoJSON:
		return "application/geo+json"
	case HTML:
		return "text/html"
	case Turtle:
		return "text/turtle"
	case NTriples:
		return "application/n-triples"
	case JSONLD:
		return "application/ld+json"
	case RDFXML:
		return "application/rdf+xml"
	case N3:
		return "text/n3"
	case OpenAPI:
		return "application/vnd.oai.openapi+json;version=3.0"
	default:
		panic("negotiate: unknown media type " + strconv.Itoa(int(m)))
	}
}

// essence drops parameters: type/subtype only.
func (m MediaType) essence() string {
	s := m.String()
	if i := strings.IndexByte(s, ';'); i >= 0 {
		return s[:i]
	}
	return s
}

// ContentType is the Content-Type header value.
func (m MediaType) ContentType() string {
	switch m {
	case HTML, Turtle, N3:
		return m.String() + "; charset=utf-8"
	default:
		return m.String()
	}
}

func (m MediaType) IsRDF() bool {
	switch m {
	case Turtle, NTriples, JSONLD, RDFXML, N3:
		return true
	}
	return false
}

var shortNames = map[string]MediaType{
	"json":    JSON,
	"geojson": GeoJSON,
	"html":    HTML,
	"ttl":     Turtle,
	"turtle":  Turtle,
	"nt":      NTriples,
	"jsonld":  JSONLD,
	"xml":     RDFXML,
	"rdf":     RDFXML,
	"n3":      N3,
	"openapi": OpenAPI,
}

// ParseMediaType accepts the wire form (parameters ignored) or a short name.
// A '+' decoded to a space by form parsing is restored.
func ParseMediaType(s string) (MediaType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	if m, ok := shortNames[s]; ok {
		return m, true
	}
	s = strings.ReplaceAll(s, " ", "+")
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	for _, m := range allMediaTypes {
		if m.essence() == s {
			return m, true
		}
	}
	return 0, false
}
