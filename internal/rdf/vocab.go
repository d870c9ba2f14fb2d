package rdf

const (
	RDF     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS    = "http://www.w3.org/2000/01/rdf-schema#"
	XSD     = "http://www.w3.org/2001/XMLSchema#"
	OWL     = "http://www.w3.org/2002/07/owl#"
	DCTERMS = "http://purl.org/dc/terms/"
	DCAT    = "http://www.w3.org/ns/dcat#"
	SKOS    = "http://www.w3.org/2004/02/skos/core#"
	SDO     = "https://schema.org/"
	GEO     = "http://www.opengis.net/ont/geosparql#"
	GEOF    = "http://www.opengis.net/def/function/geosparql/"
	GEOX    = "https://linked.data.gov.au/def/geox#"
	OGCAPI  = "https://data.surroundaustralia.com/def/ogcapi/"
	ALTR    = "http://www.w3.org/ns/dx/conneg/altr#"
	PROF    = "http://www.w3.org/ns/dx/prof/"
)

var (
	Type        = IRI(RDF + "type")
	Label       = IRI(RDFS + "label")
	Title       = IRI(DCTERMS + "title")
	Description = IRI(DCTERMS + "description")
	Identifier  = IRI(DCTERMS + "identifier")
	IsPartOf    = IRI(DCTERMS + "isPartOf")
	HasPart     = IRI(DCTERMS + "hasPart")
	ConformsTo  = IRI(DCTERMS + "conformsTo")
	DCFormat    = IRI(DCTERMS + "format")

	XSDInteger  = XSD + "integer"
	WKTLiteral  = GEO + "wktLiteral"
	DGGSLiteral = GEOX + "dggsLiteral"
)

// BindDefaults binds the prefixes used across this service's graphs.
func (g *Graph) BindDefaults() {
	g.Bind("dcterms", DCTERMS)
	g.Bind("dcat", DCAT)
	g.Bind("geo", GEO)
	g.Bind("geox", GEOX)
	g.Bind("ogcapi", OGCAPI)
	g.Bind("sdo", SDO)
	g.Bind("skos", SKOS)
	g.Bind("owl", OWL)
	g.Bind("altr", ALTR)
	g.Bind("prof", PROF)
}
