package negotiate

// Profile is a named representation contract.
type Profile struct {
	Token      string
	URI        string
	Label      string
	Comment    string
	MediaTypes []MediaType
	Default    MediaType
	Languages  []string
}

func (p Profile) Supports(m MediaType) bool {
	for _, x := range p.MediaTypes {
		if x == m {
			return true
		}
	}
	return false
}

var (
	OAI = Profile{
		Token:      "oai",
		URI:        "http://www.opengis.net/spec/ogcapi-features-1/1.0/req/oas30",
		Label:      "OpenAPI 3.0",
		Comment:    "The OGC API Features specification that uses OpenAPI 3.0 specification",
		MediaTypes: []MediaType{GeoJSON, JSON, HTML},
		Default:    GeoJSON,
		Languages:  []string{"en"},
	}

	// OAIServiceDesc is the landing and conformance flavour of OAI, where JSON is the natural default.
	OAIServiceDesc = Profile{
		Token:      "oai",
		URI:        "http://www.opengis.net/spec/ogcapi-features-1/1.0/req/oas30",
		Label:      "OpenAPI 3.0",
		Comment:    "The OGC API Features specification that uses OpenAPI 3.0 specification",
		MediaTypes: []MediaType{JSON, HTML, OpenAPI},
		Default:    JSON,
		Languages:  []string{"en"},
	}

	DCAT = Profile{
		Token:      "dcat",
		URI:        "https://www.w3.org/TR/vocab-dcat/",
		Label:      "DCAT",
		Comment:    "Dataset Catalogue Vocabulary (DCAT) is a W3C-authored RDF vocabulary designed to facilitate interoperability between data catalogs published on the Web.",
		MediaTypes: append([]MediaType{HTML, JSON}, RDFMediaTypes...),
		Default:    HTML,
		Languages:  []string{"en"},
	}

	GeoSPARQL = Profile{
		Token:      "geosp",
		URI:        "http://www.opengis.net/ont/geosparql",
		Label:      "GeoSPARQL",
		Comment:    "An RDF/OWL vocabulary for representing spatial information",
		MediaTypes: append([]MediaType{HTML}, RDFMediaTypes...),
		Default:    HTML,
		Languages:  []string{"en"},
	}

	Alternates = Profile{
		Token:      "alt",
		URI:        "http://www.w3.org/ns/dx/conneg/altr",
		Label:      "Alternate Representations",
		Comment:    "The representation of the resource that lists all other representations (profiles and Media Types)",
		MediaTypes: []MediaType{HTML, JSON, Turtle},
		Default:    HTML,
		Languages:  []string{"en"},
	}
)
