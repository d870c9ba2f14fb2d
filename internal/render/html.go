package render

import (
	"html/template"
	"strings"

	"github.com/mohammed-shakir/dggs-ldapi/internal/negotiate"
)

// view is the model every HTML page receives; Data holds the page body.
type view struct {
	APITitle  string
	Title     string
	Home      string
	Self      string
	Profile   negotiate.Profile
	MediaType negotiate.MediaType
	Others    []Link
	Links     []Link
	Data      any
}

var mediaNames = map[negotiate.MediaType]string{
	negotiate.HTML:     "HTML",
	negotiate.JSON:     "JSON",
	negotiate.GeoJSON:  "GeoJSON",
	negotiate.Turtle:   "Turtle",
	negotiate.RDFXML:   "RDF/XML",
	negotiate.JSONLD:   "JSON-LD",
	negotiate.N3:       "Notation-3",
	negotiate.NTriples: "N-Triples",
	negotiate.OpenAPI:  "OpenAPI",
}

func mediaName(m negotiate.MediaType) string {
	if n, ok := mediaNames[m]; ok {
		return n
	}
	return m.String()
}

var funcs = template.FuncMap{
	"mediaName": mediaName,
	"paragraphs": func(s string) []string {
		var out []string
		for _, p := range strings.Split(s, "\n\n") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	},
}

// otherRepresentations links the same resource in the other media types of
// the current profile, for the page footer.
func otherRepresentations(req Request) []Link {
	self := req.Self()
	var out []Link
	for _, m := range req.Neg.Profile.MediaTypes {
		if m == req.Neg.MediaType {
			continue
		}
		out = append(out, Link{
			Href:  negotiate.WithRepresentation(self, req.Neg.Profile.Token, m),
			Rel:   RelAlternate,
			Type:  m.String(),
			Title: mediaName(m),
		})
	}
	out = append(out, Link{
		Href:  negotiate.WithRepresentation(self, negotiate.Alternates.Token, negotiate.HTML),
		Rel:   RelAlternate,
		Type:  negotiate.HTML.String(),
		Title: "Alternate profiles",
	})
	return out
}
