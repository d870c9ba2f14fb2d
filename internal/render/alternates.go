package render

import (
	"net/http"

	"github.com/mohammed-shakir/dggs-ldapi/internal/negotiate"
	"github.com/mohammed-shakir/dggs-ldapi/internal/rdf"
)

type representationJSON struct {
	MediaType string `json:"mediatype"`
	Href      string `json:"href"`
	Default   bool   `json:"default,omitempty"`
}

type profileJSON struct {
	Token           string               `json:"token"`
	URI             string               `json:"uri"`
	Label           string               `json:"label"`
	Comment         string               `json:"comment,omitempty"`
	Languages       []string             `json:"languages,omitempty"`
	Representations []representationJSON `json:"representations"`
}

type alternatesJSON struct {
	URI      string        `json:"uri"`
	Default  string        `json:"default_profile"`
	Profiles []profileJSON `json:"profiles"`
}

type representationHTML struct {
	MediaType negotiate.MediaType
	Href      string
	Default   bool
}

type profileHTML struct {
	Token           string
	URI             string
	Label           string
	Comment         string
	Representations []representationHTML
}

type alternatesHTML struct {
	URI      string
	Default  string
	Profiles []profileHTML
}

var (
	altrRepresentation    = rdf.IRI(rdf.ALTR + "Representation")
	altrHasRepresentation = rdf.IRI(rdf.ALTR + "hasRepresentation")
	altrHasDefault        = rdf.IRI(rdf.ALTR + "hasDefaultRepresentation")
	profProfile           = rdf.IRI(rdf.PROF + "Profile")
	profToken             = rdf.IRI(rdf.PROF + "hasToken")
)

// alternates lists every (profile, media type) pair the resource offers.
func (rd *Renderer) alternates(w http.ResponseWriter, req Request, title string) error {
	base := req.URL(req.Path)
	res := req.Neg.Resource
	def := res.Default()
	profiles := append(append([]negotiate.Profile{}, res.Profiles...), negotiate.Alternates)

	switch req.Neg.MediaType {
	case negotiate.JSON:
		out := alternatesJSON{URI: base, Default: def.Token}
		for _, p := range profiles {
			pj := profileJSON{Token: p.Token, URI: p.URI, Label: p.Label, Comment: p.Comment, Languages: p.Languages}
			for _, m := range p.MediaTypes {
				pj.Representations = append(pj.Representations, representationJSON{
					MediaType: m.String(),
					Href:      negotiate.WithRepresentation(base, p.Token, m),
					Default:   m == p.Default,
				})
			}
			out.Profiles = append(out.Profiles, pj)
		}
		return rd.writeJSON(w, req, out, nil)
	case negotiate.HTML:
		out := alternatesHTML{URI: base, Default: def.Token}
		for _, p := range profiles {
			ph := profileHTML{Token: p.Token, URI: p.URI, Label: p.Label, Comment: p.Comment}
			for _, m := range p.MediaTypes {
				ph.Representations = append(ph.Representations, representationHTML{
					MediaType: m,
					Href:      negotiate.WithRepresentation(base, p.Token, m),
					Default:   m == p.Default,
				})
			}
			out.Profiles = append(out.Profiles, ph)
		}
		return rd.writeHTML(w, req, "alternates.html", view{Title: "Alternate Profiles of " + title, Data: out}, nil)
	case negotiate.Turtle:
		g := newGraph()
		s := rdf.IRI(base)
		for _, p := range profiles {
			pr := rdf.IRI(p.URI)
			g.Add(pr, rdf.Type, profProfile)
			g.Add(pr, profToken, rdf.Literal(p.Token))
			g.Add(pr, rdf.Label, rdf.Literal(p.Label))
			for _, m := range p.MediaTypes {
				r := g.NewBlank()
				g.Add(r, rdf.Type, altrRepresentation)
				g.Add(r, rdf.ConformsTo, pr)
				g.Add(r, rdf.DCFormat, rdf.Literal(m.String()))
				g.Add(s, altrHasRepresentation, r)
				if p.Token == def.Token && m == p.Default {
					g.Add(s, altrHasDefault, r)
				}
			}
		}
		return rd.writeGraph(w, req, g, nil)
	}
	return unhandled(req)
}
