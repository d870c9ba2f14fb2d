package render

import (
	"net/http"

	"github.com/mohammed-shakir/dggs-ldapi/internal/catalog"
	"github.com/mohammed-shakir/dggs-ldapi/internal/negotiate"
)

type conformanceJSON struct {
	ConformsTo []string `json:"conformsTo"`
}

func (rd *Renderer) Conformance(w http.ResponseWriter, req Request, classes []catalog.ConformanceClass) error {
	if req.Neg.Alternates {
		return rd.alternates(w, req, "Conformance")
	}
	switch req.Neg.Profile.Token {
	case negotiate.OAIServiceDesc.Token:
		switch req.Neg.MediaType {
		case negotiate.JSON:
			uris := make([]string, len(classes))
			for i, c := range classes {
				uris[i] = c.URI
			}
			return rd.writeJSON(w, req, conformanceJSON{ConformsTo: uris}, nil)
		case negotiate.HTML:
			return rd.writeHTML(w, req, "conformance.html", view{
				Title: "Conformance Classes",
				Data:  classes,
			}, nil)
		case negotiate.OpenAPI:
			return rd.writeJSON(w, req, openAPIDocument(req, rd.apiTitle, catalog.Dataset{}), nil)
		}
	}
	return unhandled(req)
}
