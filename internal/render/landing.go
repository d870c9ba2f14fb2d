package render

import (
	"net/http"

	"github.com/mohammed-shakir/dggs-ldapi/internal/catalog"
	"github.com/mohammed-shakir/dggs-ldapi/internal/negotiate"
)

type Landing struct {
	Dataset     catalog.Dataset
	Collections []catalog.Collection
}

type landingJSON struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Links       []Link `json:"links"`
}

type landingHTML struct {
	Description string
	Conformance string
	Collections string
	API         string
}

type memberHTML struct {
	Href        string
	Title       string
	Description string
}

type datasetHTML struct {
	URI         string
	Description string
	Parts       []memberHTML
}

// serviceLinks are the OGC API links of the landing page.
func serviceLinks(req Request) []Link {
	root := req.URL("/")
	return []Link{
		{
			Href:     root,
			Rel:      RelSelf,
			Type:     negotiate.JSON.String(),
			HrefLang: "en",
			Title:    "This document",
		},
		{
			Href:     negotiate.WithRepresentation(root, negotiate.OAIServiceDesc.Token, negotiate.OpenAPI),
			Rel:      RelServiceDesc,
			Type:     negotiate.OpenAPI.String(),
			HrefLang: "en",
			Title:    "API definition",
		},
		{
			Href:     negotiate.WithRepresentation(root, negotiate.OAIServiceDesc.Token, negotiate.HTML),
			Rel:      RelServiceDoc,
			Type:     negotiate.HTML.String(),
			HrefLang: "en",
			Title:    "API documentation",
		},
		{
			Href:     req.URL("/conformance"),
			Rel:      RelConformance,
			Type:     negotiate.JSON.String(),
			HrefLang: "en",
			Title:    "OGC API conformance classes implemented by this server",
		},
		{
			Href:     req.URL("/collections"),
			Rel:      RelData,
			Type:     negotiate.JSON.String(),
			HrefLang: "en",
			Title:    "Information about the feature collections",
		},
	}
}

func (rd *Renderer) Landing(w http.ResponseWriter, req Request, d Landing) error {
	if req.Neg.Alternates {
		return rd.alternates(w, req, d.Dataset.Title)
	}
	links := serviceLinks(req)
	switch req.Neg.Profile.Token {
	case negotiate.OAIServiceDesc.Token:
		switch req.Neg.MediaType {
		case negotiate.JSON:
			return rd.writeJSON(w, req, landingJSON{
				Title:       d.Dataset.Title,
				Description: d.Dataset.Description,
				Links:       links,
			}, links)
		case negotiate.OpenAPI:
			return rd.writeJSON(w, req, openAPIDocument(req, rd.apiTitle, d.Dataset), links)
		case negotiate.HTML:
			return rd.writeHTML(w, req, "landing.html", view{
				Title: d.Dataset.Title,
				Data: landingHTML{
					Description: d.Dataset.Description,
					Conformance: req.URL("/conformance"),
					Collections: req.URL("/collections"),
					API:         links[1].Href,
				},
			}, links)
		}
	case negotiate.DCAT.Token:
		switch {
		case req.Neg.MediaType == negotiate.HTML:
			parts := make([]memberHTML, len(d.Collections))
			for i, c := range d.Collections {
				parts[i] = memberHTML{Href: req.URL("/collections/" + c.ID), Title: c.Title}
			}
			return rd.writeHTML(w, req, "dataset.html", view{
				Title: d.Dataset.Title,
				Data:  datasetHTML{URI: d.Dataset.URI, Description: d.Dataset.Description, Parts: parts},
			}, links)
		case req.Neg.MediaType == negotiate.JSON || req.Neg.MediaType.IsRDF():
			return rd.writeGraph(w, req, datasetGraph(d.Dataset, d.Collections), links)
		}
	}
	return unhandled(req)
}
