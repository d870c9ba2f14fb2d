// Package render turns catalog entities and zones into the negotiated
// representation: JSON and GeoJSON DTOs, HTML pages or RDF graphs.
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/mohammed-shakir/dggs-ldapi/internal/core/observability"
	"github.com/mohammed-shakir/dggs-ldapi/internal/negotiate"
	"github.com/mohammed-shakir/dggs-ldapi/internal/rdf"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"landing.html",
	"dataset.html",
	"conformance.html",
	"collections.html",
	"collection.html",
	"features.html",
	"feature.html",
	"alternates.html",
}

// Request is the negotiated request a representation is produced for.
type Request struct {
	Neg negotiate.Result
	// Base is the service root URL without a trailing slash.
	Base string
	// Path is the resource path below Base.
	Path string
}

// URL resolves a service path.
func (r Request) URL(path string) string { return r.Base + path }

// Self is the resource URL including the request's query.
func (r Request) Self() string {
	if len(r.Neg.Query) == 0 {
		return r.Base + r.Path
	}
	return r.Base + r.Path + "?" + r.Neg.Query.Encode()
}

type Renderer struct {
	log      *slog.Logger
	apiTitle string
	pages    map[string]*template.Template
}

func New(log *slog.Logger, apiTitle string) (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{log: log, apiTitle: apiTitle, pages: pages}, nil
}

func (rd *Renderer) writeJSON(w http.ResponseWriter, req Request, v any, extra []Link) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s json: %w", req.Neg.Resource.Name, err)
	}
	return rd.emit(w, req, buf.Bytes(), extra)
}

func (rd *Renderer) writeHTML(w http.ResponseWriter, req Request, page string, v view, extra []Link) error {
	t, ok := rd.pages[page]
	if !ok {
		panic("render: no template " + page)
	}
	v.APITitle = rd.apiTitle
	v.Home = req.URL("/")
	v.Self = req.Self()
	v.Profile = req.Neg.Profile
	v.MediaType = req.Neg.MediaType
	v.Others = otherRepresentations(req)

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		return fmt.Errorf("execute template %s: %w", page, err)
	}
	return rd.emit(w, req, buf.Bytes(), extra)
}

func (rd *Renderer) writeGraph(w http.ResponseWriter, req Request, g *rdf.Graph, extra []Link) error {
	var buf bytes.Buffer
	if err := rdf.Write(&buf, g, graphFormat(req.Neg.MediaType)); err != nil {
		return fmt.Errorf("serialize %s graph: %w", req.Neg.Resource.Name, err)
	}
	return rd.emit(w, req, buf.Bytes(), extra)
}

func (rd *Renderer) emit(w http.ResponseWriter, req Request, body []byte, extra []Link) error {
	req.Neg.SetHeaders(w.Header(), req.Self(), true, headerLinks(extra)...)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write %s response: %w", req.Neg.Resource.Name, err)
	}
	observability.IncRepresentation(req.Neg.Resource.Name, req.Neg.Profile.Token, req.Neg.MediaType.String())
	return nil
}

// graphFormat maps RDF media types to serializers. Plain JSON in an RDF
// profile is JSON-LD.
func graphFormat(m negotiate.MediaType) rdf.Format {
	switch m {
	case negotiate.Turtle:
		return rdf.Turtle
	case negotiate.NTriples:
		return rdf.NTriples
	case negotiate.N3:
		return rdf.N3
	case negotiate.JSONLD, negotiate.JSON:
		return rdf.JSONLD
	case negotiate.RDFXML:
		return rdf.RDFXML
	default:
		panic("render: no graph serializer for " + m.String())
	}
}

// unhandled reports a (profile, media type) pair the resource declares but
// has no branch for.
func unhandled(req Request) error {
	panic(fmt.Sprintf("render: %s has no representation for profile %s as %s",
		req.Neg.Resource.Name, req.Neg.Profile.Token, req.Neg.MediaType))
}
