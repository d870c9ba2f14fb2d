package render

import (
	"net/http"

	"github.com/mohammed-shakir/dggs-ldapi/internal/catalog"
	"github.com/mohammed-shakir/dggs-ldapi/internal/negotiate"
	"github.com/mohammed-shakir/dggs-ldapi/internal/zone"
)

type Feature struct {
	Dataset    catalog.Dataset
	Collection catalog.Collection
	Zone       zone.Zone
	// Href locates a related zone in this API. Nil, or an empty result,
	// falls back to the zone URI.
	Href func(zone.Address) string
}

func (d Feature) href(a zone.Address) string {
	if d.Href != nil {
		if h := d.Href(a); h != "" {
			return h
		}
	}
	return a.URI()
}

type featureDocJSON struct {
	Links   []Link      `json:"links"`
	Feature featureJSON `json:"feature"`
}

type neighbourHTML struct {
	Direction string
	Href      string
	Title     string
}

type geometryHTML struct {
	Label     string
	Role      string
	RoleToken string
	WKT       string
}

type featureHTML struct {
	URI         string
	ID          string
	Description string
	Collection  memberHTML
	Parent      memberHTML
	Children    []memberHTML
	Neighbours  []neighbourHTML
	Geometries  []geometryHTML
}

func (rd *Renderer) Feature(w http.ResponseWriter, req Request, d Feature) error {
	z, c := d.Zone, d.Collection
	if req.Neg.Alternates {
		return rd.alternates(w, req, z.Title)
	}
	ogc := ogcLinks(req, c)
	links := append(selfLinks(req, "This Document"), ogc...)
	switch req.Neg.Profile.Token {
	case negotiate.OAI.Token:
		switch req.Neg.MediaType {
		case negotiate.JSON:
			return rd.writeJSON(w, req, featureDocJSON{Links: links, Feature: toFeatureJSON(z, c.URI)}, ogc)
		case negotiate.GeoJSON:
			out := toFeatureJSON(z, c.URI)
			out.Links = links
			return rd.writeJSON(w, req, out, ogc)
		case negotiate.HTML:
			return rd.featureHTML(w, req, d, links, ogc)
		}
	case negotiate.GeoSPARQL.Token:
		switch {
		case req.Neg.MediaType == negotiate.HTML:
			return rd.featureHTML(w, req, d, links, ogc)
		case req.Neg.MediaType.IsRDF():
			g := newGraph()
			addZone(g, z, c)
			return rd.writeGraph(w, req, g, ogc)
		}
	}
	return unhandled(req)
}

func (rd *Renderer) featureHTML(w http.ResponseWriter, req Request, d Feature, links, ogc []Link) error {
	z, c := d.Zone, d.Collection
	data := featureHTML{
		URI:         z.URI(),
		ID:          string(z.Address),
		Description: z.Description,
		Collection:  memberHTML{Href: req.URL("/collections/" + c.ID), Title: c.Title},
		Parent:      memberHTML{Title: string(z.Parent)},
	}
	if z.Parent != zone.Root {
		data.Parent.Href = d.href(z.Parent)
	}
	for _, ch := range z.Children {
		data.Children = append(data.Children, memberHTML{Href: d.href(ch), Title: string(ch)})
	}
	for _, n := range z.Neighbours {
		data.Neighbours = append(data.Neighbours, neighbourHTML{
			Direction: n.Direction,
			Href:      d.href(n.Address),
			Title:     string(n.Address),
		})
	}
	for _, g := range z.Geometries {
		data.Geometries = append(data.Geometries, geometryHTML{
			Label:     g.Label,
			Role:      g.Role.URI(),
			RoleToken: g.Role.Token(),
			WKT:       g.WKTLiteral(),
		})
	}
	return rd.writeHTML(w, req, "feature.html", view{Title: z.Title, Links: links, Data: data}, ogc)
}
