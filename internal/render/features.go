package render

import (
	"net/http"

	"github.com/mohammed-shakir/dggs-ldapi/internal/catalog"
	"github.com/mohammed-shakir/dggs-ldapi/internal/filter"
	"github.com/mohammed-shakir/dggs-ldapi/internal/negotiate"
	"github.com/mohammed-shakir/dggs-ldapi/internal/paging"
	"github.com/mohammed-shakir/dggs-ldapi/internal/zone"
)

type Features struct {
	Dataset    catalog.Dataset
	Collection catalog.Collection
	// Zones holds only the current page, in grid order.
	Zones  []zone.Zone
	Page   paging.Page
	Filter filter.Filter
}

type featureRefJSON struct {
	ID    string `json:"id"`
	URI   string `json:"uri"`
	Title string `json:"title"`
	Href  string `json:"href"`
}

type featuresJSON struct {
	Links          []Link           `json:"links"`
	Collection     collectionJSON   `json:"collection"`
	Features       []featureRefJSON `json:"features"`
	NumberMatched  int64            `json:"numberMatched"`
	NumberReturned int              `json:"numberReturned"`
}

type bboxHTML struct {
	Kind  string
	Value string
}

type featuresHTML struct {
	Collection memberHTML
	BBox       *bboxHTML
	Members    []memberHTML
	Pagination *paginationHTML
}

func itemHref(req Request, collection string, a zone.Address) string {
	return req.URL("/collections/" + collection + "/items/" + string(a))
}

// ogcLinks tie a feature resource to its collection, also sent as Link headers.
func ogcLinks(req Request, c catalog.Collection) []Link {
	return []Link{
		{Href: req.URL("/collections/" + c.ID), Rel: RelCollection, Type: negotiate.JSON.String(), Title: c.Title},
	}
}

func (rd *Renderer) Features(w http.ResponseWriter, req Request, d Features) error {
	c := d.Collection
	if req.Neg.Alternates {
		return rd.alternates(w, req, "Features of "+c.Title)
	}
	ogc := ogcLinks(req, c)
	links := append(append(selfLinks(req, "This Document"), pageLinks(req, d.Page)...), ogc...)
	switch req.Neg.Profile.Token {
	case negotiate.OAI.Token:
		switch req.Neg.MediaType {
		case negotiate.JSON:
			out := featuresJSON{
				Links:          links,
				Collection:     toCollectionJSON(req, c),
				Features:       make([]featureRefJSON, len(d.Zones)),
				NumberMatched:  d.Page.Total,
				NumberReturned: len(d.Zones),
			}
			for i, z := range d.Zones {
				out.Features[i] = featureRefJSON{
					ID:    string(z.Address),
					URI:   z.URI(),
					Title: z.Title,
					Href:  itemHref(req, c.ID, z.Address),
				}
			}
			return rd.writeJSON(w, req, out, ogc)
		case negotiate.GeoJSON:
			out := featureCollectionJSON{
				Type:           "FeatureCollection",
				Features:       make([]featureJSON, len(d.Zones)),
				NumberMatched:  d.Page.Total,
				NumberReturned: len(d.Zones),
				Links:          links,
			}
			for i, z := range d.Zones {
				out.Features[i] = toFeatureJSON(z, c.URI)
			}
			return rd.writeJSON(w, req, out, ogc)
		case negotiate.HTML:
			return rd.featuresHTML(w, req, d, links, ogc)
		}
	case negotiate.GeoSPARQL.Token:
		switch {
		case req.Neg.MediaType == negotiate.HTML:
			return rd.featuresHTML(w, req, d, links, ogc)
		case req.Neg.MediaType.IsRDF():
			g := newGraph()
			addCollection(g, d.Dataset, c)
			for _, z := range d.Zones {
				addZone(g, z, c)
			}
			return rd.writeGraph(w, req, g, ogc)
		}
	}
	return unhandled(req)
}

func (rd *Renderer) featuresHTML(w http.ResponseWriter, req Request, d Features, links, ogc []Link) error {
	c := d.Collection
	members := make([]memberHTML, len(d.Zones))
	for i, z := range d.Zones {
		members[i] = memberHTML{Href: itemHref(req, c.ID, z.Address), Title: z.Title}
	}
	data := featuresHTML{
		Collection: memberHTML{Href: req.URL("/collections/" + c.ID), Title: c.Title},
		Members:    members,
		Pagination: paginationView(req, d.Page),
	}
	if d.Filter.Kind != filter.KindNone {
		data.BBox = &bboxHTML{Kind: d.Filter.Kind.String(), Value: d.Filter.Raw}
	}
	return rd.writeHTML(w, req, "features.html", view{
		Title: "Features of " + c.Title,
		Links: links,
		Data:  data,
	}, ogc)
}
