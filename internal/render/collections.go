package render

import (
	"net/http"

	"github.com/mohammed-shakir/dggs-ldapi/internal/catalog"
	"github.com/mohammed-shakir/dggs-ldapi/internal/negotiate"
	"github.com/mohammed-shakir/dggs-ldapi/internal/paging"
)

type Collections struct {
	Dataset catalog.Dataset
	// Collections holds only the current page.
	Collections []catalog.Collection
	Page        paging.Page
}

type Collection struct {
	Dataset    catalog.Dataset
	Collection catalog.Collection
}

type collectionJSON struct {
	ID           string `json:"id"`
	URI          string `json:"uri"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	ItemType     string `json:"itemType"`
	FeatureCount int64  `json:"featureCount"`
	Links        []Link `json:"links"`
}

type collectionsJSON struct {
	Links          []Link           `json:"links"`
	Collections    []collectionJSON `json:"collections"`
	NumberMatched  int64            `json:"numberMatched"`
	NumberReturned int              `json:"numberReturned"`
}

type collectionDocJSON struct {
	Links      []Link         `json:"links"`
	Collection collectionJSON `json:"collection"`
}

type paginationHTML struct {
	Page     int
	LastPage int
	Total    int64
	Prev     string
	Next     string
}

type collectionsHTML struct {
	Members    []memberHTML
	Pagination *paginationHTML
}

type collectionHTML struct {
	ID           string
	URI          string
	Description  string
	Resolution   int
	FeatureCount int64
	Items        string
}

func toCollectionJSON(req Request, c catalog.Collection) collectionJSON {
	items := req.URL("/collections/" + c.ID + "/items")
	return collectionJSON{
		ID:           c.ID,
		URI:          c.URI,
		Title:        c.Title,
		Description:  c.Description,
		ItemType:     "feature",
		FeatureCount: c.FeatureCount(),
		Links: []Link{
			{Href: req.URL("/collections/" + c.ID), Rel: RelSelf, Type: negotiate.JSON.String(), Title: c.Title},
			{Href: items, Rel: RelItems, Type: negotiate.GeoJSON.String(), Title: c.Title},
			{Href: negotiate.WithRepresentation(items, negotiate.OAI.Token, negotiate.HTML), Rel: RelItems, Type: negotiate.HTML.String(), Title: c.Title},
		},
	}
}

func paginationView(req Request, p paging.Page) *paginationHTML {
	if p.Limit != nil {
		return nil
	}
	out := &paginationHTML{Page: p.Page, LastPage: p.LastPage(), Total: p.Total}
	if p.HasPrev() {
		out.Prev = pageHref(req, p.Page-1, p.PerPage)
	}
	if p.HasNext() {
		out.Next = pageHref(req, p.Page+1, p.PerPage)
	}
	return out
}

func (rd *Renderer) Collections(w http.ResponseWriter, req Request, d Collections) error {
	if req.Neg.Alternates {
		return rd.alternates(w, req, "Collections")
	}
	links := append(selfLinks(req, "This Document"), pageLinks(req, d.Page)...)
	switch req.Neg.Profile.Token {
	case negotiate.OAI.Token:
		switch req.Neg.MediaType {
		case negotiate.JSON, negotiate.GeoJSON:
			out := collectionsJSON{
				Links:          links,
				Collections:    make([]collectionJSON, len(d.Collections)),
				NumberMatched:  d.Page.Total,
				NumberReturned: len(d.Collections),
			}
			for i, c := range d.Collections {
				out.Collections[i] = toCollectionJSON(req, c)
			}
			return rd.writeJSON(w, req, out, nil)
		case negotiate.HTML:
			return rd.writeHTML(w, req, "collections.html", view{
				Title: "Collections",
				Links: links,
				Data: collectionsHTML{
					Members:    collectionMembers(req, d.Collections),
					Pagination: paginationView(req, d.Page),
				},
			}, nil)
		}
	case negotiate.DCAT.Token:
		switch {
		case req.Neg.MediaType == negotiate.HTML:
			return rd.writeHTML(w, req, "dataset.html", view{
				Title: d.Dataset.Title,
				Links: links,
				Data: datasetHTML{
					URI:         d.Dataset.URI,
					Description: d.Dataset.Description,
					Parts:       collectionMembers(req, d.Collections),
				},
			}, nil)
		case req.Neg.MediaType == negotiate.JSON || req.Neg.MediaType.IsRDF():
			return rd.writeGraph(w, req, datasetGraph(d.Dataset, d.Collections), nil)
		}
	}
	return unhandled(req)
}

func collectionMembers(req Request, cs []catalog.Collection) []memberHTML {
	out := make([]memberHTML, len(cs))
	for i, c := range cs {
		out[i] = memberHTML{Href: req.URL("/collections/" + c.ID), Title: c.Title, Description: c.Description}
	}
	return out
}

func (rd *Renderer) Collection(w http.ResponseWriter, req Request, d Collection) error {
	c := d.Collection
	if req.Neg.Alternates {
		return rd.alternates(w, req, c.Title)
	}
	links := append(selfLinks(req, "This Document"),
		Link{Href: req.URL("/collections"), Rel: RelUp, Type: negotiate.JSON.String(), Title: "Collections"})
	switch req.Neg.Profile.Token {
	case negotiate.OAI.Token:
		switch req.Neg.MediaType {
		case negotiate.JSON, negotiate.GeoJSON:
			return rd.writeJSON(w, req, collectionDocJSON{Links: links, Collection: toCollectionJSON(req, c)}, nil)
		case negotiate.HTML:
			return rd.writeHTML(w, req, "collection.html", view{Title: c.Title, Links: links, Data: toCollectionHTML(req, c)}, nil)
		}
	case negotiate.GeoSPARQL.Token:
		switch {
		case req.Neg.MediaType == negotiate.HTML:
			return rd.writeHTML(w, req, "collection.html", view{Title: c.Title, Links: links, Data: toCollectionHTML(req, c)}, nil)
		case req.Neg.MediaType.IsRDF():
			g := newGraph()
			addCollection(g, d.Dataset, c)
			return rd.writeGraph(w, req, g, nil)
		}
	}
	return unhandled(req)
}

func toCollectionHTML(req Request, c catalog.Collection) collectionHTML {
	return collectionHTML{
		ID:           c.ID,
		URI:          c.URI,
		Description:  c.Description,
		Resolution:   c.Resolution,
		FeatureCount: c.FeatureCount(),
		Items:        negotiate.WithRepresentation(req.URL("/collections/"+c.ID+"/items"), negotiate.OAI.Token, negotiate.HTML),
	}
}
