package render

import (
	"net/url"
	"strconv"

	"github.com/mohammed-shakir/dggs-ldapi/internal/negotiate"
	"github.com/mohammed-shakir/dggs-ldapi/internal/paging"
)

// Link relation types.
const (
	RelSelf        = "self"
	RelAlternate   = "alternate"
	RelServiceDesc = "service-desc"
	RelServiceDoc  = "service-doc"
	RelConformance = "conformance"
	RelData        = "data"
	RelItems       = "items"
	RelCollection  = "collection"
	RelUp          = "up"
	RelFirst       = "first"
	RelPrev        = "prev"
	RelNext        = "next"
	RelLast        = "last"
)

// Link is the JSON form of a typed hyperlink. Optional fields are omitted when empty.
type Link struct {
	Href     string `json:"href"`
	Rel      string `json:"rel,omitempty"`
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	HrefLang string `json:"hreflang,omitempty"`
	Length   int64  `json:"length,omitempty"`
}

func (l Link) header() negotiate.Link {
	return negotiate.Link{Href: l.Href, Rel: l.Rel, Type: l.Type, Title: l.Title}
}

func headerLinks(ls []Link) []negotiate.Link {
	out := make([]negotiate.Link, len(ls))
	for i, l := range ls {
		out[i] = l.header()
	}
	return out
}

// selfLinks describes this document and its other media types in the same profile.
func selfLinks(req Request, title string) []Link {
	self := req.Self()
	out := []Link{{
		Href:     self,
		Rel:      RelSelf,
		Type:     req.Neg.MediaType.String(),
		Title:    title,
		HrefLang: "en",
	}}
	for _, m := range req.Neg.Profile.MediaTypes {
		if m == req.Neg.MediaType {
			continue
		}
		out = append(out, Link{
			Href:  negotiate.WithRepresentation(self, req.Neg.Profile.Token, m),
			Rel:   RelAlternate,
			Type:  m.String(),
			Title: title + " as " + mediaName(m),
		})
	}
	return out
}

// pageLinks are the first/prev/next/last navigation links of a paged list.
func pageLinks(req Request, p paging.Page) []Link {
	if p.Limit != nil {
		return nil
	}
	mt := req.Neg.MediaType.String()
	out := []Link{{Href: pageHref(req, 1, p.PerPage), Rel: RelFirst, Type: mt}}
	if p.HasPrev() {
		out = append(out, Link{Href: pageHref(req, p.Page-1, p.PerPage), Rel: RelPrev, Type: mt})
	}
	if p.HasNext() {
		out = append(out, Link{Href: pageHref(req, p.Page+1, p.PerPage), Rel: RelNext, Type: mt})
	}
	out = append(out, Link{Href: pageHref(req, p.LastPage(), p.PerPage), Rel: RelLast, Type: mt})
	return out
}

func pageHref(req Request, page, perPage int) string {
	q := url.Values{}
	for k, vs := range req.Neg.Query {
		q[k] = append([]string(nil), vs...)
	}
	q.Del("limit")
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	return req.Base + req.Path + "?" + q.Encode()
}
