// Package router maps the API resources onto HTTP handlers. Every handler
// negotiates and validates the request before touching the catalog.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/dggs-ldapi/internal/catalog"
	"github.com/mohammed-shakir/dggs-ldapi/internal/core/apperr"
	"github.com/mohammed-shakir/dggs-ldapi/internal/core/middleware"
	"github.com/mohammed-shakir/dggs-ldapi/internal/core/observability"
	"github.com/mohammed-shakir/dggs-ldapi/internal/filter"
	"github.com/mohammed-shakir/dggs-ldapi/internal/grid"
	mylog "github.com/mohammed-shakir/dggs-ldapi/internal/logger"
	"github.com/mohammed-shakir/dggs-ldapi/internal/negotiate"
	"github.com/mohammed-shakir/dggs-ldapi/internal/paging"
	"github.com/mohammed-shakir/dggs-ldapi/internal/render"
	"github.com/mohammed-shakir/dggs-ldapi/internal/zone"
)

// CatalogReader yields the current catalog.
type CatalogReader interface {
	Get(ctx context.Context) (*catalog.Catalog, error)
}

const (
	RouteLanding     = "/"
	RouteSpec        = "/spec"
	RouteConformance = "/conformance"
	RouteCollections = "/collections"
	RouteCollection  = "/collections/{collectionId}"
	RouteItems       = "/collections/{collectionId}/items"
	RouteItem        = "/collections/{collectionId}/items/{itemId}"
)

type Handler struct {
	log     *slog.Logger
	catalog CatalogReader
	filters *filter.Engine
	grid    grid.Grid
	render  *render.Renderer
	baseURL string
}

type Option func(*Handler)

// WithBaseURL fixes the link base instead of deriving it from each request.
func WithBaseURL(u string) Option {
	return func(h *Handler) { h.baseURL = strings.TrimRight(u, "/") }
}

func New(log *slog.Logger, cat CatalogReader, filters *filter.Engine, g grid.Grid, rd *render.Renderer, opts ...Option) *Handler {
	h := &Handler{log: log, catalog: cat, filters: filters, grid: g, render: rd}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Mount registers the resource routes on r.
func (h *Handler) Mount(r chi.Router) {
	r.Get(RouteLanding, h.serve(RouteLanding, h.landing))
	r.Get(RouteSpec, h.serve(RouteSpec, h.spec))
	r.Get(RouteConformance, h.serve(RouteConformance, h.conformance))
	r.Get(RouteCollections, h.serve(RouteCollections, h.collections))
	r.Get(RouteCollection, h.serve(RouteCollection, h.collection))
	r.Get(RouteItems, h.serve(RouteItems, h.items))
	r.Get(RouteItem, h.serve(RouteItem, h.item))
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// serve writes handler errors as plain text and records the request metrics.
func (h *Handler) serve(route string, fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := middleware.NewStatusWriter(w)
		r = r.WithContext(mylog.WithRoute(r.Context(), route))

		if err := fn(sw, r); err != nil {
			if sw.Written() {
				h.log.WarnContext(r.Context(), "response aborted", "err", err)
			} else {
				apperr.Write(sw, r, h.log, err)
			}
		}
		observability.ObserveHTTP(r.Method, route, sw.Code, time.Since(start).Seconds())
	}
}

func (h *Handler) base(r *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = strings.TrimSpace(strings.Split(p, ",")[0])
	}
	host := r.Host
	if fh := r.Header.Get("X-Forwarded-Host"); fh != "" {
		host = strings.TrimSpace(strings.Split(fh, ",")[0])
	}
	return scheme + "://" + host
}

func (h *Handler) request(r *http.Request, neg negotiate.Result) render.Request {
	return render.Request{Neg: neg, Base: h.base(r), Path: r.URL.Path}
}

func (h *Handler) load(ctx context.Context) (*catalog.Catalog, error) {
	cat, err := h.catalog.Get(ctx)
	if err != nil {
		return nil, apperr.DataSourceUnavailable(fmt.Errorf("load catalog: %w", err))
	}
	return cat, nil
}

func (h *Handler) lookup(r *http.Request, cat *catalog.Catalog) (catalog.Collection, error) {
	coll, ok := cat.Collection(chi.URLParam(r, "collectionId"))
	if !ok {
		return catalog.Collection{}, apperr.UnknownCollection()
	}
	return coll, nil
}

func (h *Handler) landing(w http.ResponseWriter, r *http.Request) error {
	neg, err := negotiate.Negotiate(r, render.LandingResource)
	if err != nil {
		return err
	}
	cat, err := h.load(r.Context())
	if err != nil {
		return err
	}
	return h.render.Landing(w, h.request(r, neg), render.Landing{
		Dataset:     cat.Dataset(),
		Collections: cat.Collections(),
	})
}

// spec always answers with the OpenAPI document, whatever the Accept header says.
func (h *Handler) spec(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	if err := negotiate.ValidateParams(q, render.LandingResource.AllowedParams); err != nil {
		return err
	}
	cat, err := h.load(r.Context())
	if err != nil {
		return err
	}
	neg := negotiate.Result{
		Resource:  render.LandingResource,
		Profile:   negotiate.OAIServiceDesc,
		MediaType: negotiate.OpenAPI,
		Query:     q,
	}
	return h.render.Landing(w, h.request(r, neg), render.Landing{
		Dataset:     cat.Dataset(),
		Collections: cat.Collections(),
	})
}

func (h *Handler) conformance(w http.ResponseWriter, r *http.Request) error {
	neg, err := negotiate.Negotiate(r, render.ConformanceResource)
	if err != nil {
		return err
	}
	cat, err := h.load(r.Context())
	if err != nil {
		return err
	}
	return h.render.Conformance(w, h.request(r, neg), cat.Conformance())
}

func (h *Handler) collections(w http.ResponseWriter, r *http.Request) error {
	neg, err := negotiate.Negotiate(r, render.CollectionsResource)
	if err != nil {
		return err
	}
	params, err := paging.Parse(neg.Query)
	if err != nil {
		return err
	}
	cat, err := h.load(r.Context())
	if err != nil {
		return err
	}
	all := cat.Collections()
	page := params.Window(int64(len(all)))
	return h.render.Collections(w, h.request(r, neg), render.Collections{
		Dataset:     cat.Dataset(),
		Collections: all[page.Start:page.End],
		Page:        page,
	})
}

func (h *Handler) collection(w http.ResponseWriter, r *http.Request) error {
	neg, err := negotiate.Negotiate(r, render.CollectionResource)
	if err != nil {
		return err
	}
	cat, err := h.load(r.Context())
	if err != nil {
		return err
	}
	coll, err := h.lookup(r, cat)
	if err != nil {
		return err
	}
	return h.render.Collection(w, h.request(r, neg), render.Collection{Dataset: cat.Dataset(), Collection: coll})
}

func (h *Handler) items(w http.ResponseWriter, r *http.Request) error {
	neg, err := negotiate.Negotiate(r, render.FeaturesResource)
	if err != nil {
		return err
	}
	f, err := filter.Classify(neg.Query.Get("bbox"))
	if err != nil {
		return err
	}
	params, err := paging.Parse(neg.Query)
	if err != nil {
		return err
	}
	cat, err := h.load(r.Context())
	if err != nil {
		return err
	}
	coll, err := h.lookup(r, cat)
	if err != nil {
		return err
	}

	ids, err := h.filters.Apply(r.Context(), coll, f)
	if err != nil {
		return err
	}
	page := params.Window(ids.Len())
	addrs := filter.Slice(ids, page.Start, page.End)
	zones := make([]zone.Zone, 0, len(addrs))
	for _, a := range addrs {
		z, err := zone.Build(h.grid, a, coll.ID, cat.Record(a))
		if err != nil {
			return fmt.Errorf("build zone %s: %w", a, err)
		}
		zones = append(zones, z)
	}
	h.log.DebugContext(r.Context(), "items selected",
		"collection", coll.ID,
		"filter", f.Kind.String(),
		"matched", page.Total,
		"returned", len(zones),
	)
	return h.render.Features(w, h.request(r, neg), render.Features{
		Dataset:    cat.Dataset(),
		Collection: coll,
		Zones:      zones,
		Page:       page,
		Filter:     f,
	})
}

func (h *Handler) item(w http.ResponseWriter, r *http.Request) error {
	neg, err := negotiate.Negotiate(r, render.FeatureResource)
	if err != nil {
		return err
	}
	cat, err := h.load(r.Context())
	if err != nil {
		return err
	}
	coll, err := h.lookup(r, cat)
	if err != nil {
		return err
	}
	a, err := zone.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		return err
	}
	if !coll.Member(a) {
		return apperr.UnknownIdentifier(fmt.Sprintf("Zone %s is not part of collection %s", a, coll.ID))
	}
	z, err := zone.Build(h.grid, a, coll.ID, cat.Record(a))
	if err != nil {
		return fmt.Errorf("build zone %s: %w", a, err)
	}

	req := h.request(r, neg)
	return h.render.Feature(w, req, render.Feature{
		Dataset:    cat.Dataset(),
		Collection: coll,
		Zone:       z,
		Href: func(o zone.Address) string {
			c, ok := cat.AtResolution(o.Resolution())
			if !ok {
				return ""
			}
			return req.URL("/collections/" + c.ID + "/items/" + string(o))
		},
	})
}
