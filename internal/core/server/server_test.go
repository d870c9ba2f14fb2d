package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/dggs-ldapi/internal/core/config"
	"github.com/mohammed-shakir/dggs-ldapi/internal/core/health"
	"github.com/mohammed-shakir/dggs-ldapi/internal/metrics"
)

type stubRoutes struct{}

func (stubRoutes) Mount(r chi.Router) {
	r.Get("/collections", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Link", `<http://localhost/collections>; rel="self"`)
		_, _ = w.Write([]byte("[]"))
	})
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("missing representation") })
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestHandler_HealthAndRoutes(t *testing.T) {
	p := metrics.Init(metrics.Config{Enabled: true})
	h := NewHandler(config.Config{}, discard(), stubRoutes{}, Options{
		Metrics: p.Handler(),
		Ready:   []health.Check{{Name: "catalog", Fn: func(context.Context) error { return errors.New("not loaded") }}},
	})

	for path, want := range map[string]int{
		"/healthz":     http.StatusOK,
		"/readyz":      http.StatusServiceUnavailable,
		"/metrics":     http.StatusOK,
		"/collections": http.StatusOK,
		"/boom":        http.StatusInternalServerError,
		"/nowhere":     http.StatusNotFound,
	} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != want {
			t.Fatalf("%s: status=%d want %d", path, rr.Code, want)
		}
	}
}

func TestHandler_MetricsDisabled(t *testing.T) {
	h := NewHandler(config.Config{}, discard(), stubRoutes{}, Options{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d want 404", rr.Code)
	}
}

func TestHandler_CORSPreflight(t *testing.T) {
	h := NewHandler(config.Config{CORSOrigins: []string{"https://viewer.example.org"}}, discard(), stubRoutes{}, Options{})

	req := httptest.NewRequest(http.MethodOptions, "/collections", nil)
	req.Header.Set("Origin", "https://viewer.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://viewer.example.org" {
		t.Fatalf("allow-origin=%q", got)
	}
	if !strings.Contains(rr.Header().Get("Access-Control-Allow-Methods"), http.MethodGet) {
		t.Fatalf("allow-methods=%q", rr.Header().Get("Access-Control-Allow-Methods"))
	}
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, config.Config{Addr: addr}, discard(), NewHandler(config.Config{}, discard(), stubRoutes{}, Options{}))
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err == nil {
			_ = resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never came up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
