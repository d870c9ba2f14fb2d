package main

import (
	"context"
	"math"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/mohammed-shakir/dggs-ldapi/internal/zone"
)

func TestMakeBBoxes_HotThenCold(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	bb := makeBBoxes(16, r)
	if len(bb) != 16 {
		t.Fatalf("len=%d", len(bb))
	}
	for i, b := range bb {
		if b.MinLon >= b.MaxLon || b.MinLat >= b.MaxLat {
			t.Fatalf("bbox %d is empty: %+v", i, b)
		}
	}
	// first quarter sits around the hot centres
	c := hotCenters[0]
	lon, lat := (bb[0].MinLon+bb[0].MaxLon)/2, (bb[0].MinLat+bb[0].MaxLat)/2
	if math.Abs(lon-c[0]) > 0.5 || math.Abs(lat-c[1]) > 0.5 {
		t.Fatalf("first bbox %+v not near %v", bb[0], c)
	}
	if makeBBoxes(0, r) != nil {
		t.Fatal("zero count should give nil")
	}
}

func TestMakeZones_ValidAtResolution(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for _, z := range makeZones(50, 5, r) {
		if !zone.Valid(z) || len(z) != 6 {
			t.Fatalf("bad zone %q", z)
		}
	}
}

func TestBuildPool_Interleaves(t *testing.T) {
	base, _ := url.Parse("http://api.test/dggs")
	pool := buildPool(base, "g4",
		[]BBox{{1, 2, 3, 4}},
		[]string{"N1234", "P0000"},
		50)
	if len(pool) != 3 {
		t.Fatalf("len=%d", len(pool))
	}
	if pool[0].Kind != kindItems || pool[1].Kind != kindItem || pool[2].Label != "P0000" {
		t.Fatalf("unexpected order: %+v", pool)
	}
	u, _ := url.Parse(pool[0].URL)
	if u.Path != "/dggs/collections/g4/items" {
		t.Fatalf("path=%s", u.Path)
	}
	if u.Query().Get("bbox") != "1.00000,2.00000,3.00000,4.00000" || u.Query().Get("limit") != "50" {
		t.Fatalf("query=%s", u.RawQuery)
	}
	if pool[1].URL != "http://api.test/dggs/collections/g4/items/N1234" {
		t.Fatalf("item url=%s", pool[1].URL)
	}
}

func TestPercentile(t *testing.T) {
	vals := []float64{10, 20, 30, 40, 50}
	if got := percentile(vals, 50); got != 30 {
		t.Fatalf("p50=%v", got)
	}
	if got := percentile(vals, 100); got != 50 {
		t.Fatalf("p100=%v", got)
	}
	if got := percentile(vals, 25); got != 20 {
		t.Fatalf("p25=%v", got)
	}
}

func TestFire_RecordsStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/geo+json" {
			w.WriteHeader(http.StatusNotAcceptable)
			return
		}
		if strings.HasSuffix(r.URL.Path, "/X9") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	good := fire(ctx, ts.Client(), target{Kind: kindItem, URL: ts.URL + "/items/N1"}, "application/geo+json")
	if !ok(good) {
		t.Fatalf("expected success: %+v", good)
	}
	bad := fire(ctx, ts.Client(), target{Kind: kindItem, URL: ts.URL + "/items/X9"}, "application/geo+json")
	if ok(bad) || bad.Status != http.StatusBadRequest || bad.ErrorMsg != "status=400" {
		t.Fatalf("expected failure: %+v", bad)
	}
}

func TestAggregate_Summary(t *testing.T) {
	a := newAggregate()
	a.add(sample{Status: 200, Latency: 10 * time.Millisecond, Kind: kindItems})
	a.add(sample{Status: 200, Latency: 30 * time.Millisecond, Kind: kindItem})
	a.add(sample{Status: 500, ErrorMsg: "status=500", Kind: kindItem})

	start := time.Unix(0, 0)
	s := a.summary(Config{Concurrency: 2}, 3, start, start.Add(time.Second))
	if s.TotalRequests != 3 || s.SuccessCount != 2 || s.ErrorCount != 1 {
		t.Fatalf("counts: %+v", s)
	}
	if s.ThroughputRPS != 3 {
		t.Fatalf("rps=%v", s.ThroughputRPS)
	}
	if s.ByKind["item"].Total != 2 || s.ByKind["item"].Success != 1 {
		t.Fatalf("by kind: %+v", s.ByKind)
	}
	if s.P50Ms != 20 {
		t.Fatalf("p50=%v", s.P50Ms)
	}
}
