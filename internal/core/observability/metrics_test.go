package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInit_RegistersAndIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	Init(reg, true)
	Init(reg, true)

	ObserveHTTP("GET", "/collections", 200, 0.001)
	IncRepresentation("collections", "oai", "application/json")
	ObserveCacheOp("get", errors.New("x"), 0.0001)

	rr := httptest.NewRecorder()
	promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		`http_requests_total{method="GET",route="/collections",status="200"}`,
		`ldapi_representations_total{mediatype="application/json",profile="oai",resource="collections"}`,
		`cache_op_total{op="get",result="error"}`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %s in:\n%s", want, body)
		}
	}
}

func TestInit_DisabledRegistersNothing(t *testing.T) {
	reg := prometheus.NewRegistry()
	Init(reg, false)
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) != 0 {
		t.Fatalf("got %d families want 0", len(mfs))
	}
}

func TestFilterCacheCounter(t *testing.T) {
	before := testutil.ToFloat64(filterCacheResults.WithLabelValues("l1", "hit"))
	IncFilterCache("l1", true)
	after := testutil.ToFloat64(filterCacheResults.WithLabelValues("l1", "hit"))
	if after-before != 1 {
		t.Fatalf("got delta %v want 1", after-before)
	}
}
