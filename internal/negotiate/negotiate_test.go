package negotiate

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohammed-shakir/dggs-ldapi/internal/core/apperr"
)

var features = Resource{
	Name:          "features",
	Profiles:      []Profile{OAI, GeoSPARQL},
	AllowedParams: []string{"_profile", "_view", "_mediatype", "_format", "page", "per_page", "limit", "bbox"},
}

func req(target string, headers ...string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		r.Header.Set(headers[i], headers[i+1])
	}
	return r
}

func TestUnknownParamRejectedFirst(t *testing.T) {
	_, err := Negotiate(req("/items?zeta=1&foo=bar&_profile=geosp"), features)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInvalidParameter))
	assert.Equal(t, "The parameter foo you supplied is not allowed", err.Error())
}

func TestDefaults(t *testing.T) {
	res, err := Negotiate(req("/items"), features)
	require.NoError(t, err)
	assert.Equal(t, "oai", res.Profile.Token)
	assert.Equal(t, GeoJSON, res.MediaType)
	assert.False(t, res.Alternates)
}

func TestUndeclaredProfileIsIgnored(t *testing.T) {
	res, err := Negotiate(req("/items?_profile=dcat"), features)
	require.NoError(t, err)
	assert.Equal(t, "oai", res.Profile.Token)
	assert.Equal(t, GeoJSON, res.MediaType)
}

func TestExplicitProfileAndAliases(t *testing.T) {
	res, err := Negotiate(req("/items?_view=geosp&_format=text/turtle"), features)
	require.NoError(t, err)
	assert.Equal(t, "geosp", res.Profile.Token)
	assert.Equal(t, Turtle, res.MediaType)

	res, err = Negotiate(req("/items?_profile=http://www.opengis.net/ont/geosparql"), features)
	require.NoError(t, err)
	assert.Equal(t, "geosp", res.Profile.Token)
	assert.Equal(t, HTML, res.MediaType)
}

func TestMediaTypeParamPlusDecodedAsSpace(t *testing.T) {
	res, err := Negotiate(req("/items?_mediatype=application/geo+json"), features)
	require.NoError(t, err)
	assert.Equal(t, GeoJSON, res.MediaType)

	res, err = Negotiate(req("/items?_profile=geosp&_mediatype=application/ld%2Bjson"), features)
	require.NoError(t, err)
	assert.Equal(t, JSONLD, res.MediaType)
}

func TestUnsupportedMediaTypeFallsBack(t *testing.T) {
	res, err := Negotiate(req("/items?_profile=geosp&_mediatype=application/geo+json"), features)
	require.NoError(t, err)
	assert.Equal(t, HTML, res.MediaType)
}

func TestAcceptNegotiation(t *testing.T) {
	res, err := Negotiate(req("/items", "Accept", "text/html,application/xhtml+xml,*/*;q=0.8"), features)
	require.NoError(t, err)
	assert.Equal(t, HTML, res.MediaType)

	res, err = Negotiate(req("/items", "Accept", "*/*"), features)
	require.NoError(t, err)
	assert.Equal(t, GeoJSON, res.MediaType)

	res, err = Negotiate(req("/items?_profile=geosp", "Accept", "text/html;q=0.5, text/turtle"), features)
	require.NoError(t, err)
	assert.Equal(t, Turtle, res.MediaType)

	res, err = Negotiate(req("/items", "Accept", "application/json;q=0, text/csv"), features)
	require.NoError(t, err)
	assert.Equal(t, GeoJSON, res.MediaType)
}

func TestAcceptProfileHeader(t *testing.T) {
	res, err := Negotiate(req("/items", "Accept-Profile", "<http://example.org/x>;q=1, <http://www.opengis.net/ont/geosparql>;q=0.9"), features)
	require.NoError(t, err)
	assert.Equal(t, "geosp", res.Profile.Token)

	res, err = Negotiate(req("/items?_profile=oai", "Accept-Profile", "geosp"), features)
	require.NoError(t, err)
	assert.Equal(t, "oai", res.Profile.Token)
}

func TestAlternatesView(t *testing.T) {
	res, err := Negotiate(req("/items?_profile=alt&_mediatype=application/json"), features)
	require.NoError(t, err)
	assert.True(t, res.Alternates)
	assert.Equal(t, JSON, res.MediaType)
}

func TestSetHeaders(t *testing.T) {
	res, err := Negotiate(req("/items"), features)
	require.NoError(t, err)
	h := http.Header{}
	res.SetHeaders(h, "http://localhost/collections/g1/items?page=2", true,
		Link{Href: "http://localhost/collections/g1", Rel: "collection", Type: "application/json"})

	assert.Equal(t, "application/geo+json", h.Get("Content-Type"))
	assert.Equal(t, "<http://www.opengis.net/spec/ogcapi-features-1/1.0/req/oas30>", h.Get("Content-Profile"))
	link := h.Get("Link")
	assert.True(t, strings.HasPrefix(link, `<http://www.opengis.net/spec/ogcapi-features-1/1.0/req/oas30>; rel="profile"`))
	assert.Contains(t, link, `_mediatype=text%2Fturtle&_profile=geosp&page=2>; rel="alternate"; type="text/turtle"`)
	assert.Contains(t, link, `rel="collection"`)
	assert.NotContains(t, link, `_mediatype=application%2Fgeo%2Bjson&_profile=oai`)
}

func TestParseMediaType(t *testing.T) {
	for in, want := range map[string]MediaType{
		"text/turtle":              Turtle,
		"TTL":                      Turtle,
		"application/rdf+xml":      RDFXML,
		"text/html; charset=utf-8": HTML,
	} {
		got, ok := ParseMediaType(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	got, ok := ParseMediaType("application/vnd.oai.openapi+json;version=3.0")
	require.True(t, ok)
	assert.Equal(t, OpenAPI, got)

	_, ok = ParseMediaType("text/csv")
	assert.False(t, ok)
}
