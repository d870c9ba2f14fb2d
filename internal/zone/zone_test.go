package zone

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohammed-shakir/dggs-ldapi/internal/core/apperr"
	"github.com/mohammed-shakir/dggs-ldapi/internal/grid"
)

type fakeGrid struct {
	err error
}

func (f fakeGrid) Vertices(string) ([]grid.LonLat, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []grid.LonLat{{Lon: 0, Lat: 1}, {Lon: 1, Lat: 1}, {Lon: 1, Lat: 0}, {Lon: 0, Lat: 0}}, nil
}

func (f fakeGrid) Centroid(string) (grid.LonLat, error) {
	return grid.LonLat{Lon: 0.5, Lat: 0.5}, f.err
}

func (f fakeGrid) Neighbours(a string) (map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return map[string]string{"up": a + "0", "left": a + "3", "down": a + "6", "right": a + "5"}, nil
}

func TestParse(t *testing.T) {
	for _, ok := range []string{"N", "S8", "N12345678012345", "Q000"} {
		_, err := Parse(ok)
		assert.NoError(t, err, ok)
	}
	for _, bad := range []string{"", "n1", "N9", "NN", "N1234567801234567", "1N", "N 1"} {
		_, err := Parse(bad)
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, apperr.ErrInvalidAddress), bad)
	}
}

func TestParent(t *testing.T) {
	assert.Equal(t, Root, Address("N").Parent())
	assert.Equal(t, Address("N1"), Address("N12").Parent())
}

func TestChildrenOfParentContainsSelf(t *testing.T) {
	for _, a := range []Address{"N1", "S88", "P0123", "R1234567801234"} {
		assert.Contains(t, a.Parent().Children(), a)
	}
}

func TestChildrenAreNineInDigitOrder(t *testing.T) {
	for _, a := range []Address{"N", "O3", "Q12345678"} {
		kids := a.Children()
		require.Len(t, kids, 9)
		for d, k := range kids {
			assert.True(t, strings.HasPrefix(string(k), string(a)))
			assert.Equal(t, byte('0'+d), k[len(k)-1])
		}
	}
}

func TestChildrenAtMaxDepthIsNil(t *testing.T) {
	a, err := Parse("N12345678012345")
	require.NoError(t, err)
	require.Len(t, string(a), MaxLen)
	assert.Nil(t, a.Children())
}

func TestNeighboursSortedByDirection(t *testing.T) {
	nbs, err := Neighbours(fakeGrid{}, "N1")
	require.NoError(t, err)
	var dirs []string
	for _, n := range nbs {
		dirs = append(dirs, n.Direction)
	}
	assert.Equal(t, []string{"down", "left", "right", "up"}, dirs)
	assert.Equal(t, Address("N16"), nbs[0].Address)
}

func TestGeometryOfClosesRing(t *testing.T) {
	g, err := GeometryOf(fakeGrid{}, "N1")
	require.NoError(t, err)
	ring := g.Boundary.Points
	require.Len(t, ring, 5)
	assert.Equal(t, ring[0], ring[4])
	assert.Equal(t, "POLYGON ((0 1, 1 1, 1 0, 0 0, 0 1))", g.Boundary.Literal())
	assert.Equal(t, "POINT (0.5 0.5)", g.Centroid.Literal())
	assert.Equal(t, RoleCentroid, g.Centroid.Role)
}

func TestBuild(t *testing.T) {
	z, err := Build(fakeGrid{}, "N12", "g2", nil)
	require.NoError(t, err)
	assert.Equal(t, "Zone N12", z.Title)
	assert.Equal(t, Address("N1"), z.Parent)
	require.Len(t, z.Geometries, 3)
	assert.Equal(t, CRSTB16Pix, z.Geometries[0].CRS)
	assert.Equal(t, "N12", z.Geometries[0].Literal())
	b, ok := z.Boundary()
	require.True(t, ok)
	assert.Equal(t, RoleBoundary, b.Role)
	assert.Equal(t, "https://w3id.org/dggs/tb16pix/zone/N12", z.URI())

	z, err = Build(fakeGrid{}, "N12", "g2", &Record{Title: "Canberra", Description: "capital"})
	require.NoError(t, err)
	assert.Equal(t, "Canberra", z.Title)
	assert.Equal(t, "capital", z.Description)
}

func TestBuildPropagatesGridError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Build(fakeGrid{err: boom}, "N1", "g1", nil)
	assert.ErrorIs(t, err, boom)
}

func TestBuildBadNeighbourIsServerError(t *testing.T) {
	_, err := Build(fakeGrid{}, "N12345678012345", "g14", nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, apperr.ErrInvalidAddress))
	assert.Equal(t, http.StatusInternalServerError, apperr.As(err).Status)
}

func TestRoleAndCRSWire(t *testing.T) {
	assert.Equal(t, "https://linked.data.gov.au/def/geometry-roles/bounding-box", RoleBoundingBox.URI())
	assert.Equal(t, "http://www.opengis.net/def/crs/EPSG/0/4326", CRSWGS84.URI())
	g := AreaGeometry("P3")
	assert.Equal(t, "<https://w3id.org/dggs/tb16pix> P3", g.WKTLiteral())
}
