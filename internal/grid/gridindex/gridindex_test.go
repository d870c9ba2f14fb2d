package gridindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohammed-shakir/dggs-ldapi/internal/grid"
	"github.com/mohammed-shakir/dggs-ldapi/internal/grid/rhealpix"
)

func TestBuildIndexesEveryCell(t *testing.T) {
	ix, err := Build(rhealpix.New(), 1)
	require.NoError(t, err)
	assert.Equal(t, 54, ix.Size())
	assert.Equal(t, 1, ix.Resolution())
}

func TestQueryFindsCellOfPoint(t *testing.T) {
	g := rhealpix.New()
	ix, err := Build(g, DefaultResolution)
	require.NoError(t, err)

	// Canberra
	hits := ix.Query(grid.BBox{MinLon: 149.0, MinLat: -35.3, MaxLon: 149.3, MaxLat: -35.1})
	require.NotEmpty(t, hits)
	for i := 1; i < len(hits); i++ {
		a, _ := rhealpix.Index(hits[i-1].Addr)
		b, _ := rhealpix.Index(hits[i].Addr)
		assert.Less(t, a, b)
	}
	assert.Less(t, len(hits), ix.Size())

	all := ix.Query(grid.BBox{MinLon: -180, MinLat: -90, MaxLon: 180, MaxLat: 90})
	assert.Len(t, all, ix.Size())
}

func TestQueryAcrossAntimeridian(t *testing.T) {
	ix, err := Build(rhealpix.New(), 1)
	require.NoError(t, err)
	hits := ix.Query(grid.BBox{MinLon: 170, MinLat: -10, MaxLon: -170, MaxLat: 10})
	require.NotEmpty(t, hits)
	for _, h := range hits {
		e := h.Envelope
		west := e.MaxLon >= 170
		east := e.MinLon <= -170
		assert.True(t, west || east, "%s envelope %v", h.Addr, e)
	}
}

func TestBuildRejectsBadResolution(t *testing.T) {
	_, err := Build(rhealpix.New(), -1)
	assert.Error(t, err)
}
