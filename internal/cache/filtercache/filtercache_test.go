package filtercache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohammed-shakir/dggs-ldapi/internal/cache/redisstore"
	"github.com/mohammed-shakir/dggs-ldapi/internal/catalog"
	"github.com/mohammed-shakir/dggs-ldapi/internal/grid"
	"github.com/mohammed-shakir/dggs-ldapi/internal/zone"
)

type countingSource struct {
	calls atomic.Int32
	ids   []zone.Address
	err   error
}

func (s *countingSource) Within(context.Context, catalog.Collection, grid.BBox) ([]zone.Address, error) {
	s.calls.Add(1)
	return s.ids, s.err
}

var (
	g2   = catalog.Collection{ID: "g2", Resolution: 2}
	g3   = catalog.Collection{ID: "g3", Resolution: 3}
	bbox = grid.BBox{MinLon: 149, MinLat: -36, MaxLon: 150, MaxLat: -35}
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newRedis(t *testing.T) (*redisstore.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cli, err := redisstore.New(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cli.Close() })
	return cli, mr
}

func TestL1Hit(t *testing.T) {
	src := &countingSource{ids: []zone.Address{"R12", "R13"}}
	c, err := New(quiet(), src, 8)
	require.NoError(t, err)

	for range 3 {
		got, err := c.Within(context.Background(), g2, bbox)
		require.NoError(t, err)
		assert.Equal(t, src.ids, got)
	}
	assert.EqualValues(t, 1, src.calls.Load())
}

func TestKeyedByCollection(t *testing.T) {
	src := &countingSource{ids: []zone.Address{"R12"}}
	c, err := New(quiet(), src, 8)
	require.NoError(t, err)

	_, _ = c.Within(context.Background(), g2, bbox)
	_, _ = c.Within(context.Background(), g3, bbox)
	assert.EqualValues(t, 2, src.calls.Load())
}

func TestErrorsAreNotCached(t *testing.T) {
	src := &countingSource{err: errors.New("boom")}
	c, err := New(quiet(), src, 8)
	require.NoError(t, err)

	_, err = c.Within(context.Background(), g2, bbox)
	require.Error(t, err)
	_, err = c.Within(context.Background(), g2, bbox)
	require.Error(t, err)
	assert.EqualValues(t, 2, src.calls.Load())
}

func TestL2SharedBetweenInstances(t *testing.T) {
	cli, mr := newRedis(t)
	src := &countingSource{ids: []zone.Address{"R12", "R15"}}

	a, err := New(quiet(), src, 8, WithRedis(cli))
	require.NoError(t, err)
	b, err := New(quiet(), src, 8, WithRedis(cli))
	require.NoError(t, err)

	_, err = a.Within(context.Background(), g2, bbox)
	require.NoError(t, err)
	assert.Len(t, mr.Keys(), 1)

	got, err := b.Within(context.Background(), g2, bbox)
	require.NoError(t, err)
	assert.Equal(t, src.ids, got)
	assert.EqualValues(t, 1, src.calls.Load())
}

func TestRedisDownFallsThrough(t *testing.T) {
	cli, mr := newRedis(t)
	src := &countingSource{ids: []zone.Address{"R12"}}
	c, err := New(quiet(), src, 8, WithRedis(cli))
	require.NoError(t, err)

	mr.Close()
	got, err := c.Within(context.Background(), g2, bbox)
	require.NoError(t, err)
	assert.Equal(t, src.ids, got)
}

func TestInvalidateCollection(t *testing.T) {
	cli, mr := newRedis(t)
	src := &countingSource{ids: []zone.Address{"R12"}}
	c, err := New(quiet(), src, 8, WithRedis(cli))
	require.NoError(t, err)

	_, _ = c.Within(context.Background(), g2, bbox)
	_, _ = c.Within(context.Background(), g3, bbox)
	require.Len(t, mr.Keys(), 2)

	require.NoError(t, c.Invalidate(context.Background(), "g2"))
	assert.Len(t, mr.Keys(), 1)

	_, _ = c.Within(context.Background(), g2, bbox)
	_, _ = c.Within(context.Background(), g3, bbox)
	assert.EqualValues(t, 3, src.calls.Load())
}

func TestInvalidateAll(t *testing.T) {
	src := &countingSource{ids: []zone.Address{"R12"}}
	c, err := New(quiet(), src, 8)
	require.NoError(t, err)

	_, _ = c.Within(context.Background(), g2, bbox)
	require.NoError(t, c.Invalidate(context.Background(), ""))
	_, _ = c.Within(context.Background(), g2, bbox)
	assert.EqualValues(t, 2, src.calls.Load())
}
