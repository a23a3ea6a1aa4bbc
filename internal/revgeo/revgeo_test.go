package revgeo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usage-map/internal/boundary"
	"usage-map/internal/region"
)

func square(minLon, minLat, maxLon, maxLat float64) []boundary.Point {
	return []boundary.Point{
		{Lat: minLat, Lon: minLon}, {Lat: minLat, Lon: maxLon},
		{Lat: maxLat, Lon: maxLon}, {Lat: maxLat, Lon: minLon}, {Lat: minLat, Lon: minLon},
	}
}

func TestPointInPoly_WithHole(t *testing.T) {
	poly := boundary.Polygon{
		Rings: [][]boundary.Point{square(0, 0, 10, 10), square(4, 4, 6, 6)},
		BBox:  [4]float64{0, 0, 10, 10},
	}
	assert.True(t, pointInPoly(boundary.Point{Lat: 2, Lon: 2}, poly))
	assert.False(t, pointInPoly(boundary.Point{Lat: 5, Lon: 5}, poly), "inside hole")
	assert.False(t, pointInPoly(boundary.Point{Lat: 11, Lon: 5}, poly))
	assert.False(t, pointInPoly(boundary.Point{Lat: 1, Lon: 1}, boundary.Polygon{}))
}

func TestEncodeGeohash(t *testing.T) {
	assert.Equal(t, "u4pruy", encodeGeohash(57.64911, 10.40744, 6))
	assert.Equal(t, "u4pruydqqvj", encodeGeohash(57.64911, 10.40744, 11))
}

func TestLRU_EvictsAndExpires(t *testing.T) {
	c := NewLRU(2, time.Minute)
	now := time.Unix(0, 0)
	c.now = func() time.Time { return now }
	c.Set("a", Result{Name: "A"})
	c.Set("b", Result{Name: "B"})
	_, _ = c.Get("a")
	c.Set("c", Result{Name: "C"})
	_, ok := c.Get("b")
	assert.False(t, ok, "least recently used evicted")
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "A", v.Name)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("c")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestNearestAnchor(t *testing.T) {
	root := buildKD([]anchor{
		{ID: region.Kerala, Pos: region.Point{Lat: 10.85, Lon: 76.27}},
		{ID: region.Goa, Pos: region.Point{Lat: 15.30, Lon: 74.12}},
		{ID: region.Maharashtra, Pos: region.Point{Lat: 19.75, Lon: 75.71}},
		{ID: region.TamilNadu, Pos: region.Point{Lat: 11.13, Lon: 78.66}},
	}, 0)
	a, d := nearest(root, 15.0, 74.0)
	assert.Equal(t, region.Goa, a.ID)
	assert.Less(t, d, 40.0)
}

type countingSource struct {
	col   *boundary.Collection
	err   error
	calls int
}

func (s *countingSource) Fetch(context.Context) (*boundary.Collection, error) {
	s.calls++
	return s.col, s.err
}

func TestLocator_Locate(t *testing.T) {
	ring := square(72, 15.6, 80.9, 22)
	src := &countingSource{col: &boundary.Collection{Features: []boundary.Feature{
		{Name: "Maharashtra", Polys: []boundary.Polygon{{Rings: [][]boundary.Point{ring}, BBox: [4]float64{72, 15.6, 80.9, 22}}}},
		{Name: "Orissa", Polys: []boundary.Polygon{{Rings: [][]boundary.Point{square(81, 17.8, 87.5, 22.6)}, BBox: [4]float64{81, 17.8, 87.5, 22.6}}}},
	}}}
	l := NewLocator(src, Options{})
	ctx := context.Background()

	res, err := l.Locate(ctx, 19.07, 72.87)
	require.NoError(t, err)
	assert.Equal(t, Result{Name: "Maharashtra", Region: region.Maharashtra, Found: true}, res)
	_, err = l.Locate(ctx, 19.07, 72.87)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls, "second lookup served from cache")

	res, err = l.Locate(ctx, 20.3, 85.8)
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "Orissa", res.Name)
	assert.Empty(t, res.Region, "legacy boundary name has no region id")

	res, err = l.Locate(ctx, 10.9, 76.3)
	require.NoError(t, err)
	assert.True(t, res.Approx)
	assert.Equal(t, region.Kerala, res.Region)
	assert.Equal(t, "Kerala", res.Name)

	res, err = l.Locate(ctx, 0, 0)
	require.NoError(t, err)
	assert.False(t, res.Found)

	_, err = l.Locate(ctx, 91, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestLocator_BoundaryError(t *testing.T) {
	fe := &boundary.FetchError{Stage: "request", Err: errors.New("timeout")}
	l := NewLocator(&countingSource{err: fe}, Options{})
	_, err := l.Locate(context.Background(), 19, 73)
	var got *boundary.FetchError
	assert.ErrorAs(t, err, &got)
}
