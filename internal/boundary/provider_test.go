package boundary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) []byte {
	t.Helper()
	b, err := os.ReadFile("testdata/states.geojson")
	require.NoError(t, err)
	return b
}

func TestParse_FixtureFeatures(t *testing.T) {
	col, err := Parse(loadFixture(t), "")
	require.NoError(t, err)
	require.Len(t, col.Features, 4)
	assert.Equal(t, []string{"Maharashtra", "Delhi", "Orissa", "Goa"}, col.Names())

	mh := col.Features[0]
	require.Len(t, mh.Polys, 1)
	assert.Equal(t, [4]float64{72.6, 15.6, 80.9, 22.0}, mh.Polys[0].BBox)
	assert.Equal(t, Point{Lat: 15.6, Lon: 72.6}, mh.Polys[0].Rings[0][0])
	assert.EqualValues(t, 20, mh.Properties["ID_1"])
	assert.JSONEq(t, `{"type": "Polygon", "coordinates": [[[72.6, 15.6], [80.9, 15.6], [80.9, 22.0], [72.6, 22.0], [72.6, 15.6]]]}`, string(mh.Geometry))

	assert.Len(t, col.Features[1].Polys, 2)
	assert.Empty(t, col.Features[3].Polys)

	bb, ok := col.BBox()
	require.True(t, ok)
	assert.Equal(t, [4]float64{72.6, 15.6, 87.5, 28.9}, bb)
}

func TestParse_CustomNameKeyAndNonStringName(t *testing.T) {
	col, err := Parse([]byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"st_nm":"Kerala"},"geometry":null},
		{"type":"Feature","properties":{"st_nm":7},"geometry":null},
		{"type":"Feature","properties":null,"geometry":null}]}`), "st_nm")
	require.NoError(t, err)
	assert.Equal(t, []string{"Kerala", "7", ""}, col.Names())
	_, ok := col.BBox()
	assert.False(t, ok)
}

func TestParse_Rejects(t *testing.T) {
	_, err := Parse([]byte(`<html>rate limited</html>`), "")
	assert.Error(t, err)

	_, err = Parse([]byte(`{"type":"Feature","properties":{},"geometry":null}`), "")
	assert.ErrorIs(t, err, errNotFeatureCollection)
}

func TestProvider_Fetch(t *testing.T) {
	body := loadFixture(t)
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("content-type", "text/plain; charset=utf-8")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	p := NewProvider(Options{URL: srv.URL, Timeout: 5 * time.Second})
	col, err := p.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, col.Features, 4)
	assert.Equal(t, srv.URL, col.Source)
	assert.False(t, col.FetchedAt.IsZero())

	_, err = p.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, hits, "boundaries are fetched on every call")
}

func TestProvider_FetchErrors(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"type":`))
	}))
	defer bad.Close()

	var fe *FetchError

	_, err := NewProvider(Options{URL: bad.URL + "/missing"}).Fetch(context.Background())
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "status", fe.Stage)
	assert.Equal(t, http.StatusNotFound, fe.Status)

	_, err = NewProvider(Options{URL: bad.URL + "/truncated"}).Fetch(context.Background())
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "decode", fe.Stage)

	closed := httptest.NewServer(http.NotFoundHandler())
	url := closed.URL
	closed.Close()
	_, err = NewProvider(Options{URL: url}).Fetch(context.Background())
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "request", fe.Stage)
	assert.Contains(t, err.Error(), "boundary fetch")
}
