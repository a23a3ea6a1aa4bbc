package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usage-map/internal/boundary"
	"usage-map/internal/metrics"
	"usage-map/internal/store"
	"usage-map/internal/usage"
)

type fakeRecords struct {
	recs      []usage.UsageRecord
	err       error
	fetchedAt time.Time
	refreshed int
}

func (f *fakeRecords) Get(context.Context) ([]usage.UsageRecord, error) { return f.recs, f.err }

func (f *fakeRecords) Refresh(context.Context) ([]usage.UsageRecord, error) {
	f.refreshed++
	f.fetchedAt = f.fetchedAt.Add(time.Minute)
	return f.recs, f.err
}

func (f *fakeRecords) FetchedAt() time.Time { return f.fetchedAt }

type fakeBoundaries struct {
	col *boundary.Collection
	err error
}

func (f *fakeBoundaries) Fetch(context.Context) (*boundary.Collection, error) { return f.col, f.err }

func sampleRecords() []usage.UsageRecord {
	return []usage.UsageRecord{
		{UserID: "U1", Location: "Mumbai", ScreenTime: usage.Num(3), DataUsage: usage.Num(10), PrimaryUse: "Social Media", Age: "25", Gender: "Male", PhoneBrand: "Samsung"},
		{UserID: "U2", Location: "Pune", ScreenTime: usage.Num(4), PrimaryUse: "Work", Age: "31", Gender: "Female", PhoneBrand: "Apple"},
		{UserID: "U3", Location: "Delhi", ScreenTime: usage.Missing, PrimaryUse: "Gaming", Age: "19", Gender: "Male", PhoneBrand: "Samsung"},
		{UserID: "U4", Location: "Atlantis", ScreenTime: usage.Num(9)},
	}
}

func sampleCollection() *boundary.Collection {
	geom := json.RawMessage(`{"type":"Polygon","coordinates":[[[72,15],[80,15],[80,22],[72,15]]]}`)
	return &boundary.Collection{Features: []boundary.Feature{
		{Name: "Maharashtra", Geometry: geom},
		{Name: "Orissa", Geometry: geom},
	}}
}

func newMux(recs *fakeRecords, bnd *fakeBoundaries) *http.ServeMux {
	mux := http.NewServeMux()
	NewPages(NewService(recs, bnd, 5), usage.ScreenTime, 500).Register(mux)
	return mux
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestDashboard_OK(t *testing.T) {
	mux := newMux(&fakeRecords{recs: sampleRecords(), fetchedAt: time.Unix(100, 0)}, &fakeBoundaries{col: sampleCollection()})

	rr := get(t, mux, "/?metric=data_usage")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, rr.Header().Get("content-type"), "text/html")
	assert.Contains(t, body, "India Mobile Usage Dashboard")
	assert.Contains(t, body, `<option value="data_usage" selected>`)
	assert.Contains(t, body, `id="usage-map"`)
	assert.Contains(t, body, "height: 500px")
	assert.Contains(t, body, "Region name mismatches")
	assert.Contains(t, body, "unknown_boundary_name: Orissa")
	assert.Contains(t, body, "missing_boundary: Delhi")
	assert.Contains(t, body, "1 records have a city outside the state table")
	assert.Contains(t, body, "Top Phone Brands")
	assert.Contains(t, body, "5.3 hrs", "overall mean screen time over valid values")
}

func TestDashboard_UnknownPathIs404(t *testing.T) {
	mux := newMux(&fakeRecords{}, &fakeBoundaries{col: &boundary.Collection{}})
	assert.Equal(t, http.StatusNotFound, get(t, mux, "/nope").Code)
}

func TestDashboard_StoreDown(t *testing.T) {
	down := &store.ConnectivityError{Op: "query", Err: errors.New("connection refused")}
	mux := newMux(&fakeRecords{err: down}, &fakeBoundaries{col: sampleCollection()})

	rr := get(t, mux, "/")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "Data unavailable.")
	assert.Contains(t, rr.Body.String(), "connection refused")
	assert.NotContains(t, rr.Body.String(), "Usage Patterns")

	assert.Equal(t, http.StatusServiceUnavailable, get(t, mux, "/map").Code)
}

func TestDashboard_BoundaryDownStillRendersCharts(t *testing.T) {
	fe := &boundary.FetchError{URL: "http://geo", Stage: "status", Status: 500}
	mux := newMux(&fakeRecords{recs: sampleRecords()}, &fakeBoundaries{err: fe})

	rr := get(t, mux, "/")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Map unavailable.")
	assert.NotContains(t, body, `id="usage-map"`)
	assert.Contains(t, body, "Age Distribution")
	assert.Contains(t, body, "Samsung")

	rr = get(t, mux, "/map")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "unexpected status 500")
}

func TestMapFragment(t *testing.T) {
	mux := newMux(&fakeRecords{recs: sampleRecords()}, &fakeBoundaries{col: sampleCollection()})
	rr := get(t, mux, "/map?metric=bogus")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "L.map(")
	assert.NotContains(t, rr.Body.String(), "<html")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, StatusFor(&store.ConnectivityError{Op: "ping"}))
	assert.Equal(t, http.StatusBadGateway, StatusFor(&boundary.FetchError{Stage: "decode"}))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("boom")))
}

func TestService_WarningsReportedOncePerSnapshot(t *testing.T) {
	recs := &fakeRecords{recs: sampleRecords(), fetchedAt: time.Unix(500, 0)}
	svc := NewService(recs, &fakeBoundaries{col: sampleCollection()}, 0)
	screen := metrics.CoercionWarningsTotal.WithLabelValues(string(usage.ScreenTime))
	before := testutil.ToFloat64(screen)
	unmappedBefore := testutil.ToFloat64(metrics.UnmappedRecordsTotal)

	for i := 0; i < 3; i++ {
		v, err := svc.Load(context.Background(), usage.ScreenTime)
		require.NoError(t, err)
		require.NotNil(t, v.Map)
	}
	assert.Equal(t, before+1, testutil.ToFloat64(screen))
	assert.Equal(t, unmappedBefore+1, testutil.ToFloat64(metrics.UnmappedRecordsTotal))

	n, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	_, err = svc.Load(context.Background(), usage.ScreenTime)
	require.NoError(t, err)
	assert.Equal(t, before+2, testutil.ToFloat64(screen))
}
