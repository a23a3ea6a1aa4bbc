package logger

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"usage-map/internal/metrics"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel(" DEBUG "))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "info", "json", false).Info("records_fetch_ok", "records", 3)
	assert.Contains(t, buf.String(), `"msg":"records_fetch_ok"`)
	assert.Contains(t, buf.String(), `"app":"usage-map"`)
	assert.Contains(t, buf.String(), `"records":3`)
}

func TestAccessMiddleware_UsesRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "debug", "text", false)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream"))
	})
	h := AccessMiddleware(l)(mux)

	c := metrics.HTTPRequestsTotal.WithLabelValues("GET /api/items/{id}", "502")
	before := testutil.ToFloat64(c)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/items/7", nil))
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(c))
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "status=502")
	assert.Contains(t, buf.String(), "bytes=8")

	u := metrics.HTTPRequestsTotal.WithLabelValues("unmatched", "404")
	before = testutil.ToFloat64(u)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(u))
}
