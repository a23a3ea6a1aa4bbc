package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var durationBuckets = []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000}

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "usagemap_http_requests_total",
		Help: "Total HTTP requests by route and status",
	}, []string{"route", "status"})
	HTTPDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "usagemap_http_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: durationBuckets,
	}, []string{"route"})
	RendersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "usagemap_renders_total",
		Help: "Dashboard map renders by outcome",
	}, []string{"outcome"})
	RecordCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "usagemap_record_cache_hits_total",
		Help: "Record cache reads served without querying the store",
	})
	RecordCacheStaleTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "usagemap_record_cache_stale_total",
		Help: "Record cache reads served stale while a refresh was in flight",
	})
	RecordCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "usagemap_record_cache_misses_total",
		Help: "Record cache refreshes",
	})
	SharedCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "usagemap_shared_cache_hits_total",
		Help: "Record snapshots loaded from the shared redis tier",
	})
	RecordFetchDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "usagemap_record_fetch_duration_ms",
		Help:    "Record store query duration in milliseconds",
		Buckets: durationBuckets,
	})
	RecordFetchFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "usagemap_record_fetch_fail_total",
		Help: "Record store query failures",
	})
	RecordsFetched = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "usagemap_records_fetched",
		Help: "Number of usage records in the last store query",
	})
	BoundaryFetchDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "usagemap_boundary_fetch_duration_ms",
		Help:    "Boundary GeoJSON fetch duration in milliseconds",
		Buckets: durationBuckets,
	})
	BoundaryFetchFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "usagemap_boundary_fetch_fail_total",
		Help: "Boundary GeoJSON fetch or parse failures",
	})
	CoercionWarningsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "usagemap_coercion_warnings_total",
		Help: "Usage metric values that could not be parsed as numbers",
	}, []string{"field"})
	UnmappedRecordsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "usagemap_unmapped_records_total",
		Help: "Records whose city did not resolve to a state",
	})
	RegionMismatchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "usagemap_region_mismatch_total",
		Help: "Region names present in one dataset but absent from the other",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPDurationMs,
		RendersTotal,
		RecordCacheHitsTotal,
		RecordCacheStaleTotal,
		RecordCacheMissesTotal,
		SharedCacheHitsTotal,
		RecordFetchDurationMs,
		RecordFetchFailTotal,
		RecordsFetched,
		BoundaryFetchDurationMs,
		BoundaryFetchFailTotal,
		CoercionWarningsTotal,
		UnmappedRecordsTotal,
		RegionMismatchTotal,
	)
}

// 文档注释：返回 Prometheus 指标监听器，在主入口挂载到 {API_BASE}/metrics
func Handler() http.Handler { return promhttp.Handler() }
