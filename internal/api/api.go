// 包 api：看板的 JSON 与导出接口，挂载在 API_BASE 前缀下
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"usage-map/internal/aggregate"
	"usage-map/internal/dashboard"
	"usage-map/internal/logger"
	"usage-map/internal/metrics"
	"usage-map/internal/middleware"
	"usage-map/internal/revgeo"
	"usage-map/internal/usage"
)

// Pinger：记录库连通性探测（store.Store）
type Pinger interface {
	Ping(ctx context.Context) error
}

// Locator：坐标反查行政区（revgeo.Locator）
type Locator interface {
	Locate(ctx context.Context, lat, lon float64) (revgeo.Result, error)
}

// Options：接口参数；Locator 为空时不注册 /locate，AdminAllow 为空时 /refresh 只校验令牌
type Options struct {
	Base          string
	AdminToken    string
	AdminAllow    *middleware.Allowlist
	DefaultMetric usage.Field
	Locator       Locator
}

// Register：在共享 ServeMux 上以完整路径注册接口，保持路由模式可用于指标标签
func Register(mux *http.ServeMux, svc *dashboard.Service, pinger Pinger, opts Options) {
	if opts.DefaultMetric == "" {
		opts.DefaultMetric = usage.ScreenTime
	}
	b := opts.Base
	mux.HandleFunc("GET "+b+"/summary", func(w http.ResponseWriter, r *http.Request) {
		metric := dashboard.MetricParam(r, opts.DefaultMetric)
		v, err := svc.Load(r.Context(), metric)
		if err != nil {
			writeJSON(w, dashboard.StatusFor(err), errorResponse{Error: err.Error()})
			return
		}
		res := summaryResponse{
			Metric:        metric,
			FetchedAt:     v.FetchedAt,
			Summaries:     v.Result.Summaries,
			Coercion:      v.Result.Coercion,
			Unmapped:      v.Result.Unmapped,
			Overview:      v.Overview,
			Distributions: v.Distributions,
		}
		status := http.StatusOK
		if v.MapErr != nil {
			status = dashboard.StatusFor(v.MapErr)
			res.BoundaryError = v.MapErr.Error()
		} else {
			res.Mismatches = v.Map.Mismatches
		}
		writeJSON(w, status, res)
	})

	mux.HandleFunc("GET "+b+"/export.xlsx", func(w http.ResponseWriter, r *http.Request) {
		recs, err := svc.Records(r.Context())
		if err != nil {
			writeJSON(w, dashboard.StatusFor(err), errorResponse{Error: err.Error()})
			return
		}
		data, err := BuildWorkbook(recs)
		if err != nil {
			logger.L().Error("export_error", "err", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "export failed"})
			return
		}
		w.Header().Set("content-type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("content-disposition", `attachment; filename="mobile-usage-by-state.xlsx"`)
		w.Header().Set("cache-control", "no-store")
		_, _ = w.Write(data)
	})

	mux.Handle("POST "+b+"/refresh", opts.AdminAllow.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := r.Header.Get("x-admin-token")
		if t == "" || t != opts.AdminToken {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		n, err := svc.Refresh(r.Context())
		if err != nil {
			logger.L().Error("records_refresh_error", "err", err)
			writeJSON(w, dashboard.StatusFor(err), errorResponse{Error: err.Error()})
			return
		}
		logger.L().Info("records_refreshed", "records", n)
		writeJSON(w, http.StatusOK, map[string]any{"records": n})
	})))

	mux.HandleFunc("GET "+b+"/health", func(w http.ResponseWriter, r *http.Request) {
		if err := pinger.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "down", "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	if opts.Locator != nil {
		mux.HandleFunc("GET "+b+"/locate", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			lat, err1 := strconv.ParseFloat(q.Get("lat"), 64)
			lon, err2 := strconv.ParseFloat(q.Get("lon"), 64)
			if err1 != nil || err2 != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "lat and lon are required numbers"})
				return
			}
			res, err := opts.Locator.Locate(r.Context(), lat, lon)
			if errors.Is(err, revgeo.ErrOutOfRange) {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
				return
			}
			if err != nil {
				writeJSON(w, dashboard.StatusFor(err), errorResponse{Error: err.Error()})
				return
			}
			out := locateResponse{Result: res}
			if res.Region != "" {
				recs, err := svc.Records(r.Context())
				if err != nil {
					writeJSON(w, dashboard.StatusFor(err), errorResponse{Error: err.Error()})
					return
				}
				if s, ok := aggregate.Summarize(recs).Find(res.Region); ok {
					out.Summary = &s
				}
			}
			writeJSON(w, http.StatusOK, out)
		})
	}

	mux.Handle("GET "+b+"/metrics", metrics.Handler())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
