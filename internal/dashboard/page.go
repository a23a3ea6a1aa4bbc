package dashboard

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"usage-map/internal/aggregate"
	"usage-map/internal/boundary"
	"usage-map/internal/logger"
	"usage-map/internal/mapview"
	"usage-map/internal/region"
	"usage-map/internal/store"
	"usage-map/internal/usage"
)

// SelectableMetrics：侧栏可选的着色指标
var SelectableMetrics = []usage.Field{usage.ScreenTime, usage.DataUsage, usage.SocialMediaTime}

var metricLabels = map[usage.Field]string{
	usage.ScreenTime:      "Screen Time",
	usage.DataUsage:       "Data Usage",
	usage.SocialMediaTime: "Social Media",
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type bar struct {
	Label string
	Count int
	Pct   float64
}

type chart struct {
	Title string
	Bars  []bar
}

type pageData struct {
	Title      string
	Options    []option
	Overview   aggregate.Overview
	FetchedAt  time.Time
	MapHTML    template.HTML
	MapError   string
	Mismatches []region.Mismatch
	Unmapped   int
	Charts     []chart
	Error      string
}

var pageTmpl = template.Must(template.New("page").Funcs(template.FuncMap{
	"hours": func(m usage.Metric) string {
		if !m.Valid {
			return "n/a"
		}
		return fmt.Sprintf("%.1f hrs", m.Value)
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { margin: 0; font-family: -apple-system, "Segoe UI", Roboto, sans-serif; color: #262730; display: flex; min-height: 100vh; }
aside { width: 260px; background: #f0f2f6; padding: 24px; box-sizing: border-box; }
main { flex: 1; padding: 24px 40px; }
h1 { margin-top: 0; }
.metric { margin: 16px 0; }
.metric .v { font-size: 28px; font-weight: 600; }
.panel-error { border: 1px solid #f5c2c7; background: #f8d7da; color: #842029; padding: 16px; border-radius: 6px; }
.notice { border: 1px solid #ffe69c; background: #fff3cd; color: #664d03; padding: 12px 16px; border-radius: 6px; margin-top: 12px; }
.charts { display: flex; gap: 32px; flex-wrap: wrap; margin-top: 24px; }
.chart { flex: 1; min-width: 240px; }
.bar { display: flex; align-items: center; margin: 4px 0; font-size: 13px; }
.bar .l { width: 80px; }
.bar .b { height: 14px; background: #fd8d3c; margin-right: 6px; }
footer { color: #808495; font-size: 12px; margin-top: 32px; }
</style>
</head>
<body>
<aside>
<h3>Select Metric</h3>
<form method="get" action="/">
<select name="metric" onchange="this.form.submit()">
{{range .Options}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>
{{end}}</select>
<noscript><button type="submit">Apply</button></noscript>
</form>
<h3>Key Metrics</h3>
<div class="metric"><div>Total Users</div><div class="v">{{.Overview.Users}}</div></div>
<div class="metric"><div>Avg Screen Time</div><div class="v">{{hours .Overview.MeanScreenTime}}</div></div>
</aside>
<main>
<h1>{{.Title}}</h1>
{{if .Error}}
<div class="panel-error"><b>Data unavailable.</b> {{.Error}}</div>
{{else}}
<h2>Usage by State</h2>
{{if .MapError}}<div class="panel-error"><b>Map unavailable.</b> {{.MapError}}</div>{{else}}{{.MapHTML}}{{end}}
{{if .Mismatches}}<div class="notice"><b>Region name mismatches</b><ul>
{{range .Mismatches}}<li>{{.Kind}}: {{.Name}}</li>
{{end}}</ul></div>{{end}}
{{if .Unmapped}}<div class="notice">{{.Unmapped}} records have a city outside the state table and are not shown on the map.</div>{{end}}
<h2>Usage Patterns</h2>
<div class="charts">
{{range .Charts}}<div class="chart"><h3>{{.Title}}</h3>
{{range .Bars}}<div class="bar"><span class="l">{{.Label}}</span><span class="b" style="width: {{printf "%.0f" .Pct}}%"></span>{{.Count}}</div>
{{else}}<p>No data</p>
{{end}}</div>
{{end}}</div>
<footer>Records loaded {{.FetchedAt.Format "2006-01-02 15:04:05 MST"}}</footer>
{{end}}
</main>
</body>
</html>
`))

// Pages：HTML 入口（完整看板页与可嵌入地图片段）
type Pages struct {
	svc           *Service
	defaultMetric usage.Field
	mapHeight     int
}

func NewPages(svc *Service, defaultMetric usage.Field, mapHeight int) *Pages {
	if defaultMetric == "" {
		defaultMetric = usage.ScreenTime
	}
	return &Pages{svc: svc, defaultMetric: defaultMetric, mapHeight: mapHeight}
}

// Register：挂载 GET / 与 GET /map
func (p *Pages) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", p.dashboard)
	mux.HandleFunc("GET /map", p.mapOnly)
}

// MetricParam：解析 ?metric=，无效或缺省时返回 def
func MetricParam(r *http.Request, def usage.Field) usage.Field {
	if f, ok := usage.ParseField(r.URL.Query().Get("metric")); ok {
		return f
	}
	return def
}

// StatusFor：把管线错误映射为 HTTP 状态码
func StatusFor(err error) int {
	var ce *store.ConnectivityError
	var fe *boundary.FetchError
	switch {
	case errors.As(err, &ce):
		return http.StatusServiceUnavailable
	case errors.As(err, &fe):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (p *Pages) dashboard(w http.ResponseWriter, r *http.Request) {
	metric := MetricParam(r, p.defaultMetric)
	d := pageData{Title: "India Mobile Usage Dashboard"}
	for _, f := range SelectableMetrics {
		d.Options = append(d.Options, option{Value: string(f), Label: metricLabels[f], Selected: f == metric})
	}
	status := http.StatusOK
	v, err := p.svc.Load(r.Context(), metric)
	if err != nil {
		status = StatusFor(err)
		d.Error = err.Error()
		logger.L().Error("dashboard_load_error", "status", status, "err", err)
	} else {
		d.Overview = v.Overview
		d.FetchedAt = v.FetchedAt
		d.Unmapped = v.Result.Unmapped
		d.Charts = charts(v.Distributions)
		if v.MapErr != nil {
			status = StatusFor(v.MapErr)
			d.MapError = v.MapErr.Error()
		} else {
			h, err := mapview.Fragment(v.Map, mapview.FragmentOptions{Height: p.mapHeight})
			if err != nil {
				status = http.StatusInternalServerError
				d.MapError = err.Error()
			}
			d.MapHTML = h
			d.Mismatches = v.Map.Mismatches
		}
	}
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, d); err != nil {
		logger.L().Error("page_render_error", "err", err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (p *Pages) mapOnly(w http.ResponseWriter, r *http.Request) {
	v, err := p.svc.Load(r.Context(), MetricParam(r, p.defaultMetric))
	if err == nil && v.MapErr != nil {
		err = v.MapErr
	}
	if err != nil {
		status := StatusFor(err)
		logger.L().Error("map_load_error", "status", status, "err", err)
		w.Header().Set("content-type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = fmt.Fprintf(w, `<div class="panel-error">%s</div>`, template.HTMLEscapeString(err.Error()))
		return
	}
	var buf bytes.Buffer
	if err := mapview.RenderFragment(&buf, v.Map, mapview.FragmentOptions{Height: p.mapHeight}); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	_, _ = buf.WriteTo(w)
}

func charts(d aggregate.Distributions) []chart {
	return []chart{
		{Title: "Age Distribution", Bars: bars(d.Age)},
		{Title: "Gender Distribution", Bars: bars(d.Gender)},
		{Title: "Top Phone Brands", Bars: bars(d.Brands)},
	}
}

func bars(cs []aggregate.Count) []bar {
	peak := 0
	for _, c := range cs {
		peak = max(peak, c.Count)
	}
	out := make([]bar, 0, len(cs))
	for _, c := range cs {
		b := bar{Label: c.Label, Count: c.Count}
		if peak > 0 {
			b.Pct = 100 * float64(c.Count) / float64(peak)
		}
		out = append(out, b)
	}
	return out
}
