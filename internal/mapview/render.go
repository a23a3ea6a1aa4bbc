// 包 mapview：把聚合结果与边界数据组合成分级设色地图（choropleth + 每区一个标记）
package mapview

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"usage-map/internal/aggregate"
	"usage-map/internal/boundary"
	"usage-map/internal/logger"
	"usage-map/internal/metrics"
	"usage-map/internal/region"
	"usage-map/internal/usage"
)

// Options：渲染参数
type Options struct {
	Metric usage.Field
	Center region.Point
	Zoom   int
}

// Icon：标记图标样式
type Icon struct {
	Color  string `json:"color"`
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
}

var (
	dataIcon   = Icon{Color: "green", Name: "mobile", Prefix: "fa"}
	noDataIcon = Icon{Color: "blue", Name: "info-sign", Prefix: "glyphicon"}
)

// Marker：一个行政区标记
type Marker struct {
	Region   region.ID    `json:"region,omitempty"`
	Name     string       `json:"name"`
	Position region.Point `json:"position"`
	Popup    string       `json:"popup"`
	Tooltip  string       `json:"tooltip"`
	Icon     Icon         `json:"icon"`
	HasData  bool         `json:"has_data"`
}

// Shape：一个着色多边形
type Shape struct {
	Region      region.ID       `json:"region,omitempty"`
	Name        string          `json:"name"`
	Geometry    json.RawMessage `json:"geometry"`
	Fill        string          `json:"fill"`
	FillOpacity float64         `json:"fill_opacity"`
	Value       usage.Metric    `json:"value"`
}

// Legend：色阶图例
type Legend struct {
	Title string `json:"title"`
	Scale
}

// Artifact：一次渲染的完整地图，每次请求重新构建，不缓存
type Artifact struct {
	Center     region.Point      `json:"center"`
	Zoom       int               `json:"zoom"`
	Metric     usage.Field       `json:"metric"`
	Legend     Legend            `json:"legend"`
	Shapes     []Shape           `json:"shapes"`
	Markers    []Marker          `json:"markers"`
	Mismatches []region.Mismatch `json:"mismatches"`
}

var metricTitles = map[usage.Field]string{
	usage.ScreenTime:      "Average Screen Time (hours/day)",
	usage.DataUsage:       "Average Data Usage (GB/month)",
	usage.SocialMediaTime: "Average Social Media Time (hours/day)",
	usage.StreamingTime:   "Average Streaming Time (hours/day)",
	usage.GamingTime:      "Average Gaming Time (hours/day)",
}

// MetricTitle：指标的图例标题
func MetricTitle(f usage.Field) string {
	if t, ok := metricTitles[f]; ok {
		return t
	}
	return string(f)
}

// Build：组合聚合结果与边界要素
// 背景：边界要素名按精确字符串解析为行政区 ID，再与聚合行对齐；解析不到的名称与缺少边界的聚合行记为 Mismatch
// 约束：每个边界要素恰好产生一个标记，无论是否有数据；标记位置取坐标表，缺失时为全国中心点
func Build(res aggregate.Result, col *boundary.Collection, opts Options) *Artifact {
	if opts.Metric == "" {
		opts.Metric = usage.ScreenTime
	}
	if opts.Center == (region.Point{}) {
		opts.Center = region.DefaultCenter
	}
	if opts.Zoom <= 0 {
		opts.Zoom = 5
	}
	byID := make(map[region.ID]aggregate.RegionSummary, len(res.Summaries))
	var values []float64
	for _, s := range res.Summaries {
		byID[s.Region] = s
		if m := s.Mean(opts.Metric); m.Valid {
			values = append(values, m.Value)
		}
	}
	scale := NewScale(values, YlOrRd)
	a := &Artifact{
		Center:  opts.Center,
		Zoom:    opts.Zoom,
		Metric:  opts.Metric,
		Legend:  Legend{Title: MetricTitle(opts.Metric), Scale: scale},
		Shapes:  make([]Shape, 0, len(col.Features)),
		Markers: make([]Marker, 0, len(col.Features)),
	}
	for _, f := range col.Features {
		id, known := region.Lookup(f.Name)
		s, found := byID[id]
		found = found && known

		shape := Shape{Name: f.Name, Geometry: f.Geometry, Fill: NeutralFill, FillOpacity: 0.3}
		if known {
			shape.Region = id
		}
		if found {
			if v := s.Mean(opts.Metric); v.Valid {
				shape.Value = v
				shape.Fill = scale.Color(v.Value)
				shape.FillOpacity = 0.6
			}
		}
		a.Shapes = append(a.Shapes, shape)

		m := Marker{Region: shape.Region, Name: f.Name, Position: region.Coordinates(f.Name), Tooltip: f.Name}
		if found {
			m.Popup = dataPopup(f.Name, s)
			m.Icon = dataIcon
			m.HasData = true
		} else {
			m.Popup = noDataPopup(f.Name)
			m.Icon = noDataIcon
		}
		a.Markers = append(a.Markers, m)
	}
	a.Mismatches = region.Reconcile(col.Names(), res.Regions())
	for _, mm := range a.Mismatches {
		metrics.RegionMismatchTotal.WithLabelValues(string(mm.Kind)).Inc()
		logger.L().Warn("region_name_mismatch", "kind", mm.Kind, "name", mm.Name)
	}
	return a
}

func popupHeader(b *strings.Builder, name string) {
	b.WriteString("<div style='width: 250px;'>")
	fmt.Fprintf(b, "<h4 style='color: #2e6da4; margin-bottom: 10px;'>%s</h4>", html.EscapeString(name))
}

func dataPopup(name string, s aggregate.RegionSummary) string {
	var b strings.Builder
	popupHeader(&b, name)
	screen := "n/a"
	if s.MeanScreenTime.Valid {
		screen = fmt.Sprintf("%.1f hrs", s.MeanScreenTime.Value)
	}
	top := s.TopUsage
	if top == "" {
		top = "n/a"
	}
	fmt.Fprintf(&b, "<p><b>Avg Screen Time:</b> %s</p>", screen)
	fmt.Fprintf(&b, "<p><b>Total Users:</b> %d</p>", s.Users)
	fmt.Fprintf(&b, "<p><b>Top Usage:</b> %s</p>", html.EscapeString(top))
	b.WriteString("</div>")
	return b.String()
}

func noDataPopup(name string) string {
	var b strings.Builder
	popupHeader(&b, name)
	b.WriteString("<p><b>No data available</b></p></div>")
	return b.String()
}
