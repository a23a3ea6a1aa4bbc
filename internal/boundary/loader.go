package boundary

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DefaultNameKey：要素名称所在的属性键
const DefaultNameKey = "NAME_1"

var errNotFeatureCollection = errors.New("document is not a FeatureCollection")

type rawCollection struct {
	Type     string       `json:"type"`
	Features []rawFeature `json:"features"`
}

type rawFeature struct {
	Type       string          `json:"type"`
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

// Parse：解析 GeoJSON FeatureCollection
// 背景：边界数据源是静态的 GeoJSON 文件，名称取自 nameKey 属性（缺省 NAME_1）
// 约束：顶层必须是 FeatureCollection；单个要素几何无法解析时保留要素但不带多边形，地图仍为其放置标记
func Parse(b []byte, nameKey string) (*Collection, error) {
	if nameKey == "" {
		nameKey = DefaultNameKey
	}
	var raw rawCollection
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	if !strings.EqualFold(raw.Type, "FeatureCollection") {
		return nil, errNotFeatureCollection
	}
	col := &Collection{Features: make([]Feature, 0, len(raw.Features))}
	for _, rf := range raw.Features {
		f := Feature{
			Name:       getStr(rf.Properties, nameKey),
			Properties: rf.Properties,
			Geometry:   rf.Geometry,
		}
		var g map[string]any
		if len(rf.Geometry) > 0 && json.Unmarshal(rf.Geometry, &g) == nil && g != nil {
			addPolysFromGeometry(&f, g)
		}
		col.Features = append(col.Features, f)
	}
	return col, nil
}

func addPolysFromGeometry(f *Feature, g map[string]any) {
	coords, ok := g["coordinates"].([]any)
	if !ok {
		return
	}
	switch strings.ToLower(getStr(g, "type")) {
	case "polygon":
		f.Polys = append(f.Polys, parsePolygon(coords))
	case "multipolygon":
		for _, part := range coords {
			if rings, ok := part.([]any); ok {
				f.Polys = append(f.Polys, parsePolygon(rings))
			}
		}
	}
}

func parsePolygon(rings []any) Polygon {
	var poly Polygon
	for _, ring := range rings {
		arr, ok := ring.([]any)
		if !ok {
			continue
		}
		var rr []Point
		for _, p := range arr {
			if vv, ok := p.([]any); ok && len(vv) >= 2 {
				rr = append(rr, Point{Lat: toFloat(vv[1]), Lon: toFloat(vv[0])})
			}
		}
		poly.Rings = append(poly.Rings, rr)
	}
	poly.BBox = computeBBox(poly)
	return poly
}

func computeBBox(p Polygon) [4]float64 {
	b := [4]float64{180, 90, -180, -90}
	for _, r := range p.Rings {
		for _, pt := range r {
			b[0] = min(b[0], pt.Lon)
			b[1] = min(b[1], pt.Lat)
			b[2] = max(b[2], pt.Lon)
			b[3] = max(b[3], pt.Lat)
		}
	}
	return b
}

func getStr(m map[string]any, k string) string {
	switch v := m[k].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func toFloat(v any) float64 {
	if x, ok := v.(float64); ok {
		return x
	}
	return 0
}
