// 包 boundary：邦级行政边界（GeoJSON）拉取与解析
package boundary

import (
	"encoding/json"
	"time"
)

// 文档注释：边界要素的最小数据结构
// 背景：地图渲染需要原样的几何对象；包围盒用于计算地图视野
// 约束：几何仅解析 Polygon/MultiPolygon；第一环为外环，其余为洞
type Feature struct {
	Name       string
	Properties map[string]any
	// 原样保留的 geometry，渲染时直接嵌入页面
	Geometry json.RawMessage
	Polys    []Polygon
}

// Polygon：按 GeoJSON 约定的环集合
type Polygon struct {
	Rings [][]Point
	BBox  [4]float64 // minLon, minLat, maxLon, maxLat
}

// Point：WGS84 坐标
type Point struct {
	Lat float64
	Lon float64
}

// Collection：一次拉取得到的全部要素，只读
type Collection struct {
	Features  []Feature
	Source    string
	FetchedAt time.Time
}

// Names：全部要素名称，顺序与要素一致
func (c *Collection) Names() []string {
	out := make([]string, 0, len(c.Features))
	for _, f := range c.Features {
		out = append(out, f.Name)
	}
	return out
}

// BBox：全部要素的合并包围盒；没有可用几何时第二返回值为 false
func (c *Collection) BBox() ([4]float64, bool) {
	b := [4]float64{180, 90, -180, -90}
	ok := false
	for _, f := range c.Features {
		for _, p := range f.Polys {
			if len(p.Rings) == 0 || len(p.Rings[0]) == 0 {
				continue
			}
			ok = true
			b[0] = min(b[0], p.BBox[0])
			b[1] = min(b[1], p.BBox[1])
			b[2] = max(b[2], p.BBox[2])
			b[3] = max(b[3], p.BBox[3])
		}
	}
	return b, ok
}
