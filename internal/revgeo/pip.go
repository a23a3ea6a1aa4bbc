package revgeo

import "usage-map/internal/boundary"

// 文档注释：点入多边形判定（Even-Odd）
// 约束：第一环为外环，其余为洞；点落在洞内视为未命中
func pointInPoly(pt boundary.Point, poly boundary.Polygon) bool {
	if len(poly.Rings) == 0 || !pointInRing(pt, poly.Rings[0]) {
		return false
	}
	for _, hole := range poly.Rings[1:] {
		if pointInRing(pt, hole) {
			return false
		}
	}
	return true
}

// 射线法；分母加极小量避免水平边除零
func pointInRing(pt boundary.Point, ring []boundary.Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	x, y := pt.Lon, pt.Lat
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].Lon, ring[i].Lat
		xj, yj := ring[j].Lon, ring[j].Lat
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi+1e-12)+xi {
			inside = !inside
		}
	}
	return inside
}

// 包围盒过滤：minLon, minLat, maxLon, maxLat
func inBBox(pt boundary.Point, b [4]float64) bool {
	return pt.Lon >= b[0] && pt.Lon <= b[2] && pt.Lat >= b[1] && pt.Lat <= b[3]
}

// containing：返回包含该点的第一个要素
func containing(col *boundary.Collection, pt boundary.Point) (boundary.Feature, bool) {
	for _, f := range col.Features {
		for _, p := range f.Polys {
			if inBBox(pt, p.BBox) && pointInPoly(pt, p) {
				return f, true
			}
		}
	}
	return boundary.Feature{}, false
}
