package revgeo

import (
	"math"

	"usage-map/internal/region"
)

// anchor：行政区锚点，最近邻兜底的候选
type anchor struct {
	ID  region.ID
	Pos region.Point
}

// 文档注释：KD-Tree 最近邻（二维经纬）
// 背景：点不在任何边界多边形内（近海、边界缝隙、几何缺失）时，按最近的行政区锚点近似归属
// 约束：经度/纬度交替分割；只查询最近一个点
type kdNode struct {
	a    anchor
	axis int // 0:lon 1:lat
	l, r *kdNode
}

func buildKD(as []anchor, depth int) *kdNode {
	if len(as) == 0 {
		return nil
	}
	axis := depth % 2
	mid := len(as) / 2
	selectNth(as, mid, axis)
	n := &kdNode{a: as[mid], axis: axis}
	n.l = buildKD(as[:mid], depth+1)
	n.r = buildKD(as[mid+1:], depth+1)
	return n
}

func coord(a anchor, axis int) float64 {
	if axis == 0 {
		return a.Pos.Lon
	}
	return a.Pos.Lat
}

// 原地选择第 n 小（Lomuto 划分）
func selectNth(a []anchor, n, axis int) {
	lo, hi := 0, len(a)-1
	for lo < hi {
		p := (lo + hi) / 2
		pv := coord(a[p], axis)
		a[p], a[hi] = a[hi], a[p]
		i := lo
		for j := lo; j < hi; j++ {
			if coord(a[j], axis) < pv {
				a[i], a[j] = a[j], a[i]
				i++
			}
		}
		a[i], a[hi] = a[hi], a[i]
		switch {
		case i == n:
			return
		case n < i:
			hi = i - 1
		default:
			lo = i + 1
		}
	}
}

// nearest：返回最近锚点与距离（千米）
func nearest(root *kdNode, lat, lon float64) (anchor, float64) {
	var best anchor
	bestD := math.MaxFloat64
	var walk func(n *kdNode)
	walk = func(n *kdNode) {
		if n == nil {
			return
		}
		if d := haversine(lat, lon, n.a.Pos.Lat, n.a.Pos.Lon); d < bestD {
			best, bestD = n.a, d
		}
		key := lon
		if n.axis == 1 {
			key = lat
		}
		split := coord(n.a, n.axis)
		first, second := n.l, n.r
		if key > split {
			first, second = n.r, n.l
		}
		walk(first)
		// 1 度约 111km；分割面比当前最优更远时跳过另一侧
		if math.Abs(key-split) < bestD/111.0 {
			walk(second)
		}
	}
	walk(root)
	return best, bestD
}

// 球面距离（Haversine），千米
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const earthKm = 6371.0
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
