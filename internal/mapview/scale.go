package mapview

import "slices"

// YlOrRd：ColorBrewer 六级黄-橙-红色阶
var YlOrRd = []string{"#ffffb2", "#fed976", "#feb24c", "#fd8d3c", "#f03b20", "#bd0026"}

// NeutralFill：没有数据的行政区填充色
const NeutralFill = "#d9d9d9"

// Scale：在 [min, max] 上等宽分箱的色阶
type Scale struct {
	Edges  []float64 `json:"edges"`
	Colors []string  `json:"colors"`
}

// NewScale：按取值范围生成 len(colors) 个等宽分箱；values 为空时返回空色阶
func NewScale(values []float64, colors []string) Scale {
	if len(values) == 0 || len(colors) == 0 {
		return Scale{}
	}
	lo, hi := slices.Min(values), slices.Max(values)
	n := len(colors)
	edges := make([]float64, n+1)
	for i := range edges {
		edges[i] = lo + (hi-lo)*float64(i)/float64(n)
	}
	edges[n] = hi
	return Scale{Edges: edges, Colors: colors}
}

// Color：取值所在分箱的颜色；空色阶返回 NeutralFill，超出上界归入最后一箱
func (s Scale) Color(v float64) string {
	if len(s.Colors) == 0 {
		return NeutralFill
	}
	for i := range s.Colors {
		if v < s.Edges[i+1] {
			return s.Colors[i]
		}
	}
	return s.Colors[len(s.Colors)-1]
}
