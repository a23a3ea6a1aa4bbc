// 包 aggregate：按邦聚合调查记录，并为看板图表生成分布统计
package aggregate

import (
	"sort"

	"usage-map/internal/region"
	"usage-map/internal/usage"
)

// RegionSummary：单个行政区的聚合结果
type RegionSummary struct {
	Region         region.ID    `json:"region"`
	Name           string       `json:"name"`
	MeanScreenTime usage.Metric `json:"mean_screen_time"`
	Users          int          `json:"users"`
	TopUsage       string       `json:"top_usage"`
	Records        int          `json:"records"`
	// 其余指标的均值，供地图切换着色指标
	Means map[usage.Field]usage.Metric `json:"means"`
}

// Mean：按字段取均值
func (s RegionSummary) Mean(f usage.Field) usage.Metric {
	if f == usage.ScreenTime {
		return s.MeanScreenTime
	}
	return s.Means[f]
}

// Result：一次聚合的输出
type Result struct {
	Summaries []RegionSummary `json:"summaries"`
	// 城市无法归属到邦的记录数
	Unmapped int `json:"unmapped"`
	// 各指标字段的缺失（无法解析）值数量
	Coercion map[usage.Field]int `json:"coercion"`
}

// Regions：有聚合数据的行政区 ID
func (r Result) Regions() []region.ID {
	out := make([]region.ID, 0, len(r.Summaries))
	for _, s := range r.Summaries {
		out = append(out, s.Region)
	}
	return out
}

// Find：按行政区查找聚合行
func (r Result) Find(id region.ID) (RegionSummary, bool) {
	for _, s := range r.Summaries {
		if s.Region == id {
			return s, true
		}
	}
	return RegionSummary{}, false
}

type acc struct {
	sums     map[usage.Field]float64
	counts   map[usage.Field]int
	users    map[string]struct{}
	uses     map[string]int
	useOrder []string
	records  int
}

func newAcc() *acc {
	return &acc{
		sums:   make(map[usage.Field]float64, len(usage.Fields)),
		counts: make(map[usage.Field]int, len(usage.Fields)),
		users:  make(map[string]struct{}),
		uses:   make(map[string]int),
	}
}

func (a *acc) add(r usage.UsageRecord) {
	a.records++
	for _, f := range usage.Fields {
		if m := r.Metric(f); m.Valid {
			a.sums[f] += m.Value
			a.counts[f]++
		}
	}
	if r.UserID != "" {
		a.users[r.UserID] = struct{}{}
	}
	if r.PrimaryUse != "" {
		if _, ok := a.uses[r.PrimaryUse]; !ok {
			a.useOrder = append(a.useOrder, r.PrimaryUse)
		}
		a.uses[r.PrimaryUse]++
	}
}

func (a *acc) mean(f usage.Field) usage.Metric {
	if a.counts[f] == 0 {
		return usage.Missing
	}
	return usage.Num(a.sums[f] / float64(a.counts[f]))
}

// 出现次数最多者；并列时取最先出现的值
func (a *acc) mode() string {
	best, bestN := "", 0
	for _, v := range a.useOrder {
		if n := a.uses[v]; n > bestN {
			best, bestN = v, n
		}
	}
	return best
}

// Summarize：按邦聚合
// 背景：城市经 region.StateForCity 归属到邦，无法归属的记录不参与分组（仍用于图表）
// 约束：缺失指标不参与均值；没有记录的行政区不产生聚合行；输出按行政区名称排序
func Summarize(records []usage.UsageRecord) Result {
	res := Result{Coercion: make(map[usage.Field]int, len(usage.Fields))}
	groups := make(map[region.ID]*acc)
	for _, r := range records {
		for _, f := range usage.Fields {
			if !r.Metric(f).Valid {
				res.Coercion[f]++
			}
		}
		id, ok := region.StateForCity(r.Location)
		if !ok {
			res.Unmapped++
			continue
		}
		g, ok := groups[id]
		if !ok {
			g = newAcc()
			groups[id] = g
		}
		g.add(r)
	}
	for id, g := range groups {
		s := RegionSummary{
			Region:         id,
			Name:           id.Name(),
			MeanScreenTime: g.mean(usage.ScreenTime),
			Users:          len(g.users),
			TopUsage:       g.mode(),
			Records:        g.records,
			Means:          make(map[usage.Field]usage.Metric, len(usage.Fields)-1),
		}
		for _, f := range usage.Fields[1:] {
			s.Means[f] = g.mean(f)
		}
		res.Summaries = append(res.Summaries, s)
	}
	sort.Slice(res.Summaries, func(i, j int) bool { return res.Summaries[i].Name < res.Summaries[j].Name })
	return res
}
