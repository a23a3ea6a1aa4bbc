package aggregate

import (
	"sort"
	"strconv"
	"strings"

	"usage-map/internal/usage"
)

// Count：柱状图的一根柱
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Distributions：看板“使用模式”区域的分布数据，直接取自原始记录（含未归属到邦的记录）
type Distributions struct {
	Age    []Count `json:"age"`
	Gender []Count `json:"gender"`
	Brands []Count `json:"brands"`
}

// Overview：侧栏关键指标
type Overview struct {
	Records        int          `json:"records"`
	Users          int          `json:"users"`
	MeanScreenTime usage.Metric `json:"mean_screen_time"`
}

// Distribute：年龄、性别、品牌分布；topBrands<=0 时返回全部品牌
func Distribute(records []usage.UsageRecord, topBrands int) Distributions {
	var ages, genders, brands counter
	for _, r := range records {
		ages.add(r.Age)
		genders.add(r.Gender)
		brands.add(r.PhoneBrand)
	}
	d := Distributions{
		Age:    ages.byAge(),
		Gender: genders.byCount(),
		Brands: brands.byCount(),
	}
	if topBrands > 0 && len(d.Brands) > topBrands {
		d.Brands = d.Brands[:topBrands]
	}
	return d
}

// Overall：全部记录的用户数与平均屏幕时长
func Overall(records []usage.UsageRecord) Overview {
	o := Overview{Records: len(records)}
	users := make(map[string]struct{})
	var sum float64
	var n int
	for _, r := range records {
		if r.UserID != "" {
			users[r.UserID] = struct{}{}
		}
		if r.ScreenTime.Valid {
			sum += r.ScreenTime.Value
			n++
		}
	}
	o.Users = len(users)
	if n > 0 {
		o.MeanScreenTime = usage.Num(sum / float64(n))
	}
	return o
}

type counter struct {
	n     map[string]int
	order []string
}

func (c *counter) add(v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	if c.n == nil {
		c.n = make(map[string]int)
	}
	if _, ok := c.n[v]; !ok {
		c.order = append(c.order, v)
	}
	c.n[v]++
}

func (c *counter) list() []Count {
	out := make([]Count, 0, len(c.order))
	for _, v := range c.order {
		out = append(out, Count{Label: v, Count: c.n[v]})
	}
	return out
}

// 次数降序，并列保持首次出现顺序
func (c *counter) byCount() []Count {
	out := c.list()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// 按年龄数值升序，无法解析的标签排在最后并按字典序
func (c *counter) byAge() []Count {
	out := c.list()
	sort.SliceStable(out, func(i, j int) bool {
		a, errA := strconv.ParseFloat(out[i].Label, 64)
		b, errB := strconv.ParseFloat(out[j].Label, 64)
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		return out[i].Label < out[j].Label
	})
	return out
}
