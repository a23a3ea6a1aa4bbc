package region

import "sort"

// MismatchKind：两侧数据命名不一致的类别
type MismatchKind string

const (
	// 边界要素名称不在行政区枚举内（例如旧称 Orissa、Uttaranchal）
	UnknownBoundaryName MismatchKind = "unknown_boundary_name"
	// 有聚合数据的行政区在边界数据中没有对应要素，地图上不会出现该区
	MissingBoundary MismatchKind = "missing_boundary"
)

// Mismatch：一条命名不一致记录
type Mismatch struct {
	Kind MismatchKind `json:"kind"`
	Name string       `json:"name"`
}

// Reconcile：对照边界要素名与有数据的行政区，返回全部不一致项
// 约束：结果按类别、名称排序，同名边界要素只报告一次
func Reconcile(boundaryNames []string, summarized []ID) []Mismatch {
	var out []Mismatch
	seen := make(map[ID]bool, len(boundaryNames))
	reported := make(map[string]bool)
	for _, n := range boundaryNames {
		id, ok := Lookup(n)
		if !ok {
			if !reported[n] {
				reported[n] = true
				out = append(out, Mismatch{Kind: UnknownBoundaryName, Name: n})
			}
			continue
		}
		seen[id] = true
	}
	for _, id := range summarized {
		if !seen[id] {
			out = append(out, Mismatch{Kind: MissingBoundary, Name: id.Name()})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out
}
