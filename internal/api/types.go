package api

import (
	"time"

	"usage-map/internal/aggregate"
	"usage-map/internal/region"
	"usage-map/internal/revgeo"
	"usage-map/internal/usage"
)

// 文档注释：/summary 返回结构（对外）
// 约束：boundary_error 非空时 mismatches 为空，表示边界数据不可用而非命名一致
type summaryResponse struct {
	Metric        usage.Field               `json:"metric"`
	FetchedAt     time.Time                 `json:"fetched_at"`
	Summaries     []aggregate.RegionSummary `json:"summaries"`
	Mismatches    []region.Mismatch         `json:"mismatches"`
	Coercion      map[usage.Field]int       `json:"coercion"`
	Unmapped      int                       `json:"unmapped"`
	Overview      aggregate.Overview        `json:"overview"`
	Distributions aggregate.Distributions   `json:"distributions"`
	BoundaryError string                    `json:"boundary_error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// 文档注释：/locate 返回结构；坐标所在行政区无数据时 summary 为 null
type locateResponse struct {
	revgeo.Result
	Summary *aggregate.RegionSummary `json:"summary"`
}
