// 包 dashboard：看板数据管线与页面渲染（记录缓存 -> 聚合 -> 边界 -> 地图）
package dashboard

import (
	"context"
	"sync"
	"time"

	"usage-map/internal/aggregate"
	"usage-map/internal/boundary"
	"usage-map/internal/logger"
	"usage-map/internal/mapview"
	"usage-map/internal/metrics"
	"usage-map/internal/usage"
)

// RecordSource：带缓存的记录读取（usage.RecordCache）
type RecordSource interface {
	Get(ctx context.Context) ([]usage.UsageRecord, error)
	Refresh(ctx context.Context) ([]usage.UsageRecord, error)
	FetchedAt() time.Time
}

// BoundarySource：边界数据读取（boundary.Provider）
type BoundarySource interface {
	Fetch(ctx context.Context) (*boundary.Collection, error)
}

// View：一次请求的全部看板数据
type View struct {
	Metric        usage.Field
	FetchedAt     time.Time
	Result        aggregate.Result
	Overview      aggregate.Overview
	Distributions aggregate.Distributions
	// Map 为 nil 时 MapErr 非空：边界拉取失败，图表仍可展示
	Map    *mapview.Artifact
	MapErr error
}

// Service：请求级管线，自身不缓存任何结果（只有 RecordSource 持有共享状态）
type Service struct {
	records    RecordSource
	boundaries BoundarySource
	topBrands  int

	mu         sync.Mutex
	reportedAt time.Time
}

func NewService(records RecordSource, boundaries BoundarySource, topBrands int) *Service {
	if topBrands <= 0 {
		topBrands = 5
	}
	return &Service{records: records, boundaries: boundaries, topBrands: topBrands}
}

// Records：透传缓存读取，供导出等只需要原始记录的场景
func (s *Service) Records(ctx context.Context) ([]usage.UsageRecord, error) {
	return s.records.Get(ctx)
}

// Refresh：强制刷新记录缓存
func (s *Service) Refresh(ctx context.Context) (int, error) {
	recs, err := s.records.Refresh(ctx)
	return len(recs), err
}

// Load：执行完整管线
// 约束：记录读取失败（ConnectivityError）直接返回错误；边界失败只记录在 View.MapErr，不返回部分地图
func (s *Service) Load(ctx context.Context, metric usage.Field) (*View, error) {
	recs, err := s.records.Get(ctx)
	if err != nil {
		metrics.RendersTotal.WithLabelValues("store_error").Inc()
		return nil, err
	}
	v := &View{
		Metric:        metric,
		FetchedAt:     s.records.FetchedAt(),
		Result:        aggregate.Summarize(recs),
		Overview:      aggregate.Overall(recs),
		Distributions: aggregate.Distribute(recs, s.topBrands),
	}
	s.reportWarnings(v)

	col, err := s.boundaries.Fetch(ctx)
	if err != nil {
		metrics.RendersTotal.WithLabelValues("boundary_error").Inc()
		v.MapErr = err
		return v, nil
	}
	v.Map = mapview.Build(v.Result, col, mapview.Options{Metric: metric})
	metrics.RendersTotal.WithLabelValues("ok").Inc()
	return v, nil
}

// reportWarnings：每个记录快照只上报一次解析缺失与未归属数量，避免每次渲染重复计数
func (s *Service) reportWarnings(v *View) {
	s.mu.Lock()
	if !v.FetchedAt.After(s.reportedAt) {
		s.mu.Unlock()
		return
	}
	s.reportedAt = v.FetchedAt
	s.mu.Unlock()

	l := logger.L()
	for _, f := range usage.Fields {
		if n := v.Result.Coercion[f]; n > 0 {
			metrics.CoercionWarningsTotal.WithLabelValues(string(f)).Add(float64(n))
			l.Warn("coercion_warning", "field", f, "missing", n)
		}
	}
	if v.Result.Unmapped > 0 {
		metrics.UnmappedRecordsTotal.Add(float64(v.Result.Unmapped))
		l.Info("records_unmapped", "count", v.Result.Unmapped)
	}
}
