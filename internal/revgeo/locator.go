// 包 revgeo：坐标反查行政区（地图点击定位）
package revgeo

import (
	"context"
	"errors"
	"time"

	"usage-map/internal/boundary"
	"usage-map/internal/logger"
	"usage-map/internal/region"
)

// ErrOutOfRange：经纬度超出合法范围
var ErrOutOfRange = errors.New("coordinates out of range")

// BoundarySource：边界数据读取（boundary.Provider）
type BoundarySource interface {
	Fetch(ctx context.Context) (*boundary.Collection, error)
}

// Result：反查结果
type Result struct {
	// Name 为边界要素名；近似命中时为锚点所属行政区名
	Name   string    `json:"name,omitempty"`
	Region region.ID `json:"region,omitempty"`
	Found  bool      `json:"found"`
	// Approx 表示非多边形命中（最近锚点兜底）
	Approx     bool    `json:"approx"`
	DistanceKm float64 `json:"distance_km,omitempty"`
}

// Options：定位参数
type Options struct {
	CacheSize   int
	CacheTTL    time.Duration
	MaxRadiusKm float64
}

// Locator：多边形命中 -> 最近锚点兜底
type Locator struct {
	src       BoundarySource
	cache     *LRU
	kd        *kdNode
	maxRadius float64
}

func NewLocator(src BoundarySource, opts Options) *Locator {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 4096
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	if opts.MaxRadiusKm <= 0 {
		opts.MaxRadiusKm = 50
	}
	var as []anchor
	for _, id := range region.All() {
		if p, ok := id.Anchor(); ok {
			as = append(as, anchor{ID: id, Pos: p})
		}
	}
	return &Locator{src: src, cache: NewLRU(opts.CacheSize, opts.CacheTTL), kd: buildKD(as, 0), maxRadius: opts.MaxRadiusKm}
}

// Locate：坐标反查行政区
// 约束：结果按 geohash(6) 缓存；缓存未命中时才拉取边界数据
// 异常：坐标越界返回 ErrOutOfRange；边界拉取失败返回 *boundary.FetchError
func (l *Locator) Locate(ctx context.Context, lat, lon float64) (Result, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Result{}, ErrOutOfRange
	}
	key := encodeGeohash(lat, lon, 6)
	if v, ok := l.cache.Get(key); ok {
		return v, nil
	}
	col, err := l.src.Fetch(ctx)
	if err != nil {
		return Result{}, err
	}
	var res Result
	if f, ok := containing(col, boundary.Point{Lat: lat, Lon: lon}); ok {
		res = Result{Name: f.Name, Found: true}
		if id, ok := region.Lookup(f.Name); ok {
			res.Region = id
		}
	} else if l.kd != nil {
		a, d := nearest(l.kd, lat, lon)
		if d <= l.maxRadius {
			res = Result{Name: a.ID.Name(), Region: a.ID, Found: true, Approx: true, DistanceKm: d}
		}
	}
	l.cache.Set(key, res)
	logger.L().Debug("locate_ok", "geohash", key, "name", res.Name, "approx", res.Approx)
	return res, nil
}
