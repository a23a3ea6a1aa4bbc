package boundary

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"usage-map/internal/logger"
	"usage-map/internal/metrics"
)

// DefaultURL：印度邦级边界 GeoJSON
const DefaultURL = "https://raw.githubusercontent.com/Subhash9325/GeoJson-Data-of-Indian-States/master/Indian_States"

// FetchError：边界数据不可达或格式错误，对当次渲染是致命错误
type FetchError struct {
	URL    string
	Stage  string // request / status / decode
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Stage == "status" {
		return fmt.Sprintf("boundary fetch %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("boundary fetch %s: %s: %v", e.URL, e.Stage, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Options：边界拉取参数
type Options struct {
	URL     string
	NameKey string
	Timeout time.Duration
}

// Provider：每次调用都重新拉取边界数据，不缓存、不重试
type Provider struct {
	client  *resty.Client
	url     string
	nameKey string
}

func NewProvider(opts Options) *Provider {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.NameKey == "" {
		opts.NameKey = DefaultNameKey
	}
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/geo+json, application/json, text/plain")
	return &Provider{client: client, url: opts.URL, nameKey: opts.NameKey}
}

// Fetch：拉取并解析边界数据
// 异常：网络错误、非 2xx 状态、JSON 解析失败均返回 *FetchError
func (p *Provider) Fetch(ctx context.Context) (*Collection, error) {
	t0 := time.Now()
	l := logger.L()
	l.Debug("boundary_fetch_begin", "url", p.url)
	resp, err := p.client.R().SetContext(ctx).Get(p.url)
	if err != nil {
		return nil, p.fail(&FetchError{URL: p.url, Stage: "request", Err: err})
	}
	if !resp.IsSuccess() {
		return nil, p.fail(&FetchError{URL: p.url, Stage: "status", Status: resp.StatusCode()})
	}
	col, err := Parse(resp.Body(), p.nameKey)
	if err != nil {
		return nil, p.fail(&FetchError{URL: p.url, Stage: "decode", Err: err})
	}
	col.Source = p.url
	col.FetchedAt = time.Now()
	dur := time.Since(t0).Milliseconds()
	metrics.BoundaryFetchDurationMs.Observe(float64(dur))
	l.Info("boundary_fetch_ok", "features", len(col.Features), "bytes", len(resp.Body()), "duration_ms", dur)
	return col, nil
}

func (p *Provider) fail(e *FetchError) error {
	metrics.BoundaryFetchFailTotal.Inc()
	logger.L().Error("boundary_fetch_error", "url", e.URL, "stage", e.Stage, "status", e.Status, "err", e.Err)
	return e
}
