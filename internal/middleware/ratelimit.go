// 包 middleware：入口限流与管理接口来源白名单
package middleware

import (
	"net/http"
	"sync"
	"time"

	"usage-map/internal/logger"
)

// 文档注释：令牌桶限流（每秒）
// 背景：每次页面请求都会读取记录缓存并重新拉取边界数据，突发流量会直接打到边界源站；按配置开关限速。
// 约束：简化实现，每秒整体补满令牌，不做排队，超额请求直接返回 429。
type TokenBucket struct {
	capacity int
	tokens   int
	lastSec  int64
	now      func() time.Time
	mu       sync.Mutex
}

func NewTokenBucket(qps int) *TokenBucket {
	if qps <= 0 {
		qps = 1
	}
	return &TokenBucket{capacity: qps, tokens: qps, lastSec: time.Now().Unix(), now: time.Now}
}

func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	sec := tb.now().Unix()
	if tb.lastSec != sec {
		tb.lastSec = sec
		tb.tokens = tb.capacity
	}
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// RateLimit：enabled 为 false 时原样返回 next
func RateLimit(enabled bool, qps int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		tb := NewTokenBucket(qps)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !tb.Allow() {
				logger.L().Debug("rate_limited", "path", r.URL.Path)
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
