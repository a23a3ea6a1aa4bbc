// 包 logger：HTTP 访问日志中间件，记录方法、路由、状态、耗时与字节数，并同步到请求指标
package logger

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"usage-map/internal/metrics"
)

// statusWriter：包装 ResponseWriter 以捕获状态码与写出字节数
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// AccessMiddleware：生成访问日志中间件
// 背景：看板渲染耗时主要来自记录查询与边界拉取，按路径统计便于区分缓存命中与冷启动渲染
// 约束：5xx 以 warn 级别输出，其余为 debug；不读取请求体
func AccessMiddleware(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(sw, r)
			dur := time.Since(start)
			// ServeMux 在匹配后回写 r.Pattern；未匹配的路径统一归类，避免指标标签膨胀
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(sw.status)).Inc()
			metrics.HTTPDurationMs.WithLabelValues(route).Observe(float64(dur.Milliseconds()))
			lvl := slog.LevelDebug
			if sw.status >= http.StatusInternalServerError {
				lvl = slog.LevelWarn
			}
			l.Log(r.Context(), lvl, "http_access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"bytes", sw.bytes,
				"duration_ms", dur.Milliseconds(),
				"ip", r.RemoteAddr,
			)
		})
	}
}
