// 包 config：从环境变量读取看板运行参数（.env 由入口通过 godotenv 预先加载）
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"usage-map/internal/boundary"
	"usage-map/internal/store"
	"usage-map/internal/usage"
)

// Config：看板服务配置
type Config struct {
	Addr    string
	APIBase string

	RecordTable    string
	RecordCacheTTL time.Duration
	RecordCacheKey string
	AutoMigrate    bool

	BoundaryURL     string
	BoundaryNameKey string
	BoundaryTimeout time.Duration

	DefaultMetric usage.Field
	AdminToken    string

	// 管理接口来源白名单，均为空时不限制
	AdminAllowIPs   []string
	AdminAllowCIDRs []string
	AdminAllowLocal bool
	RealIPHeader    string

	LocateCacheTTL    time.Duration
	LocateMaxRadiusKm float64

	RateLimitEnabled bool
	RateLimitQPS     int

	TLSEnable   bool
	TLSCertPath string
	TLSKeyPath  string
}

// Load：读取环境变量并填充缺省值
// 异常：时长与数值无法解析、指标名不在允许列表内时返回错误，避免以意外的缺省值静默启动
func Load() (*Config, error) {
	c := &Config{
		Addr:            getenv("ADDR", ":8080"),
		APIBase:         strings.TrimSuffix(getenv("API_BASE", "/api"), "/"),
		RecordTable:     getenv("RECORD_TABLE", store.DefaultTable),
		RecordCacheKey:  getenv("RECORD_CACHE_KEY", usage.DefaultKey),
		AutoMigrate:     os.Getenv("AUTO_MIGRATE") == "true",
		BoundaryURL:     getenv("BOUNDARY_URL", boundary.DefaultURL),
		BoundaryNameKey: getenv("BOUNDARY_NAME_KEY", boundary.DefaultNameKey),
		AdminToken:      os.Getenv("ADMIN_TOKEN"),
		TLSEnable:       os.Getenv("TLS_ENABLE") == "true",
		TLSCertPath:     getenv("TLS_CERT_PATH", "data/certs/server.crt"),
		TLSKeyPath:      getenv("TLS_KEY_PATH", "data/certs/server.key"),
	}
	c.RateLimitEnabled = os.Getenv("RATE_LIMIT_ENABLED") == "true"
	c.AdminAllowIPs = listEnv("ADMIN_ALLOW_IPS")
	c.AdminAllowCIDRs = listEnv("ADMIN_ALLOW_CIDRS")
	c.AdminAllowLocal = os.Getenv("ADMIN_ALLOW_LOCAL") == "true"
	c.RealIPHeader = os.Getenv("REAL_IP_HEADER")
	var err error
	if c.RecordCacheTTL, err = durationEnv("RECORD_CACHE_TTL", usage.DefaultTTL); err != nil {
		return nil, err
	}
	if c.BoundaryTimeout, err = durationEnv("BOUNDARY_TIMEOUT", 20*time.Second); err != nil {
		return nil, err
	}
	if c.RateLimitQPS, err = intEnv("RATE_LIMIT_QPS", 200); err != nil {
		return nil, err
	}
	if c.LocateCacheTTL, err = durationEnv("REVERSE_GEO_CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}
	c.LocateMaxRadiusKm = 50
	if v := strings.TrimSpace(os.Getenv("REVERSE_GEO_RADIUS_KM")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return nil, fmt.Errorf("config: REVERSE_GEO_RADIUS_KM=%q is not a positive number", v)
		}
		c.LocateMaxRadiusKm = f
	}
	m, ok := usage.ParseField(getenv("DEFAULT_METRIC", string(usage.ScreenTime)))
	if !ok {
		return nil, fmt.Errorf("config: DEFAULT_METRIC %q is not a usage metric", os.Getenv("DEFAULT_METRIC"))
	}
	c.DefaultMetric = m
	return c, nil
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// listEnv：逗号分隔列表，去除空白项
func listEnv(k string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(k), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func durationEnv(k string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	// 纯数字按秒处理
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("config: %s=%q is not a positive duration", k, v)
	}
	return d, nil
}

func intEnv(k string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("config: %s=%q is not a positive integer", k, v)
	}
	return n, nil
}
