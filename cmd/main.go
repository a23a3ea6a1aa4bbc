// 程序入口：仅负责读取配置、初始化依赖并启动看板服务；页面与接口分别注册在 internal/dashboard 与 internal/api
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"usage-map/internal/api"
	"usage-map/internal/boundary"
	"usage-map/internal/config"
	"usage-map/internal/dashboard"
	"usage-map/internal/logger"
	"usage-map/internal/middleware"
	"usage-map/internal/migrate"
	"usage-map/internal/revgeo"
	"usage-map/internal/store"
	"usage-map/internal/usage"
	"usage-map/internal/utils"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	// 日志初始化
	l := logger.Setup()
	l.Debug("log_init_ok")

	cfg, err := config.Load()
	if err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}
	l.Debug("config_loaded", "addr", cfg.Addr, "api_base", cfg.APIBase, "record_ttl", cfg.RecordCacheTTL, "boundary_url", cfg.BoundaryURL)

	db, driver, err := utils.OpenRecordDBFromEnv()
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	l.Info("db_open_ok", "driver", driver)
	st, err := store.AttachDB(db, cfg.RecordTable)
	if err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}
	// 启动时记录库不可达不退出：页面以 503 呈现，待记录库恢复后自动可用
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := st.Ping(pingCtx); err != nil {
		l.Error("db_ping_error", "err", err)
	} else {
		l.Info("db_ping_ok")
		if cfg.AutoMigrate {
			if err := migrate.EnsureSchema(pingCtx, db, driver, st.Table()); err != nil {
				l.Error("schema_error", "err", err)
				os.Exit(1)
			}
		}
	}
	cancel()

	opts := usage.CacheOptions{TTL: cfg.RecordCacheTTL, Key: cfg.RecordCacheKey, Logger: l}
	if rc := utils.OpenRedisFromEnv(); rc == nil {
		l.Info("redis_disabled")
	} else {
		defer rc.Close()
		if err := rc.Ping(context.Background()).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
		}
		opts.KV = usage.NewRedisKV(rc)
	}
	records := usage.NewRecordCache(st, opts)
	boundaries := boundary.NewProvider(boundary.Options{
		URL:     cfg.BoundaryURL,
		NameKey: cfg.BoundaryNameKey,
		Timeout: cfg.BoundaryTimeout,
	})

	locator := revgeo.NewLocator(boundaries, revgeo.Options{
		CacheTTL:    cfg.LocateCacheTTL,
		MaxRadiusKm: cfg.LocateMaxRadiusKm,
	})

	allow := middleware.NewAllowlist(cfg.AdminAllowIPs, cfg.AdminAllowCIDRs, cfg.AdminAllowLocal, cfg.RealIPHeader)

	svc := dashboard.NewService(records, boundaries, 5)
	mux := http.NewServeMux()
	dashboard.NewPages(svc, cfg.DefaultMetric, 600).Register(mux)
	api.Register(mux, svc, st, api.Options{
		Base:          cfg.APIBase,
		AdminToken:    cfg.AdminToken,
		AdminAllow:    allow,
		DefaultMetric: cfg.DefaultMetric,
		Locator:       locator,
	})

	handler := middleware.RateLimit(cfg.RateLimitEnabled, cfg.RateLimitQPS)(mux)
	handler = logger.AccessMiddleware(l)(handler)
	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// 写超时需覆盖一次冷启动渲染：记录查询 + 边界拉取
		WriteTimeout: cfg.BoundaryTimeout + time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 1)
	go func() {
		if cfg.TLSEnable {
			host := strings.TrimSuffix(cfg.Addr, ":"+portOf(cfg.Addr))
			if host == "" {
				host = "usage-map.local"
			}
			if err := utils.EnsureSelfSignedCert(cfg.TLSCertPath, cfg.TLSKeyPath, host); err != nil {
				errCh <- err
				return
			}
			l.Info("listening_tls", "addr", cfg.Addr, "cert", cfg.TLSCertPath)
			errCh <- s.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
			return
		}
		l.Info("listening", "addr", cfg.Addr)
		errCh <- s.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("serve_error", "err", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		l.Info("shutdown_begin")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			l.Error("shutdown_error", "err", err)
		}
		l.Info("shutdown_done")
	}
}

func portOf(addr string) string {
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		return addr[i+1:]
	}
	return ""
}
