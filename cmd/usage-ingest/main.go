// 数据导入工具：把调查导出文件（CSV/XLSX）批量写入记录表
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"usage-map/internal/ingest"
	"usage-map/internal/logger"
	"usage-map/internal/migrate"
	"usage-map/internal/store"
	"usage-map/internal/utils"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()

	src := os.Getenv("INGEST_FILE")
	if len(os.Args) > 1 {
		src = os.Args[1]
	}
	if src == "" {
		fmt.Fprintln(os.Stderr, "usage: usage-ingest <survey.csv|survey.xlsx>  (or INGEST_FILE)")
		os.Exit(2)
	}

	db, driver, err := utils.OpenRecordDBFromEnv()
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	st, err := store.AttachDB(db, os.Getenv("RECORD_TABLE"))
	if err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := st.Ping(ctx); err != nil {
		l.Error("db_ping_error", "err", err)
		os.Exit(1)
	}
	if err := migrate.EnsureSchema(ctx, db, driver, st.Table()); err != nil {
		l.Error("schema_error", "err", err)
		os.Exit(1)
	}

	opts := ingest.Options{
		Driver:   driver,
		Table:    st.Table(),
		Truncate: os.Getenv("INGEST_TRUNCATE") == "true",
	}
	if n, e := strconv.Atoi(os.Getenv("INGEST_BATCH")); e == nil && n > 0 {
		opts.BatchSize = n
	}
	sheet := os.Getenv("INGEST_SHEET")

	job := func(ctx context.Context) error {
		f, err := os.Open(src)
		if err != nil {
			return err
		}
		defer f.Close()
		tbl, err := ingest.ReadFile(src, f, sheet)
		if err != nil {
			return err
		}
		n, err := ingest.Import(ctx, db, tbl, opts)
		if err != nil {
			return err
		}
		l.Info("ingest_file_ok", "file", src, "rows", n)
		return nil
	}

	if every := os.Getenv("INGEST_EVERY"); every != "" {
		d, err := time.ParseDuration(every)
		if err != nil || d <= 0 {
			l.Error("config_error", "INGEST_EVERY", every)
			os.Exit(2)
		}
		// 周期模式需要每次全量替换，否则重复导入会产生重复行
		opts.Truncate = true
		ingest.Every(ctx, d, job)
		return
	}
	if err := job(ctx); err != nil {
		l.Error("ingest_error", "err", err)
		os.Exit(1)
	}
}
