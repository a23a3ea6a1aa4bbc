package ingest

import (
	"context"
	"time"

	"usage-map/internal/logger"
)

// Every：立即执行一次 job，之后按 interval 周期执行，直到 ctx 取消
// 背景：调查导出文件由外部定期覆盖，导入工具可常驻并按周期重新导入
// 约束：job 出错只记录日志，调度继续；上一次未结束时不会并发启动下一次
func Every(ctx context.Context, interval time.Duration, job func(context.Context) error) {
	l := logger.L()
	run := func() {
		if err := job(ctx); err != nil {
			l.Error("ingest_error", "err", err)
		}
	}
	run()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Info("ingest_tick", "interval", interval)
			run()
		}
	}
}
