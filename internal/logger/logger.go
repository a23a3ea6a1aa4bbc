// 包 logger：统一初始化与获取日志器；通过环境变量控制日志级别、输出格式与是否附带源码位置
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// 默认日志器：进程级复用
var defaultLogger *slog.Logger

// Setup：按环境变量初始化默认日志器并返回
// 背景：看板进程内所有模块共用同一日志器，字段风格保持一致（事件名 + 键值对）
// 约束：输出固定为标准错误；LOG_LEVEL 取 debug/info/warn/error，LOG_FORMAT 取 text/json
func Setup() *slog.Logger {
	defaultLogger = New(os.Stderr, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), os.Getenv("LOG_SOURCE") == "true")
	return defaultLogger
}

// New：构造独立日志器，供测试或工具命令指定输出目标
func New(w io.Writer, level, format string, addSource bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level), AddSource: addSource}
	var h slog.Handler
	if strings.ToLower(format) == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With("app", "usage-map")
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// L：获取默认日志器，未初始化时回退到 Setup
func L() *slog.Logger {
	if defaultLogger == nil {
		return Setup()
	}
	return defaultLogger
}

// Discard：丢弃全部输出的日志器，测试中替代默认日志器
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
