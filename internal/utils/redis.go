package utils

import (
	"net"
	"os"
	"strconv"

	"github.com/redis/go-redis/v9"

	"usage-map/internal/logger"
)

// OpenRedisFromEnv：REDIS_ENABLE=true 时按 REDIS_* 打开客户端，否则返回 nil
// 约束：REDIS_DB 解析失败时回退到 0
func OpenRedisFromEnv() *redis.Client {
	if os.Getenv("REDIS_ENABLE") != "true" {
		return nil
	}
	addr := net.JoinHostPort(envOr("REDIS_HOST", "127.0.0.1"), envOr("REDIS_PORT", "6379"))
	db := 0
	if n, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil && n >= 0 {
		db = n
	}
	logger.L().Debug("redis_env", "addr", addr, "db", db)
	return redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASS"), DB: db})
}
