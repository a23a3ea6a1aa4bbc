// 包 utils：记录库与 Redis 的连接工具，统一环境变量读取
package utils

import (
	"database/sql"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// RecordDriverFromEnv：RECORD_DB_DRIVER，缺省 postgres
func RecordDriverFromEnv() (string, error) {
	switch d := os.Getenv("RECORD_DB_DRIVER"); d {
	case "", DriverPostgres:
		return DriverPostgres, nil
	case DriverMySQL:
		return DriverMySQL, nil
	default:
		return "", fmt.Errorf("unsupported RECORD_DB_DRIVER %q", d)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// BuildPostgresDSNFromEnv：由 PG_* 环境变量拼装连接串
func BuildPostgresDSNFromEnv() string {
	user := envOr("PG_USER", "postgres")
	dsn := "postgres://" + user
	if pass := os.Getenv("PG_PASSWORD"); pass != "" {
		dsn += ":" + pass
	}
	dsn += "@" + net.JoinHostPort(envOr("PG_HOST", "localhost"), envOr("PG_PORT", "5432"))
	dsn += "/" + envOr("PG_DB", "mobile_usage") + "?sslmode=" + envOr("PG_SSLMODE", "disable")
	return dsn
}

// BuildMySQLDSNFromEnv：由 MYSQL_* 环境变量拼装连接串
// 背景：原始调查数据位于 MySQL（库 mobile_usage），沿用其缺省库名
func BuildMySQLDSNFromEnv() string {
	cfg := mysql.NewConfig()
	cfg.User = envOr("MYSQL_USER", "root")
	cfg.Passwd = os.Getenv("MYSQL_PASSWORD")
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(envOr("MYSQL_HOST", "localhost"), envOr("MYSQL_PORT", "3306"))
	cfg.DBName = envOr("MYSQL_DB", "mobile_usage")
	cfg.Timeout = 5 * time.Second
	return cfg.FormatDSN()
}

// OpenRecordDBFromEnv：按 RECORD_DB_DRIVER 打开记录库连接池
// 约束：sql.Open 不建立连接，连通性由调用方 Ping 判定；连接池大小取 DB_MAX_OPEN_CONNS / DB_MAX_IDLE_CONNS
func OpenRecordDBFromEnv() (*sql.DB, string, error) {
	driver, err := RecordDriverFromEnv()
	if err != nil {
		return nil, "", err
	}
	dsn := BuildPostgresDSNFromEnv()
	if driver == DriverMySQL {
		dsn = BuildMySQLDSNFromEnv()
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, driver, fmt.Errorf("open %s: %w", driver, err)
	}
	maxOpen, maxIdle := 20, 10
	if n, e := strconv.Atoi(os.Getenv("DB_MAX_OPEN_CONNS")); e == nil && n > 0 {
		maxOpen = n
	}
	if n, e := strconv.Atoi(os.Getenv("DB_MAX_IDLE_CONNS")); e == nil && n >= 0 {
		maxIdle = n
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, driver, nil
}
