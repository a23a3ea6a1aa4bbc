// 包 store：调查记录库的只读访问层，支持 PostgreSQL 与 MySQL
package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"usage-map/internal/logger"
	"usage-map/internal/metrics"
	"usage-map/internal/usage"
)

// DefaultTable：调查记录表名
const DefaultTable = "user_data"

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store：记录库访问入口，持有连接池
type Store struct {
	db    *sql.DB
	table string
}

// AttachDB：包装已打开的连接池；table 为空时使用 DefaultTable
func AttachDB(db *sql.DB, table string) (*Store, error) {
	if table == "" {
		table = DefaultTable
	}
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("invalid record table name %q", table)
	}
	return &Store{db: db, table: table}, nil
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Table() string { return s.table }

func (s *Store) Close() error { return s.db.Close() }

// Ping：连通性探测，失败时返回 ConnectivityError
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &ConnectivityError{Op: "ping", Err: err}
	}
	return nil
}

// FetchUsageRecords：读取全部调查记录
// 背景：指标列在不同数据源中可能是数值也可能是文本，统一按文本扫描后逐值解析，解析失败标记为缺失
// 异常：连接、查询、扫描失败均包装为 ConnectivityError；不做重试
func (s *Store) FetchUsageRecords(ctx context.Context) ([]usage.UsageRecord, error) {
	t0 := time.Now()
	q := "SELECT user_id, location, screen_time, data_usage, social_media_time, streaming_time, gaming_time, primary_use, phone_brand, gender, age FROM " + s.table
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		metrics.RecordFetchFailTotal.Inc()
		logger.L().Error("records_query_error", "table", s.table, "err", err)
		return nil, &ConnectivityError{Op: "query", Err: err}
	}
	defer rows.Close()
	var out []usage.UsageRecord
	for rows.Next() {
		var userID, location, screen, data, social, streaming, gaming, primary, brand, gender, age sql.NullString
		if err := rows.Scan(&userID, &location, &screen, &data, &social, &streaming, &gaming, &primary, &brand, &gender, &age); err != nil {
			metrics.RecordFetchFailTotal.Inc()
			return nil, &ConnectivityError{Op: "scan", Err: err}
		}
		out = append(out, usage.UsageRecord{
			UserID:          userID.String,
			Location:        location.String,
			ScreenTime:      usage.ParseMetric(screen.String),
			DataUsage:       usage.ParseMetric(data.String),
			SocialMediaTime: usage.ParseMetric(social.String),
			StreamingTime:   usage.ParseMetric(streaming.String),
			GamingTime:      usage.ParseMetric(gaming.String),
			PrimaryUse:      primary.String,
			PhoneBrand:      brand.String,
			Gender:          gender.String,
			Age:             age.String,
		})
	}
	if err := rows.Err(); err != nil {
		metrics.RecordFetchFailTotal.Inc()
		return nil, &ConnectivityError{Op: "rows", Err: err}
	}
	dur := time.Since(t0).Milliseconds()
	metrics.RecordFetchDurationMs.Observe(float64(dur))
	metrics.RecordsFetched.Set(float64(len(out)))
	logger.L().Info("records_fetch_ok", "table", s.table, "rows", len(out), "duration_ms", dur)
	return out, nil
}
