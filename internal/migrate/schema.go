// 包 migrate：首次运行时创建调查记录表
package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"usage-map/internal/logger"
)

// 背景：指标列使用文本类型，与原始调查导出一致，读取时逐值解析；导入工具写入原始文本
// 约束：使用 IF NOT EXISTS，不修改既有表结构；table 由调用方校验（store.AttachDB）
func EnsureSchema(ctx context.Context, db *sql.DB, driver, table string) error {
	var stmts []string
	switch driver {
	case "mysql":
		stmts = []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            id BIGINT AUTO_INCREMENT PRIMARY KEY,
            user_id VARCHAR(64) NULL,
            location VARCHAR(128) NULL,
            screen_time TEXT NULL,
            data_usage TEXT NULL,
            social_media_time TEXT NULL,
            streaming_time TEXT NULL,
            gaming_time TEXT NULL,
            primary_use VARCHAR(128) NULL,
            phone_brand VARCHAR(128) NULL,
            gender VARCHAR(32) NULL,
            age VARCHAR(16) NULL,
            INDEX idx_%s_location (location)
        )`, table, table)}
	case "postgres":
		stmts = []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            id BIGSERIAL PRIMARY KEY,
            user_id TEXT,
            location TEXT,
            screen_time TEXT,
            data_usage TEXT,
            social_media_time TEXT,
            streaming_time TEXT,
            gaming_time TEXT,
            primary_use TEXT,
            phone_brand TEXT,
            gender TEXT,
            age TEXT
        )`, table),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_location ON %s(location)`, table, table),
		}
	default:
		return fmt.Errorf("migrate: unsupported driver %q", driver)
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i, "driver", driver)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate %s: %w", table, err)
		}
	}
	logger.L().Debug("schema_done", "table", table)
	return nil
}
