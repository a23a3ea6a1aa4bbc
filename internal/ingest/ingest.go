// 包 ingest：把调查导出文件（CSV/XLSX）批量写入记录表，作为离线数据通道
package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"usage-map/internal/logger"
)

// DefaultBatchSize：每个事务提交的行数
const DefaultBatchSize = 5000

// Options：导入参数
type Options struct {
	Driver    string
	Table     string
	BatchSize int
	// Truncate：导入前清空记录表
	Truncate bool
}

func insertSQL(driver, table string) string {
	ph := make([]string, len(Columns))
	for i := range ph {
		if driver == "postgres" {
			ph[i] = "$" + strconv.Itoa(i+1)
		} else {
			ph[i] = "?"
		}
	}
	return fmt.Sprintf("INSERT INTO %s(%s) VALUES(%s)", table, strings.Join(Columns, ","), strings.Join(ph, ","))
}

// Import：按批次事务写入表格数据，返回写入行数
// 背景：按 BatchSize 行为一批提交，降低锁持有时间；空单元格写入 NULL，指标保留原始文本，读取时再解析
// 约束：全空行跳过；已提交的批次在后续失败时不回滚
// 异常：表头缺少 location 列、事务或写入失败时直接返回，不做重试
func Import(ctx context.Context, db *sql.DB, t *Table, opts Options) (int, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	cols, err := MapHeader(t.Header)
	if err != nil {
		return 0, err
	}
	l := logger.L()
	l.Info("ingest_start", "table", opts.Table, "rows", len(t.Rows), "columns", len(cols))
	if opts.Truncate {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+opts.Table); err != nil {
			return 0, fmt.Errorf("truncate %s: %w", opts.Table, err)
		}
	}
	q := insertSQL(opts.Driver, opts.Table)

	tx, stmt, err := begin(ctx, db, q)
	if err != nil {
		return 0, err
	}
	count, pending := 0, 0
	args := make([]any, len(Columns))
	for _, row := range t.Rows {
		if blankRow(row) {
			continue
		}
		for i, c := range Columns {
			args[i] = cell(row, cols, c)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = tx.Rollback()
			return count, fmt.Errorf("insert row %d: %w", count+pending+1, err)
		}
		pending++
		if pending == opts.BatchSize {
			stmt.Close()
			if err := tx.Commit(); err != nil {
				return count, fmt.Errorf("commit: %w", err)
			}
			count += pending
			pending = 0
			l.Info("ingest_progress", "count", count)
			if tx, stmt, err = begin(ctx, db, q); err != nil {
				return count, err
			}
		}
	}
	stmt.Close()
	if err := tx.Commit(); err != nil {
		return count, fmt.Errorf("commit: %w", err)
	}
	count += pending
	l.Info("ingest_done", "count", count)
	return count, nil
}

func begin(ctx context.Context, db *sql.DB, q string) (*sql.Tx, *sql.Stmt, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return nil, nil, fmt.Errorf("prepare: %w", err)
	}
	return tx, stmt, nil
}

func cell(row []string, cols map[string]int, c string) any {
	i, ok := cols[c]
	if !ok || i >= len(row) {
		return nil
	}
	v := strings.TrimSpace(row[i])
	if v == "" {
		return nil
	}
	return v
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
