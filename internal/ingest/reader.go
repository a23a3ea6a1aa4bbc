package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
)

// Columns：记录表中可导入的列，顺序即 INSERT 列顺序
var Columns = []string{
	"user_id", "location", "screen_time", "data_usage", "social_media_time",
	"streaming_time", "gaming_time", "primary_use", "phone_brand", "gender", "age",
}

// Table：读取后的原始表格，首行为表头
type Table struct {
	Header []string
	Rows   [][]string
}

var errEmptyTable = errors.New("source has no header row")

// ReadCSV：读取 CSV 调查导出，允许行长度不一致
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	all, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return toTable(all)
}

// ReadXLSX：读取工作簿中的指定工作表，sheet 为空时取第一张
func ReadXLSX(r io.Reader, sheet string) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, errors.New("xlsx has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return toTable(rows)
}

// ReadFile：按扩展名选择 CSV 或 XLSX 读取
func ReadFile(path string, r io.Reader, sheet string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(r, sheet)
	case ".csv", ".txt", "":
		return ReadCSV(r)
	default:
		return nil, fmt.Errorf("unsupported source format %q", filepath.Ext(path))
	}
}

func toTable(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, errEmptyTable
	}
	return &Table{Header: rows[0], Rows: rows[1:]}, nil
}

// normalizeHeader：小写并把非字母数字折叠为单个下划线，例如 "Screen_Time (hrs/day)" -> "screen_time_hrs_day"
func normalizeHeader(h string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}

// MapHeader：把表头映射到记录列，返回 列名 -> 源列下标
// 约束：规范化后与列名相同，或以 "列名_" 开头（带单位后缀）即视为匹配；同一列以首次出现为准
// 异常：缺少 location 列时返回错误
func MapHeader(header []string) (map[string]int, error) {
	out := make(map[string]int, len(Columns))
	for i, h := range header {
		n := normalizeHeader(h)
		for _, c := range Columns {
			if _, taken := out[c]; taken {
				continue
			}
			if n == c || strings.HasPrefix(n, c+"_") {
				out[c] = i
				break
			}
		}
	}
	if _, ok := out["location"]; !ok {
		return nil, fmt.Errorf("source header has no location column: %v", header)
	}
	return out, nil
}
