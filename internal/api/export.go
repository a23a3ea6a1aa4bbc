package api

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"usage-map/internal/aggregate"
	"usage-map/internal/usage"
)

var regionHeader = []string{
	"State", "Region ID", "Avg Screen Time (hrs/day)", "Avg Data Usage (GB/month)",
	"Avg Social Media (hrs/day)", "Avg Streaming (hrs/day)", "Avg Gaming (hrs/day)",
	"Users", "Top Usage", "Records",
}

// BuildWorkbook：生成行政区汇总与分布工作簿
// 约束：缺失的均值留空单元格，不写 0；分布表包含全部品牌
func BuildWorkbook(recs []usage.UsageRecord) ([]byte, error) {
	res := aggregate.Summarize(recs)
	dist := aggregate.Distribute(recs, 0)

	f := excelize.NewFile()
	const sheet = "Regions"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FED976"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}
	if err := writeRow(f, sheet, 1, toAny(regionHeader), style); err != nil {
		f.Close()
		return nil, err
	}
	for i, s := range res.Summaries {
		row := []any{s.Name, string(s.Region)}
		for _, fld := range usage.Fields {
			row = append(row, cellMetric(s.Mean(fld)))
		}
		row = append(row, s.Users, s.TopUsage, s.Records)
		if err := writeRow(f, sheet, i+2, row, 0); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 24); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		f.Close()
		return nil, fmt.Errorf("freeze panes: %w", err)
	}

	for _, d := range []struct {
		name   string
		label  string
		counts []aggregate.Count
	}{
		{"Age", "Age", dist.Age},
		{"Gender", "Gender", dist.Gender},
		{"Brands", "Phone Brand", dist.Brands},
	} {
		if _, err := f.NewSheet(d.name); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", d.name, err)
		}
		if err := writeRow(f, d.name, 1, []any{d.label, "Count"}, style); err != nil {
			f.Close()
			return nil, err
		}
		for i, c := range d.counts {
			if err := writeRow(f, d.name, i+2, []any{c.Label, c.Count}, 0); err != nil {
				f.Close()
				return nil, err
			}
		}
	}
	if res.Unmapped > 0 {
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", len(res.Summaries)+3),
			fmt.Sprintf("%d records with a city outside the state table are excluded", res.Unmapped)); err != nil {
			f.Close()
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any, style int) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, start, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	if style == 0 {
		return nil
	}
	end, err := excelize.CoordinatesToCellName(len(values), row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, start, end, style)
}

func cellMetric(m usage.Metric) any {
	if !m.Valid {
		return nil
	}
	return m.Value
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
