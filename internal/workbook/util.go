package workbook

import (
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// headerIndex maps lowercased, trimmed header names to column positions.
func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.ToLower(name))
		if name != "" {
			cols[name] = i
		}
	}
	return cols
}

// cell returns the value at index i, tolerating short rows.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, name, value)
}

// parseSheetDate accepts the formats Excel round-trips dates through:
// ISO, the slash variant, and the datetime string excelize may render.
func parseSheetDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"2006-01-02", "2006/01/02", "2006-01-02 15:04:05", "01-02-06", "1/2/06 15:04"} {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, &time.ParseError{Layout: "2006-01-02", Value: raw}
}

func closeFile(f *excelize.File, logger *slog.Logger) {
	if err := f.Close(); err != nil {
		logger.Warn("workbook.close.failed", "error", err)
	}
}
