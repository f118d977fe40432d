package building

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadExcel 读取业主导出的 Excel 文件，第一行为表头。
// sheet 为空时依次读取所有工作表（原始导出每栋楼一个工作表）。
func ReadExcel(r io.Reader, sheet string, fields Fields) ([]Record, error) {
	fields = fields.withDefaults()

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if sheet != "" {
		sheets = []string{sheet}
	}

	records := make([]Record, 0)
	for _, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		if len(rows) < 2 {
			continue
		}

		header := make(map[string]int, len(rows[0]))
		for i, h := range rows[0] {
			header[strings.TrimSpace(h)] = i
		}

		for _, row := range rows[1:] {
			if isBlankRow(row) {
				continue
			}
			records = append(records, fields.record("", func(col string) string {
				idx, ok := header[col]
				if !ok || idx >= len(row) {
					return ""
				}
				return strings.TrimSpace(row[idx])
			}))
		}
	}
	return records, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
