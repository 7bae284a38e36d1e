package report

import (
	"log/slog"
	"path/filepath"
	"strconv"

	"amtkcli/internal/exporter"
)

// WorkbookName is the workbook holding every report table.
const WorkbookName = "station_performance_report.xlsx"

// Write stores every table as <name>.csv in dir and all of them as sheets
// of one workbook. It returns the written paths.
func Write(dir string, tables []Table, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	writer := exporter.NewCSVWriter(logger)

	paths := make([]string, 0, len(tables)+1)
	sheets := make([]exporter.Sheet, 0, len(tables))
	for _, t := range tables {
		path := filepath.Join(dir, t.Name+".csv")
		if err := writer.WriteFrame(path, t.Frame); err != nil {
			return paths, err
		}
		paths = append(paths, path)
		sheets = append(sheets, exporter.Sheet{Name: t.Name, Frame: t.Frame})
	}

	workbook := filepath.Join(dir, WorkbookName)
	if err := exporter.WriteWorkbook(workbook, sheets, logger); err != nil {
		return paths, err
	}
	return append(paths, workbook), nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
