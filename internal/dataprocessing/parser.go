package dataprocessing

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "amtkcli/internal/errors"
	"amtkcli/internal/frame"
	"amtkcli/pkg/contracts/domain"
)

// UnnamedPrefix names columns whose header cell is blank.
const UnnamedPrefix = "Unnamed"

// headerMarker identifies the header row of a performance extract.
var headerMarker = []string{domain.ColFiscalYear, domain.ColStationCode}

// ParseWorkbook reads the performance table from a raw extract. The first
// sheet whose rows contain a header with the fiscal year and station code
// columns is used. Every column is returned as strings; typing happens in
// Resolve.
func ParseWorkbook(path string, logger *slog.Logger) (*frame.Frame, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to open workbook %s", path), err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err)
		}
		header := findHeaderRow(rows)
		if header < 0 {
			logger.Debug("Sheet has no performance header", slog.String("sheet", sheet))
			continue
		}

		out, err := rowsToFrame(rows[header], rows[header+1:])
		if err != nil {
			return nil, err
		}
		logger.Info("Parsed workbook",
			slog.String("file", path),
			slog.String("sheet", sheet),
			slog.Int("header_row", header),
			slog.Int("rows", out.Len()))
		return out, nil
	}

	return nil, apperrors.NewParsingError(fmt.Sprintf("no sheet in %s carries a performance header", path), nil)
}

func findHeaderRow(rows [][]string) int {
	for i, row := range rows {
		found := 0
		for _, cell := range row {
			for _, m := range headerMarker {
				if strings.TrimSpace(cell) == m {
					found++
				}
			}
		}
		if found == len(headerMarker) {
			return i
		}
	}
	return -1
}

// rowsToFrame builds string columns from header and data rows. Blank header
// cells become "Unnamed: <index>". Short rows are padded with missing
// values and rows with no content are skipped.
func rowsToFrame(header []string, data [][]string) (*frame.Frame, error) {
	names := make([]string, len(header))
	for j, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("%s: %d", UnnamedPrefix, j)
		}
		names[j] = h
	}

	values := make([][]any, len(names))
	for _, row := range data {
		if isBlank(row) {
			continue
		}
		for j := range names {
			var v any
			if j < len(row) && strings.TrimSpace(row[j]) != "" {
				v = row[j]
			}
			values[j] = append(values[j], v)
		}
	}

	cols := make([]*frame.Series, len(names))
	for j, n := range names {
		cols[j] = &frame.Series{Name: n, Kind: frame.String, Values: values[j]}
		if cols[j].Values == nil {
			cols[j].Values = []any{}
		}
	}
	return frame.New(cols...)
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
