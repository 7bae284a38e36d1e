package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"amtkcli/internal/frame"
)

// maxSheetName is the longest sheet name Excel accepts.
const maxSheetName = 31

// Sheet is one named table of a workbook.
type Sheet struct {
	Name  string
	Frame *frame.Frame
}

var sheetNameReplacer = strings.NewReplacer(
	":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", "(", "]", ")",
)

// SheetName makes name acceptable to Excel: forbidden characters replaced
// and the result truncated to 31 characters.
func SheetName(name string) string {
	name = strings.TrimSpace(sheetNameReplacer.Replace(name))
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	if name == "" {
		name = "Sheet"
	}
	return name
}

// WriteWorkbook writes each sheet as a table with a bold, frozen header row.
// Numbers are stored as numbers and missing values as empty cells.
func WriteWorkbook(path string, sheets []Sheet, logger *slog.Logger) error {
	if len(sheets) == 0 {
		return fmt.Errorf("workbook %s has no sheets", path)
	}
	if logger == nil {
		logger = slog.Default()
	}

	wb := excelize.NewFile()
	defer wb.Close()

	header, err := wb.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	used := make(map[string]bool, len(sheets))
	for i, s := range sheets {
		name := SheetName(s.Name)
		if used[strings.ToLower(name)] {
			return fmt.Errorf("duplicate sheet name %q", name)
		}
		used[strings.ToLower(name)] = true

		if i == 0 {
			if err := wb.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := wb.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}
		if err := writeSheet(wb, name, s.Frame, header); err != nil {
			return err
		}
	}

	err = writeAtomic(path, func(file *os.File) error {
		_, err := wb.WriteTo(file)
		return err
	})
	if err != nil {
		return err
	}

	logger.Info("Workbook written",
		slog.String("path", path),
		slog.Int("sheets", len(sheets)))
	return nil
}

func writeSheet(wb *excelize.File, name string, f *frame.Frame, headerStyle int) error {
	columns := f.Columns()
	headerRow := make([]any, len(columns))
	for i, c := range columns {
		headerRow[i] = c
	}
	if err := wb.SetSheetRow(name, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write header of %q: %w", name, err)
	}
	if len(columns) > 0 {
		if err := wb.SetRowStyle(name, 1, 1, headerStyle); err != nil {
			return fmt.Errorf("failed to style header of %q: %w", name, err)
		}
	}

	cols := f.Series()
	for i := 0; i < f.Len(); i++ {
		row := make([]any, len(cols))
		for j, c := range cols {
			row[j] = c.Values[i]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := wb.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", i, name, err)
		}
	}

	return wb.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
