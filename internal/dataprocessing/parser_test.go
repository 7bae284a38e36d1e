package dataprocessing

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "amtkcli/internal/errors"
	"amtkcli/internal/frame"
	"amtkcli/pkg/contracts/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// writeWorkbook saves rows to a new workbook; sheet names are created in
// order and the rows go to the last one.
func writeWorkbook(t *testing.T, rows [][]any, sheets ...string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	for i, name := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		sheet = name
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "FY24 Station Performance.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestParseWorkbook(t *testing.T) {
	header := make([]any, 0, len(domain.RawColumns)+1)
	for _, c := range domain.RawColumns[:len(domain.RawColumns)-1] {
		header = append(header, c)
	}
	header = append(header, "", "Remarks")

	rows := [][]any{
		{"Amtrak Station Performance"},
		{},
		header,
		{2024, 1, "State Supported", "Midwest", "Wolverine", 364, "CHI", "Chicago, Illinois", 100, 5, 12.5, "", "ok"},
		{},
		{2024, 1, "State Supported", "Midwest", "Wolverine", 364, "DET", "Detroit, Michigan", 60, 0, "--"},
	}
	path := writeWorkbook(t, rows, "Notes", "Data")

	// header lives on the second sheet; the first has none
	f, err := ParseWorkbook(path, testLogger)
	require.NoError(t, err)

	assert.Equal(t, 2, f.Len())
	assert.True(t, f.Has(domain.ColAvgMinLateCS))
	assert.True(t, f.Has("Unnamed: 11"))
	assert.True(t, f.Has("Remarks"))
	for _, s := range f.Series() {
		assert.Equal(t, frame.String, s.Kind, s.Name)
	}
	assert.Equal(t, []any{"CHI", "DET"}, f.Col(domain.ColStationCode).Values)
	assert.Equal(t, []any{"364", "364"}, f.Col(domain.ColTrainNumber).Values)
	assert.Equal(t, []any{"12.5", "--"}, f.Col(domain.ColAvgMinLateCS).Values)

	combined, report, err := Combine([]*frame.Frame{f}, DefaultSentinelTokens)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Total())
	assert.Equal(t, []any{int64(364), int64(364)}, combined.Col(domain.ColTrainNumber).Values)
}

func TestParseWorkbook_Errors(t *testing.T) {
	t.Run("no header", func(t *testing.T) {
		path := writeWorkbook(t, [][]any{{"a", "b"}, {1, 2}}, "Data")
		_, err := ParseWorkbook(path, testLogger)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrTypeParsing, apperrors.TypeOf(err))
	})

	t.Run("not a workbook", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.xlsx")
		require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0644))
		_, err := ParseWorkbook(path, testLogger)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrTypeParsing, apperrors.TypeOf(err))
	})
}
