package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"amtkcli/internal/frame"
	"amtkcli/pkg/contracts/domain"
)

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	counts, err := frame.New(
		frame.Strings(domain.ColRegion, "Midwest", "Northeast"),
		frame.Ints(domain.ColStationCount, 3, 7),
	)
	require.NoError(t, err)
	desc, err := frame.New(frame.Strings(colStatistic, "mean"), frame.Floats(colValue, 2.5))
	require.NoError(t, err)

	paths, err := Write(dir, []Table{
		{Name: "station_counts", Frame: counts},
		{Name: "avg_min_late_description", Frame: desc},
	}, testLogger())
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "station_counts.csv"),
		filepath.Join(dir, "avg_min_late_description.csv"),
		filepath.Join(dir, WorkbookName),
	}, paths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "Region,Station Count\nMidwest,3\nNortheast,7\n", string(data))

	wb, err := excelize.OpenFile(paths[2])
	require.NoError(t, err)
	defer wb.Close()
	assert.Equal(t, []string{"station_counts", "avg_min_late_description"}, wb.GetSheetList())
}

func TestWrite_NoTables(t *testing.T) {
	_, err := Write(t.TempDir(), nil, testLogger())
	assert.Error(t, err)
}

func TestBoxFrame_JoinsOutliers(t *testing.T) {
	f, err := boxFrame([]string{domain.ColServiceLine}, []domain.BoxSummary{{
		Keys:     []domain.GroupKey{{Column: domain.ColServiceLine, Value: "Northeast Corridor"}},
		Count:    9,
		Q1:       1,
		Median:   2,
		Q3:       3,
		Outliers: []float64{9.5, 12},
	}})
	require.NoError(t, err)
	assert.Equal(t, []any{"9.5;12"}, f.Col(colOutliers).Values)
	assert.Equal(t, []any{int64(9)}, f.Col(colCount).Values)
}
