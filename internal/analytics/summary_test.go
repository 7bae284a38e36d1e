package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "amtkcli/internal/errors"
	"amtkcli/internal/frame"
	"amtkcli/pkg/contracts/domain"
)

var nan = math.NaN()

func network(t *testing.T) *frame.Frame {
	t.Helper()
	f, err := frame.New(
		frame.Strings(domain.ColServiceLine, "NEC", "NEC", "LD", "SS", "SS", ""),
		frame.Strings(domain.ColSubService, "Acela", "Northeast Regional", "Southwest Chief", "Wolverine", "Wolverine", "Orphan"),
		frame.Ints(domain.ColRouteMiles, 457, 457, 2265, 304, 304, 0),
		frame.Strings(domain.ColStationCode, "NYP", "WAS", "LAX", "CHI", "DET", "XXX"),
		frame.Ints(domain.ColFiscalYear, 2024, 2024, 2024, 2023, 2024, 2024),
		frame.Ints(domain.ColFiscalQuarter, 1, 2, 1, 4, 1, 1),
		frame.Ints(domain.ColTotalDetrain, 100, 50, 30, 20, 10, 5),
		frame.Ints(domain.ColLateDetrain, 10, 5, 15, 0, 1, 0),
		frame.Floats(domain.ColAvgMinLate, 12, 8, 40, nan, 22, nan),
	)
	require.NoError(t, err)
	return f
}

var sumMean = []domain.AggFunc{domain.AggSum, domain.AggMean}

func TestGetSumStats_WholeTable(t *testing.T) {
	f := network(t)
	row, err := GetSumStats(f, []string{domain.ColTotalDetrain}, sumMean)
	require.NoError(t, err)

	assert.Equal(t, f.Len(), row.TrainArrivals)
	assert.Empty(t, row.Keys)
	sum, ok := row.Value("Total Detraining Customers sum")
	require.True(t, ok)
	assert.Equal(t, 215.0, *sum)
	mean, _ := row.Value("Total Detraining Customers mean")
	assert.InDelta(t, 215.0/6, *mean, 1e-9)
	assert.Nil(t, row.ArrivalsRatio)
}

func TestGetSumStats_EmptyTable(t *testing.T) {
	f := network(t).Filter(func(frame.Row) bool { return false })
	row, err := GetSumStats(f, []string{domain.ColTotalDetrain, domain.ColAvgMinLate}, []domain.AggFunc{domain.AggSum, domain.AggMean, domain.AggCount})
	require.NoError(t, err)

	assert.Equal(t, 0, row.TrainArrivals)
	sum, _ := row.Value("Total Detraining Customers sum")
	assert.Nil(t, sum)
	count, _ := row.Value("Late Detraining Customers Avg Min Late count")
	require.NotNil(t, count)
	assert.Equal(t, 0.0, *count)
}

func TestGetSumStatsByGroup(t *testing.T) {
	f := network(t)
	rows, opts, err := GetSumStatsByGroup(f, []string{domain.ColServiceLine},
		[]string{domain.ColTotalDetrain, domain.ColAvgMinLate}, sumMean)
	require.NoError(t, err)

	// the row with no service line is excluded
	require.Len(t, rows, 3)
	// ties on arrivals keep ascending key order: NEC and SS both have 2
	keys := make([]any, len(rows))
	for i, r := range rows {
		keys[i], _ = r.Key(domain.ColServiceLine)
	}
	assert.Equal(t, []any{"NEC", "SS", "LD"}, keys)

	var arrivals, detraining float64
	for _, r := range rows {
		require.NotNil(t, r.ArrivalsRatio)
		require.NotNil(t, r.DetrainingRatio)
		arrivals += *r.ArrivalsRatio
		detraining += *r.DetrainingRatio
	}
	// the excluded row carries 1/6 of the arrivals and 5/215 of the customers
	assert.InDelta(t, 5.0/6, arrivals, 1e-9)
	assert.InDelta(t, 210.0/215, detraining, 1e-9)

	ss := rows[1]
	mean, _ := ss.Value("Late Detraining Customers Avg Min Late mean")
	assert.Equal(t, 22.0, *mean)

	tab, err := SummaryFrame(rows, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{
		domain.ColServiceLine, domain.ColTrainArrivals,
		"Total Detraining Customers sum", "Total Detraining Customers mean",
		"Late Detraining Customers Avg Min Late sum", "Late Detraining Customers Avg Min Late mean",
		domain.ColArrivalsRatio, domain.ColDetrainingRatio,
	}, tab.Columns())
	assert.Equal(t, 3, tab.Len())
}

func TestSummarize_RatiosSumToOne(t *testing.T) {
	f := network(t)
	for _, keys := range [][]string{
		{domain.ColSubService},
		{domain.ColFiscalYear, domain.ColFiscalQuarter},
		{domain.ColStationCode},
	} {
		rows, _, err := GetSumStatsByGroup(f, keys, []string{domain.ColTotalDetrain}, sumMean)
		require.NoError(t, err)
		var a, d float64
		for _, r := range rows {
			a += *r.ArrivalsRatio
			d += *r.DetrainingRatio
		}
		assert.InDelta(t, 1.0, a, 1e-9, "%v", keys)
		assert.InDelta(t, 1.0, d, 1e-9, "%v", keys)
	}
}

func TestSummarize_MissingAggregates(t *testing.T) {
	f := network(t)
	rows, err := Summarize(f, SummaryOptions{
		GroupKeys: []string{domain.ColStationCode},
		Metrics:   []string{domain.ColAvgMinLate},
		Funcs:     []domain.AggFunc{domain.AggSum, domain.AggMedian, domain.AggStd, domain.AggCount},
		SortBy:    domain.ColStationCode,
		Ascending: true,
	})
	require.NoError(t, err)
	require.Len(t, rows, 6)

	chi := rows[0]
	code, _ := chi.Key(domain.ColStationCode)
	assert.Equal(t, "CHI", code)
	for _, fn := range []string{"sum", "median", "std"} {
		v, ok := chi.Value("Late Detraining Customers Avg Min Late " + fn)
		require.True(t, ok)
		assert.Nil(t, v, fn)
	}
	count, _ := chi.Value("Late Detraining Customers Avg Min Late count")
	assert.Equal(t, 0.0, *count)
}

func TestSummarize_SortBy(t *testing.T) {
	f := network(t)
	rows, err := Summarize(f, SummaryOptions{
		GroupKeys: []string{domain.ColSubService},
		Metrics:   []string{domain.ColAvgMinLate},
		Funcs:     []domain.AggFunc{domain.AggMean},
		SortBy:    "Late Detraining Customers Avg Min Late mean",
	})
	require.NoError(t, err)

	var got []any
	for _, r := range rows {
		k, _ := r.Key(domain.ColSubService)
		got = append(got, k)
	}
	// missing means sort last
	assert.Equal(t, []any{"Southwest Chief", "Wolverine", "Acela", "Northeast Regional", "Orphan"}, got)
}

func TestSummarize_Errors(t *testing.T) {
	f := network(t)

	_, err := Summarize(f, SummaryOptions{GroupKeys: []string{"Nope"}})
	assert.True(t, apperrors.IsSchemaViolation(err))

	_, err = Summarize(f, SummaryOptions{Metrics: []string{domain.ColTotalDetrain}, Funcs: []domain.AggFunc{"mode"}})
	assert.Equal(t, apperrors.ErrTypeValidation, apperrors.TypeOf(err))

	zero := 0.0
	rows, err := Summarize(f.Filter(func(frame.Row) bool { return false }), SummaryOptions{GrandTotalDetraining: &zero})
	require.NoError(t, err)
	assert.Nil(t, rows[0].DetrainingRatio)
}

func TestSummarize_UnknownSortColumn(t *testing.T) {
	f := network(t)
	tests := []struct {
		name    string
		sortBy  string
		wantErr bool
	}{
		{name: "unknown", sortBy: "nonexistent", wantErr: true},
		{name: "metric without func", sortBy: domain.ColAvgMinLate, wantErr: true},
		{name: "group key", sortBy: domain.ColServiceLine},
		{name: "aggregate", sortBy: "Late Detraining Customers Avg Min Late mean"},
		{name: "arrivals ratio", sortBy: domain.ColArrivalsRatio},
		{name: "default", sortBy: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Summarize(f, SummaryOptions{
				GroupKeys: []string{domain.ColServiceLine},
				Metrics:   []string{domain.ColAvgMinLate},
				Funcs:     []domain.AggFunc{domain.AggMean},
				SortBy:    tt.sortBy,
			})
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsSchemaViolation(err))
				assert.Nil(t, rows)
				return
			}
			require.NoError(t, err)
			assert.Len(t, rows, 3)
		})
	}
}

func TestSummarize_KeysContainingSeparators(t *testing.T) {
	f, err := frame.New(
		frame.Strings("a", "A_B", "A", "A", "NaN"),
		frame.Strings("b", "C", "B_C", "B_C", "D"),
		frame.Floats("x", 1, 2, 4, 8),
	)
	require.NoError(t, err)

	rows, err := Summarize(f, SummaryOptions{
		GroupKeys: []string{"a", "b"},
		Metrics:   []string{"x"},
		Funcs:     []domain.AggFunc{domain.AggSum, domain.AggMax, domain.AggCount},
		SortBy:    "a",
		Ascending: true,
	})
	require.NoError(t, err)
	// "NaN" text is a missing key
	require.Len(t, rows, 2)

	first, _ := rows[0].Key("a")
	assert.Equal(t, "A", first)
	assert.Equal(t, 2, rows[0].TrainArrivals)
	sum, _ := rows[0].Value("x sum")
	assert.Equal(t, 6.0, *sum)
	maxV, _ := rows[0].Value("x max")
	assert.Equal(t, 4.0, *maxV)

	second, _ := rows[1].Key("a")
	assert.Equal(t, "A_B", second)
	count, _ := rows[1].Value("x count")
	assert.Equal(t, 1.0, *count)
}

func TestSummarize_MedianAndStd(t *testing.T) {
	f, err := frame.New(
		frame.Strings("k", "a", "a", "a", "a", "b"),
		frame.Ints("x", 1, 2, 3, 10, 7),
	)
	require.NoError(t, err)

	rows, err := Summarize(f, SummaryOptions{
		GroupKeys: []string{"k"},
		Metrics:   []string{"x"},
		Funcs:     []domain.AggFunc{domain.AggMedian, domain.AggStd, domain.AggMin},
		SortBy:    "k",
		Ascending: true,
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	median, _ := rows[0].Value("x median")
	assert.Equal(t, 2.5, *median)
	std, _ := rows[0].Value("x std")
	assert.InDelta(t, math.Sqrt(47.0/3), *std, 1e-9)
	minV, _ := rows[0].Value("x min")
	assert.Equal(t, 1.0, *minV)

	// one observation has no sample deviation
	std, _ = rows[1].Value("x std")
	assert.Nil(t, std)
}
