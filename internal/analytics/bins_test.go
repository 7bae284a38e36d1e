package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "amtkcli/internal/errors"
)

func TestCreateBins(t *testing.T) {
	tests := []struct {
		name      string
		values    []float64
		hint      float64
		wantCount int
		wantWidth float64
		wantEdges []float64
	}{
		{
			name:      "even split",
			values:    []float64{0, 3, 10, 7.5},
			hint:      5,
			wantCount: 2,
			wantWidth: 5,
			wantEdges: []float64{0, 5, 10},
		},
		{
			name:      "hint rounds to whole bins",
			values:    []float64{2, 14},
			hint:      5,
			wantCount: 2,
			wantWidth: 6,
			wantEdges: []float64{2, 8, 14},
		},
		{
			name:      "hint wider than range",
			values:    []float64{1, 2},
			hint:      15,
			wantCount: 1,
			wantWidth: 1,
			wantEdges: []float64{1, 2},
		},
		{
			name:      "all equal",
			values:    []float64{4, 4, 4},
			hint:      5,
			wantCount: 1,
			wantWidth: 5,
			wantEdges: []float64{4, 9},
		},
		{
			name:      "NaN dropped",
			values:    []float64{nan, 0, 10, nan},
			hint:      5,
			wantCount: 2,
			wantWidth: 5,
			wantEdges: []float64{0, 5, 10},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := CreateBins(tt.values, tt.hint)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, b.Count)
			assert.InDelta(t, tt.wantWidth, b.Width, 1e-9)
			assert.InDeltaSlice(t, tt.wantEdges, b.Edges, 1e-9)
			assert.Len(t, b.Assignments, len(b.Values))
		})
	}
}

func TestCreateBins_Coverage(t *testing.T) {
	values := []float64{0.5, 1, 1, 2.25, 3.7, 9.99, 10, 15, 15, 33.3, 47, 60.1}
	for _, hint := range []float64{1, 5, 7.3, 15, 100} {
		b, err := CreateBins(values, hint)
		require.NoError(t, err)

		assert.LessOrEqual(t, b.Edges[0], 0.5)
		assert.GreaterOrEqual(t, b.Edges[len(b.Edges)-1], 60.1)

		rows, err := BinData(b.Values, b.Edges)
		require.NoError(t, err)
		total := 0
		for _, r := range rows {
			assert.Greater(t, r.Count, 0)
			assert.InDelta(t, (r.Start+r.End)/2, r.Center, 1e-9)
			total += r.Count
		}
		assert.Equal(t, len(values), total, "hint %v", hint)

		for i, v := range b.Values {
			idx := b.Assignments[i]
			assert.GreaterOrEqual(t, v, b.Edges[idx])
			assert.LessOrEqual(t, v, b.Edges[idx+1])
		}
	}
}

func TestBinData(t *testing.T) {
	rows, err := BinData([]float64{0, 4.99, 5, 9.5, nan}, []float64{0, 5, 10, 15})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Count)
	assert.Equal(t, 2.5, rows[0].Center)
	assert.Equal(t, 2, rows[1].Count)
	assert.Equal(t, 5.0, rows[1].Start)

	// last bin is closed
	rows, err = BinData([]float64{15}, []float64{0, 5, 10, 15})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 10.0, rows[0].Start)
}

func TestBins_Errors(t *testing.T) {
	tests := []struct {
		name string
		run  func() error
	}{
		{"zero hint", func() error { _, err := CreateBins([]float64{1, 2}, 0); return err }},
		{"negative hint", func() error { _, err := CreateBins([]float64{1, 2}, -5); return err }},
		{"no values", func() error { _, err := CreateBins([]float64{nan}, 5); return err }},
		{"value below edges", func() error { _, err := BinData([]float64{-1}, []float64{0, 5}); return err }},
		{"value above edges", func() error { _, err := BinData([]float64{6}, []float64{0, 5}); return err }},
		{"single edge", func() error { _, err := BinData([]float64{1}, []float64{0}); return err }},
		{"unordered edges", func() error { _, err := BinData(nil, []float64{0, 5, 5}); return err }},
		{"only infinities", func() error { _, err := CreateBins([]float64{math.Inf(1), math.Inf(-1)}, 5); return err }},
		{"too many bins", func() error { _, err := CreateBins([]float64{0, 1e9}, 1); return err }},
		{"overflowing range", func() error { _, err := CreateBins([]float64{-math.MaxFloat64, math.MaxFloat64}, 1); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrTypeValidation, apperrors.TypeOf(err))
		})
	}
}

func TestCreateBins_DropsInfinities(t *testing.T) {
	b, err := CreateBins([]float64{0, 5, math.Inf(1), nan, math.Inf(-1)}, 1)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 5}, b.Values)
	assert.Equal(t, 5, b.Count)
	assert.Equal(t, 1.0, b.Width)
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5}, b.Edges)
	assert.Equal(t, []int{0, 4}, b.Assignments)

	rows, err := BinData([]float64{0, math.Inf(1), 5}, b.Edges)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Count)
	assert.Equal(t, 1, rows[1].Count)
}

func TestCreateBins_MaxBinsBoundary(t *testing.T) {
	b, err := CreateBins([]float64{0, MaxBins}, 1)
	require.NoError(t, err)
	assert.Equal(t, MaxBins, b.Count)

	_, err = CreateBins([]float64{0, MaxBins + 1}, 1)
	assert.Equal(t, apperrors.ErrTypeValidation, apperrors.TypeOf(err))
}
