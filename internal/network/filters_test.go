package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "amtkcli/internal/errors"
	"amtkcli/internal/frame"
	"amtkcli/pkg/contracts/domain"
)

func TestFilters(t *testing.T) {
	f := arrivals(t)

	tests := []struct {
		name   string
		filter func(*frame.Frame) (*frame.Frame, error)
		want   int
	}{
		{"service line", func(f *frame.Frame) (*frame.Frame, error) { return ByServiceLine(f, "SS") }, 6},
		{"service", func(f *frame.Frame) (*frame.Frame, error) { return ByService(f, "Cardinal") }, 1},
		{"sub service", func(f *frame.Frame) (*frame.Frame, error) { return BySubService(f, "Blue Water") }, 6},
		{"station", func(f *frame.Frame) (*frame.Frame, error) { return ByStation(f, "CHI") }, 2},
		{"train", func(f *frame.Frame) (*frame.Frame, error) { return ByTrainNumber(f, 364) }, 5},
		{"no match", func(f *frame.Frame) (*frame.Frame, error) { return ByStation(f, "ZZZ") }, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.filter(f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Len())
			assert.Equal(t, f.Columns(), out.Columns())
		})
	}

	_, err := ByServiceLine(f.Drop(domain.ColServiceLine), "SS")
	assert.True(t, apperrors.IsSchemaViolation(err))
}

func TestUniqueTrains(t *testing.T) {
	out, err := UniqueTrains(arrivals(t))
	require.NoError(t, err)

	assert.Equal(t, []string{domain.ColSubService, domain.ColTrainNumber}, out.Columns())
	assert.Equal(t, []any{"Blue Water", "Blue Water", "Cardinal"}, out.Col(domain.ColSubService).Values)
	assert.Equal(t, []any{int64(364), int64(365), int64(50)}, out.Col(domain.ColTrainNumber).Values)
}
