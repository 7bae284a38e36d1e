package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "amtkcli/internal/errors"
	"amtkcli/internal/frame"
	"amtkcli/pkg/contracts/domain"
)

func canonicalRow(t *testing.T, quarter, total, late int64, lat float64) *frame.Frame {
	t.Helper()
	cols := make([]*frame.Series, 0, len(domain.CanonicalColumns))
	for _, c := range domain.CanonicalColumns {
		cols = append(cols, frame.Missing(c, CanonicalSchema.KindOf(c), 1))
	}
	f := mustFrame(t, cols...)
	set := map[string]*frame.Series{
		domain.ColFiscalYear:    frame.Ints(domain.ColFiscalYear, 2024),
		domain.ColFiscalQuarter: frame.Ints(domain.ColFiscalQuarter, quarter),
		domain.ColServiceLine:   frame.Strings(domain.ColServiceLine, "Long Distance"),
		domain.ColService:       frame.Strings(domain.ColService, "Chief"),
		domain.ColSubService:    frame.Strings(domain.ColSubService, "Southwest Chief"),
		domain.ColStationCode:   frame.Strings(domain.ColStationCode, "LAX"),
		domain.ColTotalDetrain:  frame.Ints(domain.ColTotalDetrain, total),
		domain.ColLateDetrain:   frame.Ints(domain.ColLateDetrain, late),
		domain.ColLatitude:      frame.Floats(domain.ColLatitude, lat),
	}
	for _, s := range set {
		var err error
		f, err = f.WithColumn(s)
		require.NoError(t, err)
	}
	return f
}

func TestValidateRecords(t *testing.T) {
	tests := []struct {
		name    string
		quarter int64
		total   int64
		late    int64
		lat     float64
		wantErr bool
	}{
		{"valid", 3, 100, 10, 34.05, false},
		{"late above total", 3, 10, 11, 34.05, true},
		{"quarter out of range", 5, 10, 1, 34.05, true},
		{"latitude out of range", 1, 10, 1, 123, true},
		{"negative total", 1, -1, 0, 34.05, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecords(canonicalRow(t, tt.quarter, tt.total, tt.late, tt.lat))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrTypeValidation, apperrors.TypeOf(err))
		})
	}
}

func TestRecords_RequiresCanonicalColumns(t *testing.T) {
	_, err := Records(mustFrame(t, frame.Ints(domain.ColFiscalYear, 2024)))
	assert.True(t, apperrors.IsSchemaViolation(err))
}
