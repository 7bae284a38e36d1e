package dataprocessing

import (
	"github.com/go-gota/gota/series"

	"amtkcli/internal/frame"
	"amtkcli/pkg/contracts/domain"
)

// Schema declares the storage kind of each column. Columns not listed stay
// strings.
type Schema map[string]frame.Kind

// KindOf returns the declared kind of column, String when undeclared.
func (s Schema) KindOf(column string) frame.Kind {
	if k, ok := s[column]; ok {
		return k
	}
	return frame.String
}

// RawSchema types the columns of the raw performance extracts.
var RawSchema = Schema{
	domain.ColFiscalYear:    frame.Int,
	domain.ColFiscalQuarter: frame.Int,
	domain.ColTrainNumber:   frame.Int,
	domain.ColTotalDetrain:  frame.Int,
	domain.ColLateDetrain:   frame.Int,
	domain.ColAvgMinLateCS:  frame.Float,
	domain.ColAvgMinLateC:   frame.Float,
}

// CleanSchema types the clean stage output.
var CleanSchema = Schema{
	domain.ColFiscalYear:    frame.Int,
	domain.ColFiscalQuarter: frame.Int,
	domain.ColTrainNumber:   frame.Int,
	domain.ColTotalDetrain:  frame.Int,
	domain.ColLateDetrain:   frame.Int,
	domain.ColAvgMinLate:    frame.Float,
}

// CanonicalSchema types the analysis-ready table. ZIP codes stay strings so
// leading zeros survive.
var CanonicalSchema = Schema{
	domain.ColFiscalYear:    frame.Int,
	domain.ColFiscalQuarter: frame.Int,
	domain.ColRouteMiles:    frame.Int,
	domain.ColTrainNumber:   frame.Int,
	domain.ColLatitude:      frame.Float,
	domain.ColLongitude:     frame.Float,
	domain.ColTotalDetrain:  frame.Int,
	domain.ColLateDetrain:   frame.Int,
	domain.ColLateRatio:     frame.Float,
	domain.ColAvgMinLate:    frame.Float,
}

// StationSchema types the normalized station master.
var StationSchema = Schema{
	domain.ColLatitude:  frame.Float,
	domain.ColLongitude: frame.Float,
}

// loadTypes pins every declared column to text for the CSV reader.
func (s Schema) loadTypes() map[string]series.Type {
	types := make(map[string]series.Type, len(s))
	for column := range s {
		types[column] = series.String
	}
	return types
}
