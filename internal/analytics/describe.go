package analytics

import (
	"math"

	apperrors "amtkcli/internal/errors"
	"amtkcli/pkg/contracts/domain"
)

// DescribeNumeric reports the center, spread and position of values. NaN
// values are ignored. Quartiles interpolate linearly; the standard
// deviation and variance use the sample (n-1) denominator.
func DescribeNumeric(values []float64) (domain.NumericDescription, error) {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return domain.NumericDescription{}, apperrors.NewValidationError("cannot describe an empty column", nil)
	}

	sorted := sortedCopy(clean)
	mean := calculateMean(sorted)
	std := calculateStdDev(sorted, mean)
	q1 := percentile(sorted, 0.25)
	q2 := percentile(sorted, 0.5)
	q3 := percentile(sorted, 0.75)
	lo, hi := sorted[0], sorted[len(sorted)-1]

	return domain.NumericDescription{
		Count: len(sorted),
		Center: domain.CenterStats{
			Mean:   mean,
			Median: q2,
			Mode:   mode(sorted),
		},
		Spread: domain.SpreadStats{
			Std:      std,
			Variance: std * std,
			Range:    hi - lo,
			IQR:      q3 - q1,
		},
		Position: domain.PositionStats{
			Min: lo,
			Q1:  q1,
			Q2:  q2,
			Q3:  q3,
			Max: hi,
		},
	}, nil
}
