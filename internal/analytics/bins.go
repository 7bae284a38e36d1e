package analytics

import (
	"fmt"
	"math"
	"sort"

	apperrors "amtkcli/internal/errors"
	"amtkcli/pkg/contracts/domain"
)

// MaxBins caps the bin count CreateBins will produce.
const MaxBins = 10000

// Bins is an even partition of a value set.
type Bins struct {
	// Values are the finite input values, in input order.
	Values []float64
	// Assignments holds the bin index of each entry in Values.
	Assignments []int
	Edges       []float64
	Count       int
	Width       float64
}

// CreateBins partitions values into bins close to widthHint wide. The bin
// count is round((max-min)/hint), at least one; edges run from min to max
// with the last edge pinned to max. When every value is equal a single bin
// of width hint is returned. NaN and infinite values are dropped, and a
// count above MaxBins is a validation error.
func CreateBins(values []float64, widthHint float64) (Bins, error) {
	if widthHint <= 0 || math.IsNaN(widthHint) || math.IsInf(widthHint, 0) {
		return Bins{}, apperrors.NewValidationError(fmt.Sprintf("bin width hint must be positive, got %v", widthHint), nil)
	}
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if finite(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return Bins{}, apperrors.NewValidationError("no values to bin", nil)
	}

	sorted := sortedCopy(clean)
	lo, hi := sorted[0], sorted[len(sorted)-1]

	b := Bins{Values: clean}
	if hi == lo {
		b.Count = 1
		b.Width = widthHint
		b.Edges = []float64{lo, lo + widthHint}
	} else {
		n := math.Round((hi - lo) / widthHint)
		if n > MaxBins || math.IsInf(n, 0) {
			return Bins{}, apperrors.NewValidationError(
				fmt.Sprintf("range [%v, %v] at width %v needs more than %d bins", lo, hi, widthHint, MaxBins), nil)
		}
		b.Count = max(1, int(n))
		b.Width = (hi - lo) / float64(b.Count)
		b.Edges = make([]float64, b.Count+1)
		for i := 0; i < b.Count; i++ {
			b.Edges[i] = lo + float64(i)*b.Width
		}
		b.Edges[b.Count] = hi
	}

	b.Assignments = make([]int, len(clean))
	for i, v := range clean {
		idx, err := binIndex(v, b.Edges)
		if err != nil {
			return Bins{}, err
		}
		b.Assignments[i] = idx
	}
	return b, nil
}

// binIndex locates v in closed-open bins; the last bin is closed.
func binIndex(v float64, edges []float64) (int, error) {
	last := len(edges) - 1
	if v < edges[0] || v > edges[last] {
		return 0, apperrors.NewValidationError(
			fmt.Sprintf("value %v outside bin edges [%v, %v]", v, edges[0], edges[last]), nil)
	}
	i := sort.SearchFloat64s(edges, v)
	switch {
	case i >= last:
		return last - 1, nil
	case edges[i] == v:
		return i, nil
	default:
		return i - 1, nil
	}
}

// BinData counts values per bin and returns the occupied bins in edge order.
// NaN and infinite values are ignored.
func BinData(values []float64, edges []float64) ([]domain.BinRow, error) {
	if len(edges) < 2 {
		return nil, apperrors.NewValidationError("at least two bin edges are required", nil)
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return nil, apperrors.NewValidationError("bin edges must be strictly increasing", nil)
		}
	}

	counts := make([]int, len(edges)-1)
	for _, v := range values {
		if !finite(v) {
			continue
		}
		idx, err := binIndex(v, edges)
		if err != nil {
			return nil, err
		}
		counts[idx]++
	}

	var out []domain.BinRow
	for i, c := range counts {
		if c == 0 {
			continue
		}
		out = append(out, domain.BinRow{
			Center: (edges[i] + edges[i+1]) / 2,
			Start:  edges[i],
			End:    edges[i+1],
			Count:  c,
		})
	}
	return out, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
