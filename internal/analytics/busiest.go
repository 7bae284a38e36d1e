package analytics

import (
	"slices"
	"sort"

	"github.com/go-gota/gota/series"

	apperrors "amtkcli/internal/errors"
	"amtkcli/internal/frame"
	"amtkcli/pkg/contracts/domain"
)

// stationAttributes are carried into the busiest-station table when present.
var stationAttributes = []string{
	domain.ColStationCode,
	domain.ColStation,
	domain.ColCity,
	domain.ColState,
	domain.ColDivision,
	domain.ColRegion,
}

// BusiestOptions configures BusiestStations.
type BusiestOptions struct {
	N int
	// GroupBy ranks stations within each value of this column.
	GroupBy string
	// FiscalYear restricts the window when non-zero, together with the
	// inclusive quarter range.
	FiscalYear   int
	QuarterStart int
	QuarterEnd   int
}

type stationTotal struct {
	code  string
	first int
	total int64
}

// BusiestStations ranks stations by total detraining customers. Without
// GroupBy the N busiest stations overall are returned; with it, the N
// busiest of every group in ascending group order.
func BusiestStations(f *frame.Frame, opts BusiestOptions) (*frame.Frame, error) {
	if opts.N < 1 {
		return nil, apperrors.NewValidationError("busiest station count must be at least 1", nil)
	}
	if _, err := f.Require(domain.ColStationCode); err != nil {
		return nil, err
	}
	if _, err := f.Require(domain.ColTotalDetrain); err != nil {
		return nil, err
	}
	if opts.GroupBy != "" {
		if _, err := f.Require(opts.GroupBy); err != nil {
			return nil, err
		}
	}

	window := f
	if opts.FiscalYear != 0 {
		qStart, qEnd := opts.QuarterStart, opts.QuarterEnd
		if qStart == 0 {
			qStart = 1
		}
		if qEnd == 0 {
			qEnd = 4
		}
		var err error
		if window, err = fiscalWindow(f, opts.FiscalYear, qStart, qEnd); err != nil {
			return nil, err
		}
	}

	byCode := make(map[string]*stationTotal)
	var totals []*stationTotal
	for i := 0; i < window.Len(); i++ {
		r := window.Row(i)
		code, ok := r.Str(domain.ColStationCode)
		if !ok {
			continue
		}
		st, seen := byCode[code]
		if !seen {
			st = &stationTotal{code: code, first: i}
			byCode[code] = st
			totals = append(totals, st)
		}
		if n, ok := r.Int(domain.ColTotalDetrain); ok {
			st.total += n
		}
	}
	sort.SliceStable(totals, func(i, j int) bool {
		if totals[i].total != totals[j].total {
			return totals[i].total > totals[j].total
		}
		return totals[i].code < totals[j].code
	})

	var picked []*stationTotal
	if opts.GroupBy == "" {
		picked = totals[:min(opts.N, len(totals))]
	} else {
		groups := make(map[string][]*stationTotal)
		var names []any
		for _, st := range totals {
			v := window.Row(st.first).Get(opts.GroupBy)
			if v == nil {
				continue
			}
			key := frame.KeyString(v)
			if _, ok := groups[key]; !ok {
				names = append(names, v)
			}
			groups[key] = append(groups[key], st)
		}
		sort.SliceStable(names, func(i, j int) bool { return frame.Compare(names[i], names[j]) < 0 })
		for _, name := range names {
			members := groups[frame.KeyString(name)]
			picked = append(picked, members[:min(opts.N, len(members))]...)
		}
	}

	columns := make([]string, 0, len(stationAttributes)+1)
	if opts.GroupBy != "" && !slices.Contains(stationAttributes, opts.GroupBy) {
		columns = append(columns, opts.GroupBy)
	}
	for _, c := range stationAttributes {
		if window.Has(c) {
			columns = append(columns, c)
		}
	}

	idx := make([]int, len(picked))
	sums := make([]int64, len(picked))
	for i, st := range picked {
		idx[i] = st.first
		sums[i] = st.total
	}
	out, err := window.Take(idx).Select(columns...)
	if err != nil {
		return nil, err
	}
	return out.WithColumn(frame.Ints(domain.ColTotalDetrain, sums...))
}

// fiscalWindow keeps the rows of year within the inclusive quarter range.
func fiscalWindow(f *frame.Frame, year, qStart, qEnd int) (*frame.Frame, error) {
	out, err := f.Where(domain.ColFiscalYear, series.Eq, year)
	if err != nil {
		return nil, err
	}
	if out, err = out.Where(domain.ColFiscalQuarter, series.GreaterEq, qStart); err != nil {
		return nil, err
	}
	return out.Where(domain.ColFiscalQuarter, series.LessEq, qEnd)
}
