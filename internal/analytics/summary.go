package analytics

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-gota/gota/dataframe"

	apperrors "amtkcli/internal/errors"
	"amtkcli/internal/frame"
	"amtkcli/pkg/contracts/domain"
)

// SummaryOptions configures Summarize.
type SummaryOptions struct {
	// GroupKeys partition the rows. Empty means the whole table is one group.
	GroupKeys []string
	Metrics   []string
	Funcs     []domain.AggFunc
	// Grand totals enable the arrival and detraining ratio columns.
	GrandTotalArrivals   *int
	GrandTotalDetraining *float64
	// SortBy defaults to Train Arrivals, descending unless Ascending.
	SortBy    string
	Ascending bool
}

// Totals are the network-wide denominators of the ratio columns.
type Totals struct {
	Arrivals   int
	Detraining float64
}

// TotalsOf computes the totals of f.
func TotalsOf(f *frame.Frame) Totals {
	t := Totals{Arrivals: f.Len()}
	if s := f.Col(domain.ColTotalDetrain); s != nil {
		t.Detraining = calculateSum(s.NonNullFloats())
	}
	return t
}

// AggregateColumns lists the "{metric} {func}" names in output order.
func (o SummaryOptions) AggregateColumns() []string {
	out := make([]string, 0, len(o.Metrics)*len(o.Funcs))
	for _, m := range o.Metrics {
		for _, fn := range o.Funcs {
			out = append(out, domain.AggregateColumn(m, fn))
		}
	}
	return out
}

func (o SummaryOptions) sortBy() string {
	if o.SortBy == "" {
		return domain.ColTrainArrivals
	}
	return o.SortBy
}

type group struct {
	key  []any
	rows []int
}

// Summarize groups f by the option keys and computes per-group aggregates.
// Rows with a missing key value are left out of every group. Groups start
// in ascending key order and are then stable-sorted by SortBy, which must
// name a summary column.
func Summarize(f *frame.Frame, opts SummaryOptions) ([]domain.SummaryStatRow, error) {
	keyCols := make([]*frame.Series, len(opts.GroupKeys))
	for i, k := range opts.GroupKeys {
		s, err := f.Require(k)
		if err != nil {
			return nil, err
		}
		keyCols[i] = s
	}
	for _, m := range opts.Metrics {
		if _, err := f.Require(m); err != nil {
			return nil, err
		}
	}
	if err := opts.checkSortBy(); err != nil {
		return nil, err
	}
	types, err := aggregationTypes(opts.Funcs)
	if err != nil {
		return nil, err
	}
	detrain := f.Col(domain.ColTotalDetrain)
	if opts.GrandTotalDetraining != nil && detrain == nil {
		_, err := f.Require(domain.ColTotalDetrain)
		return nil, err
	}

	groups := partition(f.Len(), keyCols)
	grouped := newGroupedFrame(f, groups)

	rows := make([]domain.SummaryStatRow, len(groups))
	for gi, g := range groups {
		rows[gi].TrainArrivals = len(g.rows)
		for i, k := range opts.GroupKeys {
			rows[gi].Keys = append(rows[gi].Keys, domain.GroupKey{Column: k, Value: g.key[i]})
		}
	}
	for _, m := range opts.Metrics {
		byGroup, err := grouped.aggregate(m, types)
		if err != nil {
			return nil, err
		}
		for gi := range rows {
			for fi, fn := range opts.Funcs {
				var v *float64
				if byGroup[gi] != nil {
					v = byGroup[gi][fi]
				} else if fn == domain.AggCount {
					v = new(float64)
				}
				rows[gi].Aggregates = append(rows[gi].Aggregates, domain.Aggregate{Column: domain.AggregateColumn(m, fn), Value: v})
			}
		}
	}
	if detrain != nil {
		sums, err := grouped.aggregate(domain.ColTotalDetrain, []dataframe.AggregationType{dataframe.Aggregation_SUM})
		if err != nil {
			return nil, err
		}
		for gi := range rows {
			if sums[gi] != nil && sums[gi][0] != nil {
				rows[gi].DetrainingSum = *sums[gi][0]
			}
		}
	}
	for gi := range rows {
		if opts.GrandTotalArrivals != nil {
			rows[gi].ArrivalsRatio = ratio(float64(rows[gi].TrainArrivals), float64(*opts.GrandTotalArrivals))
		}
		if opts.GrandTotalDetraining != nil {
			rows[gi].DetrainingRatio = ratio(rows[gi].DetrainingSum, *opts.GrandTotalDetraining)
		}
	}

	sortRows(rows, opts.sortBy(), opts.Ascending)
	return rows, nil
}

// checkSortBy accepts a group key, an aggregate column, Train Arrivals or
// one of the ratio columns.
func (o SummaryOptions) checkSortBy() error {
	column := o.sortBy()
	switch column {
	case domain.ColTrainArrivals, domain.ColArrivalsRatio, domain.ColDetrainingRatio:
		return nil
	}
	if slices.Contains(o.GroupKeys, column) || slices.Contains(o.AggregateColumns(), column) {
		return nil
	}
	return apperrors.NewSchemaViolation(column, fmt.Sprintf("cannot sort summary by %q: not a summary column", column))
}

// partition splits row indices by key tuple, ordered by key.
func partition(n int, keyCols []*frame.Series) []*group {
	if len(keyCols) == 0 {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return []*group{{rows: all}}
	}

	index := make(map[string]*group)
	var groups []*group
next:
	for i := 0; i < n; i++ {
		key := make([]any, len(keyCols))
		parts := make([]string, len(keyCols))
		for j, s := range keyCols {
			if s.IsNull(i) {
				continue next
			}
			key[j] = s.Values[i]
			parts[j] = frame.KeyString(s.Values[i])
		}
		id := strings.Join(parts, "\x1f")
		g, ok := index[id]
		if !ok {
			g = &group{key: key}
			index[id] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, i)
	}
	sortGroups(groups)
	return groups
}

func groupFloats(s *frame.Series, rows []int) []float64 {
	out := make([]float64, 0, len(rows))
	for _, i := range rows {
		if v, ok := s.Float(i); ok {
			out = append(out, v)
		}
	}
	return out
}

func ratio(part, total float64) *float64 {
	if total == 0 {
		return nil
	}
	r := part / total
	return &r
}

// sortValue resolves column against a summary row.
func sortValue(r domain.SummaryStatRow, column string) any {
	switch column {
	case domain.ColTrainArrivals:
		return int64(r.TrainArrivals)
	case domain.ColArrivalsRatio:
		return floatOrNil(r.ArrivalsRatio)
	case domain.ColDetrainingRatio:
		return floatOrNil(r.DetrainingRatio)
	}
	if v, ok := r.Value(column); ok {
		return floatOrNil(v)
	}
	v, _ := r.Key(column)
	return v
}

func floatOrNil(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

// SummaryFrame tabulates rows for export using the layout implied by opts:
// key columns, Train Arrivals, the aggregates, then the ratio columns when
// grand totals were given.
func SummaryFrame(rows []domain.SummaryStatRow, opts SummaryOptions) (*frame.Frame, error) {
	var cols []*frame.Series
	for i, k := range opts.GroupKeys {
		values := make([]any, len(rows))
		for j, r := range rows {
			if i < len(r.Keys) {
				values[j] = r.Keys[i].Value
			}
		}
		cols = append(cols, &frame.Series{Name: k, Kind: inferKind(values), Values: values})
	}

	arrivals := make([]int64, len(rows))
	for j, r := range rows {
		arrivals[j] = int64(r.TrainArrivals)
	}
	cols = append(cols, frame.Ints(domain.ColTrainArrivals, arrivals...))

	for _, name := range opts.AggregateColumns() {
		values := make([]any, len(rows))
		for j, r := range rows {
			v, ok := r.Value(name)
			if !ok {
				return nil, fmt.Errorf("summary row %d has no %q aggregate", j, name)
			}
			values[j] = floatOrNil(v)
		}
		cols = append(cols, &frame.Series{Name: name, Kind: frame.Float, Values: values})
	}

	if opts.GrandTotalArrivals != nil {
		cols = append(cols, ratioSeries(domain.ColArrivalsRatio, rows, func(r domain.SummaryStatRow) *float64 { return r.ArrivalsRatio }))
	}
	if opts.GrandTotalDetraining != nil {
		cols = append(cols, ratioSeries(domain.ColDetrainingRatio, rows, func(r domain.SummaryStatRow) *float64 { return r.DetrainingRatio }))
	}
	return frame.New(cols...)
}

func ratioSeries(name string, rows []domain.SummaryStatRow, get func(domain.SummaryStatRow) *float64) *frame.Series {
	values := make([]any, len(rows))
	for j, r := range rows {
		values[j] = floatOrNil(get(r))
	}
	return &frame.Series{Name: name, Kind: frame.Float, Values: values}
}

func inferKind(values []any) frame.Kind {
	kind := frame.String
	for _, v := range values {
		switch v.(type) {
		case int64:
			kind = frame.Int
		case float64:
			return frame.Float
		case string:
			return frame.String
		}
	}
	return kind
}

// GetSumStats summarizes the whole table as one row.
func GetSumStats(f *frame.Frame, metrics []string, funcs []domain.AggFunc) (domain.SummaryStatRow, error) {
	rows, err := Summarize(f, SummaryOptions{Metrics: metrics, Funcs: funcs})
	if err != nil {
		return domain.SummaryStatRow{}, err
	}
	return rows[0], nil
}

// GetSumStatsByGroup summarizes f by keys with arrival and detraining ratios.
// The ratio denominators come from totals when given, otherwise from f.
func GetSumStatsByGroup(f *frame.Frame, keys, metrics []string, funcs []domain.AggFunc, totals ...Totals) ([]domain.SummaryStatRow, SummaryOptions, error) {
	t := TotalsOf(f)
	if len(totals) > 0 {
		t = totals[0]
	}
	opts := SummaryOptions{
		GroupKeys:            keys,
		Metrics:              metrics,
		Funcs:                funcs,
		GrandTotalArrivals:   &t.Arrivals,
		GrandTotalDetraining: &t.Detraining,
	}
	rows, err := Summarize(f, opts)
	return rows, opts, err
}
