package report

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"amtkcli/internal/analytics"
	"amtkcli/internal/config"
	apperrors "amtkcli/internal/errors"
	"amtkcli/internal/frame"
	"amtkcli/internal/network"
	"amtkcli/pkg/contracts/domain"
)

// Table is one named report output.
type Table struct {
	Name  string
	Frame *frame.Frame
}

// Builder derives the report tables from the canonical table.
type Builder struct {
	analysis config.AnalysisConfig
	routes   map[string]domain.SubServiceRoute
	logger   *slog.Logger
}

// NewBuilder creates a builder using the analysis settings and the
// sub-service routes used for per-train route tables.
func NewBuilder(analysis config.AnalysisConfig, routes []domain.SubServiceRoute, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	byName := make(map[string]domain.SubServiceRoute, len(routes))
	for _, r := range routes {
		byName[r.SubService] = r
	}
	return &Builder{analysis: analysis, routes: byName, logger: logger}
}

// Build computes every report table. Tables that need data the canonical
// table does not have, such as a regression over fewer than two rows, are
// skipped with a warning; route tables fail on unknown stations.
func (b *Builder) Build(f *frame.Frame) ([]Table, error) {
	metrics := b.analysis.Metrics
	funcs := b.analysis.AggFuncs()
	totals := analytics.TotalsOf(f)

	var tables []Table
	add := func(name string, t *frame.Frame) {
		tables = append(tables, Table{Name: name, Frame: t})
	}

	networkRow, err := analytics.GetSumStats(f, metrics, funcs)
	if err != nil {
		return nil, err
	}
	networkFrame, err := analytics.SummaryFrame([]domain.SummaryStatRow{networkRow},
		analytics.SummaryOptions{Metrics: metrics, Funcs: funcs})
	if err != nil {
		return nil, err
	}
	add("network_summary", networkFrame)

	for _, g := range []struct {
		name string
		keys []string
	}{
		{"service_line_summary", []string{domain.ColServiceLine}},
		{"service_summary", []string{domain.ColServiceLine, domain.ColService}},
		{"sub_service_summary", []string{domain.ColServiceLine, domain.ColService, domain.ColSubService}},
		{"region_summary", []string{domain.ColRegion}},
	} {
		t, err := b.groupSummary(f, g.keys, totals)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", g.name, err)
		}
		add(g.name, t)
	}

	quarterly, err := b.stationQuarterly(f, totals)
	if err != nil {
		return nil, fmt.Errorf("station quarterly summary: %w", err)
	}
	add("station_quarterly_summary", quarterly)

	quarterBoxes, err := analytics.QuarterlyAvgMinLate(f)
	if err != nil {
		return nil, err
	}
	quarterBoxFrame, err := boxFrame([]string{domain.ColYearQuarter}, quarterBoxes)
	if err != nil {
		return nil, err
	}
	add("quarterly_avg_min_late_box", quarterBoxFrame)

	lineBoxes, err := analytics.AggregateBox(f, []string{domain.ColServiceLine}, domain.ColAvgMinLate)
	if err != nil {
		return nil, err
	}
	lineBoxFrame, err := boxFrame([]string{domain.ColServiceLine}, lineBoxes)
	if err != nil {
		return nil, err
	}
	add("service_line_avg_min_late_box", lineBoxFrame)

	avgMinLateCol, err := f.Require(domain.ColAvgMinLate)
	if err != nil {
		return nil, err
	}
	avgMinLate := avgMinLateCol.NonNullFloats()
	if len(avgMinLate) > 0 {
		desc, err := analytics.DescribeNumeric(avgMinLate)
		if err != nil {
			return nil, err
		}
		t, err := describeFrame(desc)
		if err != nil {
			return nil, err
		}
		add("avg_min_late_description", t)

		bins, err := analytics.CreateBins(avgMinLate, b.analysis.BinWidth)
		if err != nil {
			return nil, err
		}
		rows, err := analytics.BinData(bins.Values, bins.Edges)
		if err != nil {
			return nil, err
		}
		if t, err = binFrame(rows); err != nil {
			return nil, err
		}
		add("avg_min_late_bins", t)
	} else {
		b.logger.Warn("No average minutes late values, skipping description and bins")
	}

	busiest, err := analytics.BusiestStations(f, analytics.BusiestOptions{N: b.analysis.BusiestN})
	if err != nil {
		return nil, err
	}
	add("busiest_stations", busiest)
	busiestByRegion, err := analytics.BusiestStations(f, analytics.BusiestOptions{N: b.analysis.BusiestN, GroupBy: domain.ColRegion})
	if err != nil {
		return nil, err
	}
	add("busiest_stations_by_region", busiestByRegion)

	split, err := analytics.DetrainSplit(f, []string{domain.ColServiceLine})
	if err != nil {
		return nil, err
	}
	add("detraining_split", split)

	counts, err := analytics.StationCounts(f, []string{domain.ColRegion, domain.ColDivision})
	if err != nil {
		return nil, err
	}
	add("station_counts", counts)

	reg, err := analytics.RegressFrame(f, domain.ColRouteMiles, domain.ColAvgMinLate)
	switch {
	case err == nil:
		predictions, err := analytics.PredictionTable(f, reg, b.analysis.RegressionMaxMiles, b.analysis.RegressionStep)
		if err != nil {
			return nil, err
		}
		add("route_miles_predictions", predictions)
		b.logger.Info("Route miles regression",
			slog.Float64("slope", reg.Slope),
			slog.Float64("intercept", reg.Intercept),
			slog.Float64("r_value", reg.RValue),
			slog.Float64("std_err", reg.StdErr),
			slog.Int("n", reg.N))
	case apperrors.TypeOf(err) == apperrors.ErrTypeValidation:
		b.logger.Warn("Skipping route miles regression", slog.String("reason", err.Error()))
	default:
		return nil, err
	}

	routeTables, err := b.routeTables(f, metrics, funcs)
	if err != nil {
		return nil, err
	}
	tables = append(tables, routeTables...)

	if b.analysis.SampleSize > 0 {
		add("sample", analytics.Sample(f, b.analysis.SampleSize, b.analysis.Seed))
	}
	return tables, nil
}

func (b *Builder) groupSummary(f *frame.Frame, keys []string, totals analytics.Totals) (*frame.Frame, error) {
	rows, opts, err := analytics.GetSumStatsByGroup(f, keys, b.analysis.Metrics, b.analysis.AggFuncs(), totals)
	if err != nil {
		return nil, err
	}
	return analytics.SummaryFrame(rows, opts)
}

// stationQuarterly summarizes the configured stations per fiscal period,
// ordered by station then period, with period labels and colors.
func (b *Builder) stationQuarterly(f *frame.Frame, totals analytics.Totals) (*frame.Frame, error) {
	subset := f
	if len(b.analysis.Stations) > 0 {
		wanted := make(map[string]bool, len(b.analysis.Stations))
		for _, s := range b.analysis.Stations {
			wanted[s] = true
		}
		subset = f.Filter(func(r frame.Row) bool {
			code, ok := r.Str(domain.ColStationCode)
			return ok && wanted[code]
		})
	}

	opts := analytics.SummaryOptions{
		GroupKeys:            []string{domain.ColStationCode, domain.ColFiscalYear, domain.ColFiscalQuarter},
		Metrics:              b.analysis.Metrics,
		Funcs:                b.analysis.AggFuncs(),
		GrandTotalArrivals:   &totals.Arrivals,
		GrandTotalDetraining: &totals.Detraining,
		SortBy:               domain.ColStationCode,
		Ascending:            true,
	}
	rows, err := analytics.Summarize(subset, opts)
	if err != nil {
		return nil, err
	}
	t, err := analytics.SummaryFrame(rows, opts)
	if err != nil {
		return nil, err
	}
	return analytics.LabelYearQuarter(t, b.analysis.QuarterColors)
}

// routeTables builds one route-ordered station summary per configured
// train, in ascending train order.
func (b *Builder) routeTables(f *frame.Frame, metrics []string, funcs []domain.AggFunc) ([]Table, error) {
	type train struct {
		number int64
		cfg    config.TrainConfig
	}
	var trains []train
	for id, tc := range b.analysis.Trains {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, apperrors.NewConfigError(fmt.Sprintf("train %q is not a number", id), err)
		}
		trains = append(trains, train{n, tc})
	}
	sort.Slice(trains, func(i, j int) bool { return trains[i].number < trains[j].number })

	var tables []Table
	for _, t := range trains {
		route, ok := b.routes[t.cfg.SubService]
		if !ok {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("sub service %q for train %d", t.cfg.SubService, t.number))
		}
		direction := domain.Direction(t.cfg.Direction)
		rows, opts, err := network.GetRouteSumStats(f, t.number, direction, route, metrics, funcs)
		if err != nil {
			return nil, err
		}
		tf, err := analytics.SummaryFrame(rows, opts)
		if err != nil {
			return nil, err
		}
		tables = append(tables, Table{Name: fmt.Sprintf("route_%d_%s", t.number, direction), Frame: tf})
	}
	return tables, nil
}
