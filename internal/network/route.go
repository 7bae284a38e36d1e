package network

import (
	"fmt"

	"amtkcli/internal/analytics"
	apperrors "amtkcli/internal/errors"
	"amtkcli/internal/frame"
	"amtkcli/pkg/contracts/domain"
)

// BuildRoute returns the arrivals of train ordered by the route's declared
// station order for direction, with a Station Order column holding each
// stop's position in that order. Coordinates are never used for ordering.
func BuildRoute(f *frame.Frame, train int64, direction domain.Direction, route domain.SubServiceRoute) (*frame.Frame, error) {
	order, ok := route.Order(direction)
	if !ok || len(order) == 0 {
		return nil, apperrors.NewSchemaViolation(domain.ColStationOrder,
			fmt.Sprintf("sub service %q declares no %s station order", route.SubService, direction))
	}
	position := make(map[string]int64, len(order))
	for i, code := range order {
		if _, dup := position[code]; !dup {
			position[code] = int64(i)
		}
	}

	stops, err := ByTrainNumber(f, train)
	if err != nil {
		return nil, err
	}
	codes, err := stops.Require(domain.ColStationCode)
	if err != nil {
		return nil, err
	}

	positions := make([]int64, stops.Len())
	for i := range positions {
		code, ok := codes.Str(i)
		if !ok {
			return nil, apperrors.NewSchemaViolation(domain.ColStationCode,
				fmt.Sprintf("train %d has an arrival without a station code", train))
		}
		p, known := position[code]
		if !known {
			return nil, apperrors.NewUnknownStation(code, train)
		}
		positions[i] = p
	}

	ordered, err := stops.WithColumn(frame.Ints(domain.ColStationOrder, positions...))
	if err != nil {
		return nil, err
	}
	return ordered.Arrange(domain.ColStationOrder, false)
}

// GetRouteSumStats summarizes train's arrivals per station and returns the
// rows in route traversal order. Ratios are relative to the train's own
// totals.
func GetRouteSumStats(f *frame.Frame, train int64, direction domain.Direction, route domain.SubServiceRoute, metrics []string, funcs []domain.AggFunc) ([]domain.SummaryStatRow, analytics.SummaryOptions, error) {
	built, err := BuildRoute(f, train, direction, route)
	if err != nil {
		return nil, analytics.SummaryOptions{}, err
	}
	totals := analytics.TotalsOf(built)
	opts := analytics.SummaryOptions{
		GroupKeys:            []string{domain.ColStationOrder, domain.ColStationCode},
		Metrics:              metrics,
		Funcs:                funcs,
		GrandTotalArrivals:   &totals.Arrivals,
		GrandTotalDetraining: &totals.Detraining,
		SortBy:               domain.ColStationOrder,
		Ascending:            true,
	}
	rows, err := analytics.Summarize(built, opts)
	if err != nil {
		return nil, opts, err
	}
	return rows, opts, nil
}
