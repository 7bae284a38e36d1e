package network

import (
	"github.com/go-gota/gota/series"

	"amtkcli/internal/frame"
	"amtkcli/pkg/contracts/domain"
)

func byString(f *frame.Frame, column, value string) (*frame.Frame, error) {
	return f.Where(column, series.Eq, value)
}

// ByServiceLine keeps the rows of one service line, e.g. "Long Distance".
func ByServiceLine(f *frame.Frame, name string) (*frame.Frame, error) {
	return byString(f, domain.ColServiceLine, name)
}

// ByService keeps the rows of one service.
func ByService(f *frame.Frame, name string) (*frame.Frame, error) {
	return byString(f, domain.ColService, name)
}

// BySubService keeps the rows of one sub-service.
func BySubService(f *frame.Frame, name string) (*frame.Frame, error) {
	return byString(f, domain.ColSubService, name)
}

// ByStation keeps the arrivals at one station code.
func ByStation(f *frame.Frame, code string) (*frame.Frame, error) {
	return byString(f, domain.ColStationCode, code)
}

// ByTrainNumber keeps the arrivals of one train.
func ByTrainNumber(f *frame.Frame, train int64) (*frame.Frame, error) {
	return f.Where(domain.ColTrainNumber, series.Eq, train)
}

// UniqueTrains lists the distinct sub-service and train number pairs,
// ordered by sub-service then train number.
func UniqueTrains(f *frame.Frame) (*frame.Frame, error) {
	subs, err := f.Require(domain.ColSubService)
	if err != nil {
		return nil, err
	}
	trains, err := f.Require(domain.ColTrainNumber)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var idx []int
	for i := 0; i < f.Len(); i++ {
		if subs.IsNull(i) || trains.IsNull(i) {
			continue
		}
		key := frame.KeyString(subs.Values[i]) + "\x1f" + frame.KeyString(trains.Values[i])
		if !seen[key] {
			seen[key] = true
			idx = append(idx, i)
		}
	}

	out, err := f.Take(idx).Select(domain.ColSubService, domain.ColTrainNumber)
	if err != nil {
		return nil, err
	}
	return out.SortStable(func(a, b frame.Row) bool {
		return frame.CompareTuple(
			[]any{a.Get(domain.ColSubService), a.Get(domain.ColTrainNumber)},
			[]any{b.Get(domain.ColSubService), b.Get(domain.ColTrainNumber)},
		) < 0
	}), nil
}
