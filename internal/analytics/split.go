package analytics

import (
	"amtkcli/internal/frame"
	"amtkcli/pkg/contracts/domain"
)

// Arrival status labels used by DetrainSplit.
const (
	StatusOnTime = "On Time"
	StatusLate   = "Late"
)

// DetrainSplit reshapes detraining totals per group into long form: two rows
// per group holding the on-time and late passenger counts.
func DetrainSplit(f *frame.Frame, keys []string) (*frame.Frame, error) {
	rows, err := Summarize(f, SummaryOptions{
		GroupKeys: keys,
		Metrics:   []string{domain.ColTotalDetrain, domain.ColLateDetrain},
		Funcs:     []domain.AggFunc{domain.AggSum},
	})
	if err != nil {
		return nil, err
	}

	keyValues := make([][]any, len(keys))
	var status []string
	var passengers []int64
	for _, r := range rows {
		total := valueOrZero(r, domain.AggregateColumn(domain.ColTotalDetrain, domain.AggSum))
		late := valueOrZero(r, domain.AggregateColumn(domain.ColLateDetrain, domain.AggSum))
		for _, split := range []struct {
			label string
			n     float64
		}{{StatusOnTime, total - late}, {StatusLate, late}} {
			for i := range keys {
				keyValues[i] = append(keyValues[i], r.Keys[i].Value)
			}
			status = append(status, split.label)
			passengers = append(passengers, int64(split.n))
		}
	}

	cols := make([]*frame.Series, 0, len(keys)+2)
	for i, k := range keys {
		values := keyValues[i]
		if values == nil {
			values = []any{}
		}
		cols = append(cols, &frame.Series{Name: k, Kind: inferKind(values), Values: values})
	}
	cols = append(cols,
		frame.Strings(domain.ColArrivalStatus, status...),
		frame.Ints(domain.ColPassengers, passengers...),
	)
	return frame.New(cols...)
}

func valueOrZero(r domain.SummaryStatRow, column string) float64 {
	if v, ok := r.Value(column); ok && v != nil {
		return *v
	}
	return 0
}
