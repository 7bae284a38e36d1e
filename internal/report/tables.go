package report

import (
	"strings"

	"amtkcli/internal/frame"
	"amtkcli/pkg/contracts/domain"
)

// Box plot and description column names.
const (
	colCount        = "Count"
	colQ1           = "Q1"
	colMedian       = "Median"
	colQ3           = "Q3"
	colLowerWhisker = "Lower Whisker"
	colUpperWhisker = "Upper Whisker"
	colOutliers     = "Outliers"
	colStatistic    = "Statistic"
	colValue        = "Value"
	colBinCenter    = "Bin Center"
	colBinStart     = "Bin Start"
	colBinEnd       = "Bin End"
)

// boxFrame tabulates box summaries. Outliers are joined with ";".
func boxFrame(keys []string, boxes []domain.BoxSummary) (*frame.Frame, error) {
	cols := make([]*frame.Series, 0, len(keys)+7)
	for i, k := range keys {
		values := make([]any, len(boxes))
		for j, b := range boxes {
			values[j] = b.Keys[i].Value
		}
		kind := frame.String
		if len(boxes) > 0 {
			if _, ok := values[0].(int64); ok {
				kind = frame.Int
			}
		}
		cols = append(cols, &frame.Series{Name: k, Kind: kind, Values: values})
	}

	counts := make([]int64, len(boxes))
	var q1, median, q3, lower, upper []float64
	outliers := make([]string, len(boxes))
	for j, b := range boxes {
		counts[j] = int64(b.Count)
		q1 = append(q1, b.Q1)
		median = append(median, b.Median)
		q3 = append(q3, b.Q3)
		lower = append(lower, b.LowerWhisk)
		upper = append(upper, b.UpperWhisk)
		parts := make([]string, len(b.Outliers))
		for i, o := range b.Outliers {
			parts[i] = formatNumber(o)
		}
		outliers[j] = strings.Join(parts, ";")
	}
	cols = append(cols,
		frame.Ints(colCount, counts...),
		frame.Floats(colQ1, q1...),
		frame.Floats(colMedian, median...),
		frame.Floats(colQ3, q3...),
		frame.Floats(colLowerWhisker, lower...),
		frame.Floats(colUpperWhisker, upper...),
		frame.Strings(colOutliers, outliers...),
	)
	return frame.New(cols...)
}

// describeFrame lists a numeric description as statistic/value pairs.
func describeFrame(d domain.NumericDescription) (*frame.Frame, error) {
	stats := []struct {
		name  string
		value float64
	}{
		{"count", float64(d.Count)},
		{"mean", d.Center.Mean},
		{"median", d.Center.Median},
		{"mode", d.Center.Mode},
		{"std", d.Spread.Std},
		{"variance", d.Spread.Variance},
		{"range", d.Spread.Range},
		{"iqr", d.Spread.IQR},
		{"min", d.Position.Min},
		{"q1", d.Position.Q1},
		{"q2", d.Position.Q2},
		{"q3", d.Position.Q3},
		{"max", d.Position.Max},
	}
	names := make([]string, len(stats))
	values := make([]float64, len(stats))
	for i, s := range stats {
		names[i] = s.name
		values[i] = s.value
	}
	return frame.New(frame.Strings(colStatistic, names...), frame.Floats(colValue, values...))
}

// binFrame tabulates occupied histogram bins.
func binFrame(rows []domain.BinRow) (*frame.Frame, error) {
	var centers, starts, ends []float64
	counts := make([]int64, len(rows))
	for i, r := range rows {
		centers = append(centers, r.Center)
		starts = append(starts, r.Start)
		ends = append(ends, r.End)
		counts[i] = int64(r.Count)
	}
	return frame.New(
		frame.Floats(colBinCenter, centers...),
		frame.Floats(colBinStart, starts...),
		frame.Floats(colBinEnd, ends...),
		frame.Ints(colCount, counts...),
	)
}
