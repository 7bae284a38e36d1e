package analytics

import (
	"fmt"
	"sort"

	"amtkcli/internal/frame"
	"amtkcli/pkg/contracts/domain"
)

// YearQuarterLabel formats a fiscal period, e.g. "FY2024 Q1".
func YearQuarterLabel(year, quarter int64) string {
	return fmt.Sprintf("FY%d Q%d", year, quarter)
}

// LabelYearQuarter adds the Fiscal Year Quarter label and a Color column.
// Colors cycle over the distinct labels in period order so adjacent periods
// differ. Rows with a missing year or quarter get missing label and color.
func LabelYearQuarter(f *frame.Frame, colors []string) (*frame.Frame, error) {
	years, err := f.Require(domain.ColFiscalYear)
	if err != nil {
		return nil, err
	}
	quarters, err := f.Require(domain.ColFiscalQuarter)
	if err != nil {
		return nil, err
	}

	type period struct{ year, quarter int64 }
	labels := make([]any, f.Len())
	seen := make(map[period]bool)
	var periods []period
	for i := range labels {
		y, yok := years.Int(i)
		q, qok := quarters.Int(i)
		if !yok || !qok {
			continue
		}
		p := period{y, q}
		labels[i] = YearQuarterLabel(y, q)
		if !seen[p] {
			seen[p] = true
			periods = append(periods, p)
		}
	}
	sort.Slice(periods, func(i, j int) bool {
		if periods[i].year != periods[j].year {
			return periods[i].year < periods[j].year
		}
		return periods[i].quarter < periods[j].quarter
	})

	colorOf := make(map[string]string, len(periods))
	for i, p := range periods {
		if len(colors) > 0 {
			colorOf[YearQuarterLabel(p.year, p.quarter)] = colors[i%len(colors)]
		}
	}
	colorValues := make([]any, f.Len())
	for i, l := range labels {
		if l == nil {
			continue
		}
		if c, ok := colorOf[l.(string)]; ok {
			colorValues[i] = c
		}
	}

	out, err := f.WithColumn(&frame.Series{Name: domain.ColYearQuarter, Kind: frame.String, Values: labels})
	if err != nil {
		return nil, err
	}
	return out.WithColumn(&frame.Series{Name: domain.ColColor, Kind: frame.String, Values: colorValues})
}

// QuarterlyAvgMinLate returns box statistics of the average minutes late
// per fiscal period, in period order.
func QuarterlyAvgMinLate(f *frame.Frame) ([]domain.BoxSummary, error) {
	labeled, err := LabelYearQuarter(f, nil)
	if err != nil {
		return nil, err
	}
	return AggregateBox(labeled, []string{domain.ColYearQuarter}, domain.ColAvgMinLate)
}
