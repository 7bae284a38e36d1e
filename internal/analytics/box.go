package analytics

import (
	"amtkcli/internal/frame"
	"amtkcli/pkg/contracts/domain"
)

// WhiskerIQR is the whisker reach in interquartile ranges.
const WhiskerIQR = 1.5

// AggregateBox pre-computes box plot statistics of column for each group.
// Whiskers reach the most extreme values within 1.5 IQR of the quartiles;
// values beyond them are outliers. Groups without values are omitted.
func AggregateBox(f *frame.Frame, keys []string, column string) ([]domain.BoxSummary, error) {
	keyCols := make([]*frame.Series, len(keys))
	for i, k := range keys {
		s, err := f.Require(k)
		if err != nil {
			return nil, err
		}
		keyCols[i] = s
	}
	values, err := f.Require(column)
	if err != nil {
		return nil, err
	}

	var out []domain.BoxSummary
	for _, g := range partition(f.Len(), keyCols) {
		sorted := sortedCopy(groupFloats(values, g.rows))
		if len(sorted) == 0 {
			continue
		}
		box := domain.BoxSummary{
			Count:  len(sorted),
			Q1:     percentile(sorted, 0.25),
			Median: percentile(sorted, 0.5),
			Q3:     percentile(sorted, 0.75),
		}
		for i, k := range keys {
			box.Keys = append(box.Keys, domain.GroupKey{Column: k, Value: g.key[i]})
		}

		reach := WhiskerIQR * (box.Q3 - box.Q1)
		lowFence, highFence := box.Q1-reach, box.Q3+reach
		box.LowerWhisk, box.UpperWhisk = box.Q1, box.Q3
		for _, v := range sorted {
			if v < lowFence || v > highFence {
				box.Outliers = append(box.Outliers, v)
				continue
			}
			box.LowerWhisk = min(box.LowerWhisk, v)
			box.UpperWhisk = max(box.UpperWhisk, v)
		}
		out = append(out, box)
	}
	return out, nil
}
