package analytics

import (
	"sort"

	"amtkcli/internal/frame"
	"amtkcli/pkg/contracts/domain"
)

func sortGroups(groups []*group) {
	sort.SliceStable(groups, func(i, j int) bool {
		return frame.CompareTuple(groups[i].key, groups[j].key) < 0
	})
}

// sortRows stable-sorts rows by column. Missing values go last in either
// direction.
func sortRows(rows []domain.SummaryStatRow, column string, ascending bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		return lessMissingLast(sortValue(rows[i], column), sortValue(rows[j], column), ascending)
	})
}

func lessMissingLast(a, b any, ascending bool) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	}
	c := frame.Compare(a, b)
	if ascending {
		return c < 0
	}
	return c > 0
}
