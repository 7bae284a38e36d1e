package analytics

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"

	apperrors "amtkcli/internal/errors"
	"amtkcli/internal/frame"
	"amtkcli/pkg/contracts/domain"
)

// groupIDColumn carries each row's group ordinal into gota's GroupBy, which
// joins key values with "_" and cannot group on a missing key.
const groupIDColumn = "__group__"

var aggregationByFunc = map[domain.AggFunc]dataframe.AggregationType{
	domain.AggSum:    dataframe.Aggregation_SUM,
	domain.AggMean:   dataframe.Aggregation_MEAN,
	domain.AggMedian: dataframe.Aggregation_MEDIAN,
	domain.AggMin:    dataframe.Aggregation_MIN,
	domain.AggMax:    dataframe.Aggregation_MAX,
	domain.AggStd:    dataframe.Aggregation_STD,
	domain.AggCount:  dataframe.Aggregation_COUNT,
}

func aggregationTypes(funcs []domain.AggFunc) ([]dataframe.AggregationType, error) {
	types := make([]dataframe.AggregationType, len(funcs))
	for i, fn := range funcs {
		t, ok := aggregationByFunc[fn]
		if !ok {
			return nil, apperrors.NewValidationError(fmt.Sprintf("unknown aggregate function %q", fn), nil)
		}
		types[i] = t
	}
	return types, nil
}

// groupedFrame holds the grouped rows of a frame in group order, tagged
// with their group ordinal.
type groupedFrame struct {
	rows   *frame.Frame
	ids    []string
	groups int
}

func newGroupedFrame(f *frame.Frame, groups []*group) *groupedFrame {
	var idx []int
	var ids []string
	for gi, g := range groups {
		id := "g" + strconv.Itoa(gi)
		for _, r := range g.rows {
			idx = append(idx, r)
			ids = append(ids, id)
		}
	}
	return &groupedFrame{rows: f.Take(idx), ids: ids, groups: len(groups)}
}

// aggregate computes types over the non-missing values of column for every
// group. Entry i belongs to group i; it is nil when the group has no value
// in column, and holds nil for an aggregate gota reports as NaN (std of one
// value).
func (g *groupedFrame) aggregate(column string, types []dataframe.AggregationType) ([][]*float64, error) {
	out := make([][]*float64, g.groups)
	if len(types) == 0 || g.rows.Len() == 0 {
		return out, nil
	}
	sub, err := g.rows.Select(column)
	if err != nil {
		return nil, err
	}
	if sub, err = sub.WithColumn(frame.Strings(groupIDColumn, g.ids...)); err != nil {
		return nil, err
	}
	if sub, err = sub.NotNull(column); err != nil {
		return nil, err
	}
	if sub.Len() == 0 {
		return out, nil
	}

	groups := sub.DataFrame().GroupBy(groupIDColumn)
	if groups.Err != nil {
		return nil, apperrors.NewSchemaViolation(column, fmt.Sprintf("group %q: %v", column, groups.Err))
	}
	columns := make([]string, len(types))
	for i := range columns {
		columns[i] = column
	}
	agg := groups.Aggregation(types, columns)
	if agg.Err != nil {
		return nil, apperrors.NewSchemaViolation(column, fmt.Sprintf("aggregate %q: %v", column, agg.Err))
	}

	for _, m := range agg.Maps() {
		id, _ := m[groupIDColumn].(string)
		gi, err := strconv.Atoi(strings.TrimPrefix(id, "g"))
		if err != nil || gi < 0 || gi >= g.groups {
			return nil, fmt.Errorf("aggregate %q: unexpected group %q", column, id)
		}
		values := make([]*float64, len(types))
		for i, t := range types {
			if v, ok := m[fmt.Sprintf("%s_%s", column, t)].(float64); ok && !math.IsNaN(v) {
				values[i] = &v
			}
		}
		out[gi] = values
	}
	return out, nil
}
