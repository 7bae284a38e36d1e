package dataprocessing

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	apperrors "amtkcli/internal/errors"
	"amtkcli/internal/frame"
)

// DefaultSentinelTokens are the placeholders the extracts use for "no value".
var DefaultSentinelTokens = []string{"--"}

// SentinelReport counts placeholder tokens replaced with missing values.
type SentinelReport struct {
	Counts map[string]int `json:"counts"`
}

// Total returns the number of replaced values over all columns.
func (r SentinelReport) Total() int {
	n := 0
	for _, c := range r.Counts {
		n += c
	}
	return n
}

// Columns returns the columns with at least one replacement, sorted.
func (r SentinelReport) Columns() []string {
	cols := make([]string, 0, len(r.Counts))
	for c, n := range r.Counts {
		if n > 0 {
			cols = append(cols, c)
		}
	}
	sort.Strings(cols)
	return cols
}

// Resolve coerces every column declared numeric in schema. Sentinel tokens
// become missing and are counted; anything else that does not parse fails
// with a schema violation naming the column, row and value. String columns
// pass through. Columns declared in schema but absent from f are ignored.
func Resolve(f *frame.Frame, schema Schema, tokens []string) (*frame.Frame, SentinelReport, error) {
	report := SentinelReport{Counts: make(map[string]int)}
	sentinel := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		sentinel[strings.TrimSpace(t)] = true
	}

	cols := f.Series()
	for i, s := range cols {
		kind := schema.KindOf(s.Name)
		if kind == frame.String {
			continue
		}
		values := make([]any, s.Len())
		for row, v := range s.Values {
			out, isSentinel, err := coerce(v, kind, sentinel)
			if err != nil {
				return nil, report, apperrors.NewSchemaViolation(s.Name,
					fmt.Sprintf("column %q row %d: cannot convert %q to %s", s.Name, row, fmt.Sprint(v), kind)).
					WithContext("row", row).
					WithContext("value", fmt.Sprint(v))
			}
			if isSentinel {
				report.Counts[s.Name]++
			}
			values[row] = out
		}
		cols[i] = &frame.Series{Name: s.Name, Kind: kind, Values: values}
	}

	out, err := frame.New(cols...)
	if err != nil {
		return nil, report, err
	}
	return out, report, nil
}

func coerce(v any, kind frame.Kind, sentinel map[string]bool) (any, bool, error) {
	switch x := v.(type) {
	case nil:
		return nil, false, nil
	case int64:
		if kind == frame.Float {
			return float64(x), false, nil
		}
		return x, false, nil
	case float64:
		if math.IsNaN(x) {
			return nil, false, nil
		}
		if math.IsInf(x, 0) {
			return nil, false, fmt.Errorf("non-finite value %v", x)
		}
		if kind == frame.Int {
			if x != math.Trunc(x) {
				return nil, false, fmt.Errorf("non-integral value %v", x)
			}
			return int64(x), false, nil
		}
		return x, false, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil, false, nil
		}
		if sentinel[s] {
			return nil, true, nil
		}
		s = strings.ReplaceAll(s, ",", "")
		if kind == frame.Int {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n, false, nil
			}
		}
		fv, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false, err
		}
		// ParseFloat accepts "NaN" and "Inf" spellings; only sentinels and
		// blanks may become missing.
		if math.IsNaN(fv) || math.IsInf(fv, 0) {
			return nil, false, fmt.Errorf("non-finite value %q", x)
		}
		if kind == frame.Int {
			if fv != math.Trunc(fv) {
				return nil, false, fmt.Errorf("non-integral value %q", x)
			}
			return int64(fv), false, nil
		}
		return fv, false, nil
	default:
		return nil, false, fmt.Errorf("unsupported value type %T", v)
	}
}
