package dataprocessing

import (
	"fmt"
	"strings"

	apperrors "amtkcli/internal/errors"
	"amtkcli/internal/frame"
)

// SplitColumn splits source on sep into the target columns. Each segment is
// trimmed; absent or empty segments are missing. Segments beyond the last
// target are joined back into it. The source column is kept.
func SplitColumn(f *frame.Frame, source, sep string, targets ...string) (*frame.Frame, error) {
	if len(targets) == 0 {
		return nil, apperrors.NewValidationError("split needs at least one target column", nil)
	}
	s, err := f.Require(source)
	if err != nil {
		return nil, err
	}

	parts := make([][]any, len(targets))
	for t := range parts {
		parts[t] = make([]any, s.Len())
	}
	for i := range s.Values {
		str, ok := s.Str(i)
		if !ok {
			continue
		}
		segments := strings.SplitN(str, sep, len(targets))
		for t, seg := range segments {
			if seg = strings.TrimSpace(seg); seg != "" {
				parts[t][i] = seg
			}
		}
	}

	out := f
	for t, name := range targets {
		out, err = out.WithColumn(&frame.Series{Name: name, Kind: frame.String, Values: parts[t]})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// MergeByPriority overwrites primary with every non-missing value of
// secondary, then drops secondary.
func MergeByPriority(f *frame.Frame, primary, secondary string) (*frame.Frame, error) {
	p, err := f.Require(primary)
	if err != nil {
		return nil, err
	}
	s, err := f.Require(secondary)
	if err != nil {
		return nil, err
	}
	values := make([]any, p.Len())
	for i := range p.Values {
		values[i] = p.Values[i]
		if s.Values[i] != nil {
			values[i] = s.Values[i]
		}
	}
	out, err := f.WithColumn(&frame.Series{Name: primary, Kind: p.Kind, Values: values})
	if err != nil {
		return nil, err
	}
	return out.Drop(secondary), nil
}

// Project returns exactly columns, in order. Extra columns are dropped; a
// declared column that is absent is a schema violation.
func Project(f *frame.Frame, columns []string) (*frame.Frame, error) {
	var missing []string
	for _, c := range columns {
		if !f.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewSchemaViolation(missing[0],
			fmt.Sprintf("missing declared columns: %s", strings.Join(missing, ", "))).
			WithContext("missing", missing)
	}
	return f.Select(columns...)
}

// EnsureColumns appends a missing column of the given kind for every name
// absent from f.
func EnsureColumns(f *frame.Frame, schema Schema, names ...string) (*frame.Frame, error) {
	out := f
	for _, n := range names {
		if out.Has(n) {
			continue
		}
		var err error
		out, err = out.WithColumn(frame.Missing(n, schema.KindOf(n), out.Len()))
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DropPrefixed removes every column whose name starts with prefix.
func DropPrefixed(f *frame.Frame, prefix string) *frame.Frame {
	var drop []string
	for _, c := range f.Columns() {
		if strings.HasPrefix(c, prefix) {
			drop = append(drop, c)
		}
	}
	return f.Drop(drop...)
}
