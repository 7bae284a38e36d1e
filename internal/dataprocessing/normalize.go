package dataprocessing

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"amtkcli/internal/frame"
)

// DefaultWhitespacePattern matches runs of two or more whitespace characters,
// including non-breaking spaces left by spreadsheet exports.
const DefaultWhitespacePattern = `[\s\p{Zs}]{2,}`

// Normalizer trims and collapses whitespace in string columns.
type Normalizer struct {
	pattern *regexp.Regexp
}

// NewNormalizer compiles the whitespace pattern.
func NewNormalizer(pattern string) (*Normalizer, error) {
	if pattern == "" {
		pattern = DefaultWhitespacePattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid whitespace pattern %q: %w", pattern, err)
	}
	return &Normalizer{pattern: re}, nil
}

// String normalizes one value: NFC composition, trim, then collapse every
// pattern match to a single space.
func (n *Normalizer) String(s string) string {
	s = norm.NFC.String(s)
	s = strings.TrimSpace(s)
	return n.pattern.ReplaceAllString(s, " ")
}

// Normalize applies String to every string column. Values that normalize to
// the empty string become missing. Other columns pass through unchanged.
func (n *Normalizer) Normalize(f *frame.Frame) *frame.Frame {
	cols := f.Series()
	for i, s := range cols {
		if s.Kind != frame.String {
			continue
		}
		values := make([]any, s.Len())
		for j, v := range s.Values {
			str, ok := v.(string)
			if !ok {
				values[j] = v
				continue
			}
			if out := n.String(str); out != "" {
				values[j] = out
			}
		}
		cols[i] = &frame.Series{Name: s.Name, Kind: s.Kind, Values: values}
	}
	out, _ := frame.New(cols...)
	return out
}

// ReplaceValues rewrites exact matches in column using fixes. It corrects
// known data-entry errors such as state abbreviations.
func ReplaceValues(f *frame.Frame, column string, fixes map[string]string) (*frame.Frame, error) {
	s, err := f.Require(column)
	if err != nil {
		return nil, err
	}
	values := make([]any, s.Len())
	for i, v := range s.Values {
		values[i] = v
		if str, ok := v.(string); ok {
			if fixed, found := fixes[str]; found {
				values[i] = fixed
			}
		}
	}
	return f.WithColumn(&frame.Series{Name: column, Kind: s.Kind, Values: values})
}

// FillFromKey overwrites target with mapping[key] for rows whose key column
// has an entry in mapping. Other rows keep their value.
func FillFromKey(f *frame.Frame, keyColumn, target string, mapping map[string]string) (*frame.Frame, error) {
	keys, err := f.Require(keyColumn)
	if err != nil {
		return nil, err
	}
	s, err := f.Require(target)
	if err != nil {
		return nil, err
	}
	values := make([]any, s.Len())
	for i := range s.Values {
		values[i] = s.Values[i]
		if k, ok := keys.Str(i); ok {
			if v, found := mapping[k]; found {
				values[i] = v
			}
		}
	}
	return f.WithColumn(&frame.Series{Name: target, Kind: s.Kind, Values: values})
}

// Normalize is a convenience wrapper building a Normalizer for pattern.
func Normalize(f *frame.Frame, pattern string) (*frame.Frame, error) {
	n, err := NewNormalizer(pattern)
	if err != nil {
		return nil, err
	}
	return n.Normalize(f), nil
}
