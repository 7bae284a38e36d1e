package analytics

import (
	"amtkcli/internal/frame"
	"amtkcli/pkg/contracts/domain"
)

// StationCounts counts distinct arrival station codes per group, in
// ascending key order. With no keys it returns a single row.
func StationCounts(f *frame.Frame, keys []string) (*frame.Frame, error) {
	keyCols := make([]*frame.Series, len(keys))
	for i, k := range keys {
		s, err := f.Require(k)
		if err != nil {
			return nil, err
		}
		keyCols[i] = s
	}
	codes, err := f.Require(domain.ColStationCode)
	if err != nil {
		return nil, err
	}

	groups := partition(f.Len(), keyCols)
	keyValues := make([][]any, len(keys))
	counts := make([]int64, len(groups))
	for gi, g := range groups {
		distinct := make(map[string]bool)
		for _, i := range g.rows {
			if c, ok := codes.Str(i); ok {
				distinct[c] = true
			}
		}
		counts[gi] = int64(len(distinct))
		for i := range keys {
			keyValues[i] = append(keyValues[i], g.key[i])
		}
	}

	cols := make([]*frame.Series, 0, len(keys)+1)
	for i, k := range keys {
		values := keyValues[i]
		if values == nil {
			values = []any{}
		}
		cols = append(cols, &frame.Series{Name: k, Kind: inferKind(values), Values: values})
	}
	cols = append(cols, frame.Ints(domain.ColStationCount, counts...))
	return frame.New(cols...)
}
