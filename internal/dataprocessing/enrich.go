package dataprocessing

import (
	"fmt"
	"math"

	apperrors "amtkcli/internal/errors"
	"amtkcli/internal/frame"
	"amtkcli/pkg/contracts/domain"
)

// RatioDecimals is the rounding applied to the late-to-total ratio.
const RatioDecimals = 5

// EnrichInputs carries the reference data joined onto performance rows.
// Nil maps skip the corresponding step.
type EnrichInputs struct {
	Routes      []domain.SubServiceRoute
	Stations    *frame.Frame
	Countries   map[string]string
	Regions     map[string]domain.RegionDivision
	Overrides   *domain.OverrideSet
	RatioPolicy domain.RatioPolicy
}

// Enrich attaches route miles, station attributes and geography, applies the
// manual overrides and derives the late ratio. Row count and order are
// preserved.
func Enrich(f *frame.Frame, in EnrichInputs) (*frame.Frame, error) {
	out, err := JoinRouteMiles(f, in.Routes)
	if err != nil {
		return nil, fmt.Errorf("join route miles: %w", err)
	}
	if in.Stations != nil {
		if out, err = JoinStations(out, in.Stations); err != nil {
			return nil, fmt.Errorf("join stations: %w", err)
		}
	}
	if in.Countries != nil {
		if out, err = ResolveCountry(out, in.Countries); err != nil {
			return nil, fmt.Errorf("resolve country: %w", err)
		}
	}
	if in.Regions != nil {
		if out, err = ResolveRegionDivision(out, in.Regions); err != nil {
			return nil, fmt.Errorf("resolve region: %w", err)
		}
	}
	if in.Overrides != nil {
		if out, err = ApplyOverrides(out, *in.Overrides); err != nil {
			return nil, fmt.Errorf("apply overrides: %w", err)
		}
	}
	if out, err = AddLateRatio(out, in.RatioPolicy); err != nil {
		return nil, fmt.Errorf("late ratio: %w", err)
	}
	return out, nil
}

// LeftJoin appends right's non-key columns to left, matching leftKey against
// rightKey. The right key must be unique; unmatched left rows get missing
// values. The result has exactly the rows of left in the same order, with
// left's columns first.
func LeftJoin(left, right *frame.Frame, leftKey, rightKey string) (*frame.Frame, error) {
	if _, err := left.Require(leftKey); err != nil {
		return nil, err
	}
	rk, err := right.Require(rightKey)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, rk.Len())
	for _, v := range rk.Values {
		if v == nil {
			continue
		}
		key := frame.KeyString(v)
		if seen[key] {
			return nil, apperrors.NewSchemaViolation(rightKey,
				fmt.Sprintf("join key %q is not unique: %q appears more than once", rightKey, key)).
				WithContext("key", key)
		}
		seen[key] = true
	}

	columns := left.Columns()
	for _, name := range right.Columns() {
		if name == rightKey {
			continue
		}
		if left.Has(name) {
			return nil, apperrors.NewSchemaViolation(name,
				fmt.Sprintf("column %q exists on both sides of the join", name))
		}
		columns = append(columns, name)
	}
	if left.Len() == 0 || right.Len() == 0 || len(columns) == len(left.Columns()) {
		return padJoin(left, right, rightKey)
	}

	rhs := right
	if rightKey != leftKey {
		if rhs, err = right.Rename(map[string]string{rightKey: leftKey}); err != nil {
			return nil, err
		}
	}
	joined, err := frame.FromDataFrame(left.DataFrame().LeftJoin(rhs.DataFrame(), leftKey))
	if err != nil {
		return nil, fmt.Errorf("join on %q: %w", leftKey, err)
	}
	return joined.Select(columns...)
}

// padJoin covers joins with no rows to match: right's non-key columns are
// appended as missing.
func padJoin(left, right *frame.Frame, rightKey string) (*frame.Frame, error) {
	out := left
	var err error
	for _, s := range right.Series() {
		if s.Name == rightKey {
			continue
		}
		if out, err = out.WithColumn(frame.Missing(s.Name, s.Kind, left.Len())); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// RouteMilesFrame tabulates route miles per sub-service.
func RouteMilesFrame(routes []domain.SubServiceRoute) (*frame.Frame, error) {
	names := make([]string, len(routes))
	miles := make([]int64, len(routes))
	for i, r := range routes {
		names[i] = r.SubService
		miles[i] = int64(r.RouteMiles())
	}
	return frame.New(
		frame.Strings(domain.ColSubService, names...),
		frame.Ints(domain.ColRouteMiles, miles...),
	)
}

// JoinRouteMiles adds Route Miles by sub-service name. Sub-services with no
// route entry get 0.
func JoinRouteMiles(f *frame.Frame, routes []domain.SubServiceRoute) (*frame.Frame, error) {
	rm, err := RouteMilesFrame(routes)
	if err != nil {
		return nil, err
	}
	out, err := LeftJoin(f.Drop(domain.ColRouteMiles), rm, domain.ColSubService, domain.ColSubService)
	if err != nil {
		return nil, err
	}
	miles := out.Col(domain.ColRouteMiles)
	values := make([]any, miles.Len())
	for i, v := range miles.Values {
		if v == nil {
			v = int64(0)
		}
		values[i] = v
	}
	return out.WithColumn(&frame.Series{Name: domain.ColRouteMiles, Kind: frame.Int, Values: values})
}

// JoinStations attaches the station master by arrival station code. Codes
// absent from the master keep missing station attributes.
func JoinStations(f *frame.Frame, stations *frame.Frame) (*frame.Frame, error) {
	return LeftJoin(f, stations, domain.ColStationCode, domain.ColStationCode)
}

// ResolveCountry maps State to Country. Unknown states get a missing country.
func ResolveCountry(f *frame.Frame, countries map[string]string) (*frame.Frame, error) {
	return mapColumn(f, domain.ColState, domain.ColCountry, func(state string) (any, bool) {
		c, ok := countries[state]
		return c, ok
	})
}

// ResolveRegionDivision maps State to Region and Division. Unknown states get
// missing values.
func ResolveRegionDivision(f *frame.Frame, regions map[string]domain.RegionDivision) (*frame.Frame, error) {
	out, err := mapColumn(f, domain.ColState, domain.ColRegion, func(state string) (any, bool) {
		rd, ok := regions[state]
		return rd.Region, ok
	})
	if err != nil {
		return nil, err
	}
	return mapColumn(out, domain.ColState, domain.ColDivision, func(state string) (any, bool) {
		rd, ok := regions[state]
		return rd.Division, ok
	})
}

func mapColumn(f *frame.Frame, from, to string, lookup func(string) (any, bool)) (*frame.Frame, error) {
	src, err := f.Require(from)
	if err != nil {
		return nil, err
	}
	values := make([]any, src.Len())
	for i := range src.Values {
		key, ok := src.Str(i)
		if !ok {
			continue
		}
		if v, found := lookup(key); found {
			values[i] = v
		}
	}
	return f.WithColumn(&frame.Series{Name: to, Kind: frame.String, Values: values})
}

// ApplyOverrides replaces station attributes for every row whose code has an
// override. Only the fields set on the override change.
func ApplyOverrides(f *frame.Frame, set domain.OverrideSet) (*frame.Frame, error) {
	codes, err := f.Require(domain.ColStationCode)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]domain.StationOverride, len(set.Overrides))
	for _, o := range set.Overrides {
		byCode[o.Code] = o
	}

	type field struct {
		column string
		kind   frame.Kind
		get    func(domain.StationOverride) any
	}
	fields := []field{
		{domain.ColCity, frame.String, func(o domain.StationOverride) any { return strPtr(o.City) }},
		{domain.ColAddress01, frame.String, func(o domain.StationOverride) any { return strPtr(o.Address01) }},
		{domain.ColAddress02, frame.String, func(o domain.StationOverride) any { return strPtr(o.Address02) }},
		{domain.ColZIPCode, frame.String, func(o domain.StationOverride) any { return strPtr(o.ZIPCode) }},
		{domain.ColLatitude, frame.Float, func(o domain.StationOverride) any { return floatPtr(o.Latitude) }},
		{domain.ColLongitude, frame.Float, func(o domain.StationOverride) any { return floatPtr(o.Longitude) }},
	}

	out := f
	for _, fd := range fields {
		col := out.Col(fd.column)
		var values []any
		kind := fd.kind
		if col == nil {
			values = make([]any, out.Len())
		} else {
			values = append([]any(nil), col.Values...)
			kind = col.Kind
		}
		for i := range values {
			code, ok := codes.Str(i)
			if !ok {
				continue
			}
			o, found := byCode[code]
			if !found {
				continue
			}
			if v := fd.get(o); v != nil {
				values[i] = v
			}
		}
		if out, err = out.WithColumn(&frame.Series{Name: fd.column, Kind: kind, Values: values}); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func strPtr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func floatPtr(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

// LateRatio computes late/total rounded to RatioDecimals. The result is
// missing when either input is missing or total is zero. Under
// RatioPolicyNullOnZeroLate it is also missing when late is zero.
func LateRatio(late, total *int64, policy domain.RatioPolicy) *float64 {
	if late == nil || total == nil || *total == 0 {
		return nil
	}
	if *late == 0 && policy != domain.RatioPolicyZeroOnZeroLate {
		return nil
	}
	r := Round(float64(*late)/float64(*total), RatioDecimals)
	return &r
}

// AddLateRatio derives the late-to-total ratio column.
func AddLateRatio(f *frame.Frame, policy domain.RatioPolicy) (*frame.Frame, error) {
	late, err := f.Require(domain.ColLateDetrain)
	if err != nil {
		return nil, err
	}
	total, err := f.Require(domain.ColTotalDetrain)
	if err != nil {
		return nil, err
	}
	values := make([]any, f.Len())
	for i := range values {
		var lp, tp *int64
		if l, ok := late.Int(i); ok {
			lp = &l
		}
		if t, ok := total.Int(i); ok {
			tp = &t
		}
		if r := LateRatio(lp, tp, policy); r != nil {
			values[i] = *r
		}
	}
	return f.WithColumn(&frame.Series{Name: domain.ColLateRatio, Kind: frame.Float, Values: values})
}

// Round rounds x half away from zero to the given number of decimals.
func Round(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(x*p) / p
}
