package dataprocessing

import (
	"fmt"

	"amtkcli/internal/frame"
	"amtkcli/pkg/contracts/domain"
)

// CleanOptions configures Clean.
type CleanOptions struct {
	Normalizer        *Normalizer
	StateFixes        map[string]string
	StationStateFixes map[string]string
	Countries         map[string]string
	Regions           map[string]domain.RegionDivision
}

// Clean turns the combined table into the CleanColumns layout: whitespace is
// normalized, the legacy average columns are merged, the station name is
// split into station, state and country, state fixes are applied and the
// geography is resolved.
func Clean(f *frame.Frame, opts CleanOptions) (*frame.Frame, error) {
	n := opts.Normalizer
	if n == nil {
		var err error
		if n, err = NewNormalizer(DefaultWhitespacePattern); err != nil {
			return nil, err
		}
	}
	out := n.Normalize(f)

	out, err := MergeByPriority(out, domain.ColAvgMinLateCS, domain.ColAvgMinLateC)
	if err != nil {
		return nil, fmt.Errorf("merge average minutes late: %w", err)
	}
	if out, err = SplitColumn(out, domain.ColStationName, ",",
		domain.ColStation, domain.ColState, domain.ColCountry); err != nil {
		return nil, fmt.Errorf("split station name: %w", err)
	}
	if out, err = ReplaceValues(out, domain.ColState, opts.StateFixes); err != nil {
		return nil, err
	}
	if out, err = FillFromKey(out, domain.ColStationCode, domain.ColState, opts.StationStateFixes); err != nil {
		return nil, err
	}
	if opts.Countries != nil {
		if out, err = ResolveCountry(out, opts.Countries); err != nil {
			return nil, err
		}
	}
	if out, err = ResolveRegionDivision(out, opts.Regions); err != nil {
		return nil, err
	}
	if out, err = out.Rename(map[string]string{domain.ColAvgMinLateCS: domain.ColAvgMinLate}); err != nil {
		return nil, err
	}
	return Project(out, domain.CleanColumns)
}

// AugmentOptions configures Augment.
type AugmentOptions struct {
	Routes      []domain.SubServiceRoute
	Stations    *frame.Frame
	Overrides   *domain.OverrideSet
	RatioPolicy domain.RatioPolicy
}

// Augment enriches the cleaned table and projects it onto CanonicalColumns.
func Augment(f *frame.Frame, opts AugmentOptions) (*frame.Frame, error) {
	out, err := Enrich(f, EnrichInputs{
		Routes:      opts.Routes,
		Stations:    opts.Stations,
		Overrides:   opts.Overrides,
		RatioPolicy: opts.RatioPolicy,
	})
	if err != nil {
		return nil, err
	}
	out, err = EnsureColumns(out, CanonicalSchema, domain.StationColumns...)
	if err != nil {
		return nil, err
	}
	return Project(out, domain.CanonicalColumns)
}
