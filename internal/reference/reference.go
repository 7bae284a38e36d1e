package reference

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"amtkcli/internal/config"
	"amtkcli/internal/dataprocessing"
	apperrors "amtkcli/internal/errors"
	"amtkcli/internal/frame"
	"amtkcli/pkg/contracts/domain"
)

var validate = validator.New()

// NTAD station master column names.
const (
	ntadCode        = "Code"
	ntadStnType     = "StnType"
	ntadStationType = "StaType"
	ntadCity        = "City"
	ntadAddress1    = "Address1"
	ntadAddress2    = "Address2"
	ntadZIPCode     = "ZipCode"
	ntadLatitude    = "lat"
	ntadLongitude   = "lon"
)

var ntadRename = map[string]string{
	ntadCode:        domain.ColStationCode,
	ntadStationType: domain.ColStationType,
	ntadCity:        domain.ColCity,
	ntadAddress1:    domain.ColAddress01,
	ntadAddress2:    domain.ColAddress02,
	ntadZIPCode:     domain.ColZIPCode,
	ntadLatitude:    domain.ColLatitude,
	ntadLongitude:   domain.ColLongitude,
}

// Data is every reference dataset the pipeline joins against.
type Data struct {
	Routes    []domain.SubServiceRoute
	Stations  *frame.Frame
	Countries map[string]string
	Regions   map[string]domain.RegionDivision
	Overrides *domain.OverrideSet
}

// Route returns the named sub-service.
func (d *Data) Route(subService string) (domain.SubServiceRoute, bool) {
	i := slices.IndexFunc(d.Routes, func(r domain.SubServiceRoute) bool { return r.SubService == subService })
	if i < 0 {
		return domain.SubServiceRoute{}, false
	}
	return d.Routes[i], true
}

// Load reads the reference datasets named in paths. The station master is
// only read when withStations is set because the clean stage does not need
// it.
func Load(paths config.PathsConfig, pipeline config.PipelineConfig, withStations bool, logger *slog.Logger) (*Data, error) {
	var (
		d   Data
		err error
	)
	if d.Routes, err = LoadSubServices(paths.SubServicesFile); err != nil {
		return nil, err
	}
	if d.Countries, err = LoadStatesProvinces(paths.StatesFile); err != nil {
		return nil, err
	}
	if d.Regions, err = LoadRegionsDivisions(paths.RegionsFile); err != nil {
		return nil, err
	}
	if config.FileExists(paths.OverridesFile) {
		if d.Overrides, err = LoadOverrides(paths.OverridesFile); err != nil {
			return nil, err
		}
	} else {
		logger.Warn("Station overrides file not found, skipping overrides",
			slog.String("path", paths.OverridesFile))
	}
	if withStations {
		n, err := dataprocessing.NewNormalizer(pipeline.WhitespacePattern)
		if err != nil {
			return nil, apperrors.NewConfigError("invalid whitespace pattern", err)
		}
		if d.Stations, err = LoadStations(paths.StationsFile, pipeline.ExcludeStationType, n); err != nil {
			return nil, err
		}
	}

	attrs := []any{
		slog.Int("routes", len(d.Routes)),
		slog.Int("states", len(d.Countries)),
		slog.Int("regions", len(d.Regions)),
	}
	if d.Stations != nil {
		attrs = append(attrs, slog.Int("stations", d.Stations.Len()))
	}
	if d.Overrides != nil {
		attrs = append(attrs, slog.String("overrides_version", d.Overrides.Version),
			slog.Int("overrides", len(d.Overrides.Overrides)))
	}
	logger.Info("Reference data loaded", attrs...)
	return &d, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return apperrors.NewNotFoundError(fmt.Sprintf("reference file %s", path))
		}
		return apperrors.NewStorageError(fmt.Sprintf("failed to read %s", path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apperrors.NewParsingError(fmt.Sprintf("failed to decode %s", path), err)
	}
	return nil
}

// LoadSubServices reads the sub-service route list. Names must be unique and
// host mileage non-negative.
func LoadSubServices(path string) ([]domain.SubServiceRoute, error) {
	var routes []domain.SubServiceRoute
	if err := readJSON(path, &routes); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(routes))
	for _, r := range routes {
		if err := validate.Struct(r); err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("invalid sub service %q", r.SubService), err)
		}
		if seen[r.SubService] {
			return nil, apperrors.NewSchemaViolation("sub service",
				fmt.Sprintf("sub service %q is listed more than once", r.SubService))
		}
		seen[r.SubService] = true
	}
	return routes, nil
}

// LoadStatesProvinces reads {country: [state, ...]} and returns state to
// country.
func LoadStatesProvinces(path string) (map[string]string, error) {
	var byCountry map[string][]string
	if err := readJSON(path, &byCountry); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for country, states := range byCountry {
		for _, s := range states {
			if prev, dup := out[s]; dup && prev != country {
				return nil, apperrors.NewSchemaViolation("state",
					fmt.Sprintf("state %q belongs to both %s and %s", s, prev, country))
			}
			out[s] = country
		}
	}
	return out, nil
}

// LoadRegionsDivisions reads {region: {division: [state, ...]}} and returns
// state to region and division.
func LoadRegionsDivisions(path string) (map[string]domain.RegionDivision, error) {
	var tree map[string]map[string][]string
	if err := readJSON(path, &tree); err != nil {
		return nil, err
	}
	out := make(map[string]domain.RegionDivision)
	for region, divisions := range tree {
		for division, states := range divisions {
			for _, s := range states {
				if _, dup := out[s]; dup {
					return nil, apperrors.NewSchemaViolation("state",
						fmt.Sprintf("state %q appears in more than one division", s))
				}
				out[s] = domain.RegionDivision{Region: region, Division: division}
			}
		}
	}
	return out, nil
}

// LoadOverrides reads the versioned station override set.
func LoadOverrides(path string) (*domain.OverrideSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to read %s", path), err)
	}
	var set domain.OverrideSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to decode %s", path), err)
	}
	if err := validate.Struct(set); err != nil {
		return nil, apperrors.NewValidationError("invalid station overrides", err)
	}
	seen := make(map[string]bool, len(set.Overrides))
	for _, o := range set.Overrides {
		if seen[o.Code] {
			return nil, apperrors.NewSchemaViolation("code",
				fmt.Sprintf("station %s is overridden more than once", o.Code))
		}
		seen[o.Code] = true
	}
	return &set, nil
}

// LoadStations reads the NTAD station master: rows whose StnType is in
// exclude are dropped, strings are normalized and columns are renamed and
// projected onto StationColumns. Station codes must be unique.
func LoadStations(path string, exclude []string, n *dataprocessing.Normalizer) (*frame.Frame, error) {
	raw, err := dataprocessing.ReadCSV(path, dataprocessing.Schema{
		ntadLatitude:  frame.Float,
		ntadLongitude: frame.Float,
	})
	if err != nil {
		return nil, err
	}
	if _, err := raw.Require(ntadStnType); err != nil {
		return nil, err
	}

	kept := raw.Filter(func(r frame.Row) bool {
		t, _ := r.Str(ntadStnType)
		return !slices.Contains(exclude, t)
	})
	renamed, err := n.Normalize(kept).Rename(ntadRename)
	if err != nil {
		return nil, err
	}
	stations, err := dataprocessing.Project(renamed, domain.StationColumns)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, stations.Len())
	for _, rec := range StationRecords(stations) {
		if err := validate.Struct(rec); err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("invalid station %q", rec.Code), err)
		}
		if seen[rec.Code] {
			return nil, apperrors.NewSchemaViolation(domain.ColStationCode,
				fmt.Sprintf("station code %s appears more than once", rec.Code))
		}
		seen[rec.Code] = true
	}
	return stations, nil
}

// StationRecords converts a station frame into records.
func StationRecords(f *frame.Frame) []domain.StationRecord {
	out := make([]domain.StationRecord, f.Len())
	for i := range out {
		r := f.Row(i)
		str := func(col string) string { v, _ := r.Str(col); return v }
		flt := func(col string) *float64 {
			v, ok := r.Float(col)
			if !ok {
				return nil
			}
			return &v
		}
		out[i] = domain.StationRecord{
			Code:        str(domain.ColStationCode),
			StationType: str(domain.ColStationType),
			City:        str(domain.ColCity),
			Address01:   str(domain.ColAddress01),
			Address02:   str(domain.ColAddress02),
			ZIPCode:     str(domain.ColZIPCode),
			Latitude:    flt(domain.ColLatitude),
			Longitude:   flt(domain.ColLongitude),
		}
	}
	return out
}
