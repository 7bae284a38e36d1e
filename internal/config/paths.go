package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// PathsConfig contains file system paths configuration. Relative entries are
// resolved against BaseDir (or the working directory) by Resolve.
type PathsConfig struct {
	BaseDir      string `yaml:"base_dir" envconfig:"BASE_DIR"`
	RawDir       string `yaml:"raw_dir" envconfig:"RAW_DIR" validate:"required"`
	InterimDir   string `yaml:"interim_dir" envconfig:"INTERIM_DIR" validate:"required"`
	ProcessedDir string `yaml:"processed_dir" envconfig:"PROCESSED_DIR" validate:"required"`
	ReportsDir   string `yaml:"reports_dir" envconfig:"REPORTS_DIR" validate:"required"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`

	// RawPattern selects the raw performance workbooks inside RawDir.
	RawPattern string `yaml:"raw_pattern" envconfig:"RAW_PATTERN" validate:"required"`

	// Reference data
	StationsFile    string `yaml:"stations_file" envconfig:"STATIONS_FILE" validate:"required"`
	SubServicesFile string `yaml:"sub_services_file" envconfig:"SUB_SERVICES_FILE" validate:"required"`
	StatesFile      string `yaml:"states_file" envconfig:"STATES_FILE" validate:"required"`
	RegionsFile     string `yaml:"regions_file" envconfig:"REGIONS_FILE" validate:"required"`
	OverridesFile   string `yaml:"overrides_file" envconfig:"OVERRIDES_FILE" validate:"required"`

	// Stage outputs, file names inside InterimDir / ProcessedDir
	CombinedFile  string `yaml:"combined_file" envconfig:"COMBINED_FILE" validate:"required"`
	CoverageFile  string `yaml:"coverage_file" envconfig:"COVERAGE_FILE" validate:"required"`
	CleanedFile   string `yaml:"cleaned_file" envconfig:"CLEANED_FILE" validate:"required"`
	CanonicalFile string `yaml:"canonical_file" envconfig:"CANONICAL_FILE" validate:"required"`
	ManifestFile  string `yaml:"manifest_file" envconfig:"MANIFEST_FILE" validate:"required"`
	MetricsFile   string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	TracesFile    string `yaml:"traces_file" envconfig:"TRACES_FILE"`
}

// DefaultPaths mirrors the data/raw, data/interim, data/processed layout.
func DefaultPaths() PathsConfig {
	return PathsConfig{
		RawDir:          filepath.Join("data", "raw"),
		InterimDir:      filepath.Join("data", "interim"),
		ProcessedDir:    filepath.Join("data", "processed"),
		ReportsDir:      filepath.Join("data", "reports"),
		LogsDir:         "logs",
		RawPattern:      "*Station Performance*.xlsx",
		StationsFile:    filepath.Join("data", "raw", "NTAD_Amtrak_Stations.csv"),
		SubServicesFile: filepath.Join("data", "processed", "amtk_sub_services.json"),
		StatesFile:      filepath.Join("data", "processed", "states_provinces.json"),
		RegionsFile:     filepath.Join("data", "processed", "regions_divisions.json"),
		OverridesFile:   filepath.Join("data", "processed", "station_overrides.yaml"),
		CombinedFile:    "station_performance_metrics-v1p0.csv",
		CoverageFile:    "station_performance_coverage-v1p0.csv",
		CleanedFile:     "station_performance_metrics-v1p1.csv",
		CanonicalFile:   "station_performance_metrics-v1p2.csv",
		ManifestFile:    "pipeline_manifest.json",
		MetricsFile:     "pipeline.prom",
		TracesFile:      "traces.jsonl",
	}
}

// Resolve returns a copy with every directory and reference file made
// absolute against BaseDir, or the working directory when BaseDir is empty.
func (p PathsConfig) Resolve() (PathsConfig, error) {
	base := p.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return p, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	abs := func(path string) string {
		if path == "" || filepath.IsAbs(path) {
			return path
		}
		return filepath.Join(base, path)
	}

	out := p
	out.BaseDir = base
	out.RawDir = abs(p.RawDir)
	out.InterimDir = abs(p.InterimDir)
	out.ProcessedDir = abs(p.ProcessedDir)
	out.ReportsDir = abs(p.ReportsDir)
	out.LogsDir = abs(p.LogsDir)
	out.StationsFile = abs(p.StationsFile)
	out.SubServicesFile = abs(p.SubServicesFile)
	out.StatesFile = abs(p.StatesFile)
	out.RegionsFile = abs(p.RegionsFile)
	out.OverridesFile = abs(p.OverridesFile)
	return out, nil
}

// CombinedPath is the combine stage output.
func (p PathsConfig) CombinedPath() string { return filepath.Join(p.InterimDir, p.CombinedFile) }

// CoveragePath is the combine stage coverage report.
func (p PathsConfig) CoveragePath() string { return filepath.Join(p.InterimDir, p.CoverageFile) }

// CleanedPath is the clean stage output.
func (p PathsConfig) CleanedPath() string { return filepath.Join(p.InterimDir, p.CleanedFile) }

// CanonicalPath is the augment stage output.
func (p PathsConfig) CanonicalPath() string { return filepath.Join(p.ProcessedDir, p.CanonicalFile) }

// ManifestPath is where the pipeline manifest is written.
func (p PathsConfig) ManifestPath() string { return filepath.Join(p.InterimDir, p.ManifestFile) }

// MetricsPath is the Prometheus text file, empty when disabled.
func (p PathsConfig) MetricsPath() string {
	if p.MetricsFile == "" {
		return ""
	}
	return filepath.Join(p.LogsDir, p.MetricsFile)
}

// TracesPath is the span export file, empty for stdout.
func (p PathsConfig) TracesPath() string {
	if p.TracesFile == "" {
		return ""
	}
	return filepath.Join(p.LogsDir, p.TracesFile)
}

// ReportPath joins name onto ReportsDir.
func (p PathsConfig) ReportPath(name string) string { return filepath.Join(p.ReportsDir, name) }

// EnsureDirectories creates every output directory.
func (p PathsConfig) EnsureDirectories() error {
	for _, dir := range []string{p.InterimDir, p.ProcessedDir, p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// LogPathResolution logs the resolved layout at debug level.
func (p PathsConfig) LogPathResolution(logger *slog.Logger) {
	logger.Debug("Resolved paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("raw_dir", p.RawDir),
		slog.String("interim_dir", p.InterimDir),
		slog.String("processed_dir", p.ProcessedDir),
		slog.String("reports_dir", p.ReportsDir),
		slog.String("logs_dir", p.LogsDir))
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
