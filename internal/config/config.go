package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "amtkcli/internal/errors"
	"amtkcli/pkg/contracts/domain"
)

// EnvPrefix namespaces every environment override, e.g. AMTK_LOGGING_LEVEL.
const EnvPrefix = "AMTK"

// Config represents the complete application configuration
type Config struct {
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PipelineConfig controls the combine, clean and augment stages.
type PipelineConfig struct {
	// WhitespacePattern matches runs that collapse to a single space.
	WhitespacePattern string   `yaml:"whitespace_pattern" envconfig:"WHITESPACE_PATTERN" validate:"required"`
	SentinelTokens    []string `yaml:"sentinel_tokens" envconfig:"SENTINEL_TOKENS" validate:"required,min=1"`
	// StateFixes replaces abbreviations left in the station name field.
	StateFixes map[string]string `yaml:"state_fixes" ignored:"true"`
	// StationStateFixes sets the state of stations whose name lacks one.
	StationStateFixes  map[string]string `yaml:"station_state_fixes" ignored:"true"`
	ExcludeStationType []string          `yaml:"exclude_station_types" envconfig:"EXCLUDE_STATION_TYPES"`
	RatioPolicy        string            `yaml:"ratio_policy" envconfig:"RATIO_POLICY" validate:"oneof=null_on_zero_late zero_on_zero_late"`
	ValidateRecords    bool              `yaml:"validate_records" envconfig:"VALIDATE_RECORDS"`
}

// TrainConfig is the per-train metadata used by route reports.
type TrainConfig struct {
	SubService string `yaml:"sub_service" validate:"required"`
	Direction  string `yaml:"direction" validate:"oneof=eastbound westbound northbound southbound"`
}

// AnalysisConfig holds what the reports need: aggregation sets, per-train
// metadata and the palette handed to the charting layer.
type AnalysisConfig struct {
	Metrics            []string               `yaml:"metrics" envconfig:"METRICS" validate:"required,min=1"`
	Funcs              []string               `yaml:"funcs" envconfig:"FUNCS" validate:"required,min=1,dive,oneof=sum mean median min max std count"`
	Trains             map[string]TrainConfig `yaml:"trains" ignored:"true" validate:"dive"`
	Stations           []string               `yaml:"stations" envconfig:"STATIONS"`
	Colors             map[string]string      `yaml:"colors" ignored:"true"`
	QuarterColors      []string               `yaml:"quarter_colors" envconfig:"QUARTER_COLORS" validate:"min=1"`
	Seed               int64                  `yaml:"seed" envconfig:"SEED"`
	SampleSize         int                    `yaml:"sample_size" envconfig:"SAMPLE_SIZE" validate:"gte=0"`
	BusiestN           int                    `yaml:"busiest_n" envconfig:"BUSIEST_N" validate:"gte=1"`
	BinWidth           float64                `yaml:"bin_width" envconfig:"BIN_WIDTH" validate:"gt=0"`
	RegressionMaxMiles int                    `yaml:"regression_max_miles" envconfig:"REGRESSION_MAX_MILES" validate:"gt=0"`
	RegressionStep     int                    `yaml:"regression_step" envconfig:"REGRESSION_STEP" validate:"gt=0"`
}

// TelemetryConfig controls tracing and metrics output.
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	Environment    string `yaml:"environment" envconfig:"ENVIRONMENT"`
	TracesEnabled  bool   `yaml:"traces_enabled" envconfig:"TRACES_ENABLED"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
}

// AggFuncs returns the configured aggregate functions.
func (a AnalysisConfig) AggFuncs() []domain.AggFunc {
	out := make([]domain.AggFunc, len(a.Funcs))
	for i, f := range a.Funcs {
		out[i] = domain.AggFunc(f)
	}
	return out
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty or absent), then AMTK_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := loadFromFile(path, cfg); err != nil {
				return nil, apperrors.NewConfigError("failed to load config from file", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, apperrors.NewConfigError("failed to stat config file", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, apperrors.NewConfigError("config validation failed", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg. Keys absent from the file
// keep their current values.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

var validate = validator.New()

// validate validates the configuration
func (c *Config) validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if _, err := regexp.Compile(c.Pipeline.WhitespacePattern); err != nil {
		return fmt.Errorf("invalid whitespace pattern %q: %w", c.Pipeline.WhitespacePattern, err)
	}

	for id, train := range c.Analysis.Trains {
		if id == "" {
			return fmt.Errorf("train entry with empty number")
		}
		if train.SubService == "" {
			return fmt.Errorf("train %s has no sub service", id)
		}
	}

	if (c.Logging.Output == "file" || c.Logging.Output == "both") && c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/amtk.log"
	}

	return nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Paths: DefaultPaths(),
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/amtk.log",
		},
		Pipeline: PipelineConfig{
			WhitespacePattern: `[\s\p{Zs}]{2,}`,
			SentinelTokens:    []string{"--"},
			StateFixes: map[string]string{
				"CA": "California",
				"VT": "Vermont",
			},
			StationStateFixes: map[string]string{
				"CBN": "New York",
				"NRG": "California",
			},
			ExcludeStationType: []string{"BUS"},
			RatioPolicy:        string(domain.RatioPolicyNullOnZeroLate),
			ValidateRecords:    true,
		},
		Analysis: AnalysisConfig{
			Metrics: []string{
				domain.ColTotalDetrain,
				domain.ColLateDetrain,
				domain.ColAvgMinLate,
			},
			Funcs:              []string{"sum", "mean"},
			Trains:             map[string]TrainConfig{},
			Stations:           []string{"NYP", "CHI", "LAX"},
			Colors:             map[string]string{"amtk_blue": "#1f5e93", "amtk_red": "#c8102e"},
			QuarterColors:      []string{"#1f5e93", "#c8102e"},
			Seed:               24,
			SampleSize:         0,
			BusiestN:           10,
			BinWidth:           5,
			RegressionMaxMiles: 2600,
			RegressionStep:     25,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "amtk-pipeline",
			Environment:    "development",
			TracesEnabled:  false,
			MetricsEnabled: true,
		},
	}
}
