// Command report derives the summary tables from the canonical station
// performance table and writes them as CSV files and one workbook.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"amtkcli/internal/config"
	"amtkcli/internal/dataprocessing"
	"amtkcli/internal/infrastructure"
	"amtkcli/internal/reference"
	"amtkcli/internal/report"
	"amtkcli/internal/validation"
)

type options struct {
	configPath string
	input      string
	outDir     string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "config.yaml", "path to the YAML configuration file")
	flag.StringVar(&opts.input, "input", "", "canonical table (defaults to the augment stage output)")
	flag.StringVar(&opts.outDir, "out", "", "output directory (defaults to the reports directory)")
	flag.Parse()

	if err := run(opts); err != nil {
		slog.Error("Report failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	cfg.Paths, err = cfg.Paths.Resolve()
	if err != nil {
		return err
	}
	if err := cfg.Paths.EnsureDirectories(); err != nil {
		return err
	}

	logger, closeLog, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer closeLog()

	if opts.input == "" {
		opts.input = cfg.Paths.CanonicalPath()
	}
	if opts.outDir == "" {
		opts.outDir = cfg.Paths.ReportsDir
	} else if err := os.MkdirAll(opts.outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	logger.Info("Building station performance report",
		slog.String("input", opts.input),
		slog.String("output_dir", opts.outDir))

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateCSVFile(opts.input); err != nil {
		return err
	}
	if err := validator.ValidateJSONFile(cfg.Paths.SubServicesFile); err != nil {
		return err
	}

	f, err := dataprocessing.ReadCSV(opts.input, dataprocessing.CanonicalSchema)
	if err != nil {
		return err
	}
	routes, err := reference.LoadSubServices(cfg.Paths.SubServicesFile)
	if err != nil {
		return err
	}

	tables, err := report.NewBuilder(cfg.Analysis, routes, logger).Build(f)
	if err != nil {
		return err
	}
	paths, err := report.Write(opts.outDir, tables, logger)
	if err != nil {
		return err
	}

	logger.Info("Report written",
		slog.Int("rows", f.Len()),
		slog.Int("tables", len(tables)),
		slog.Int("files", len(paths)))
	return nil
}
