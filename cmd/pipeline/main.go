// Command pipeline runs the combine, clean and augment stages that turn the
// raw station performance workbooks into the canonical table.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"amtkcli/internal/config"
	"amtkcli/internal/exporter"
	"amtkcli/internal/infrastructure"
	"amtkcli/internal/operations"
	"amtkcli/internal/validation"
)

type options struct {
	configPath string
	stage      string
	logLevel   string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "config.yaml", "path to the YAML configuration file")
	flag.StringVar(&opts.stage, "stage", operations.StepAll, "stage to run: combine, clean, augment or all")
	flag.StringVar(&opts.logLevel, "log-level", "", "override the configured log level")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		slog.Error("Pipeline failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
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
	cfg.Paths.LogPathResolution(logger)

	traceOut, closeTraces, err := openTraceOutput(cfg.Paths.TracesPath())
	if err != nil {
		return err
	}
	defer closeTraces()

	telemetry, err := infrastructure.InitializeTelemetry(cfg.Telemetry, traceOut, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	if opts.stage == operations.StepAll || opts.stage == "" || opts.stage == operations.StageIDCombine {
		if err := validation.NewFileValidator(logger).ValidateInputDirectory(cfg.Paths.RawDir); err != nil {
			return err
		}
	}

	registry, err := operations.NewPipelineRegistry(operations.StageDeps{
		Config:  cfg,
		Logger:  logger,
		Metrics: telemetry.Metrics,
		Writer:  exporter.NewCSVWriter(logger),
	})
	if err != nil {
		return err
	}

	manager := operations.NewManager(registry, telemetry, logger, cfg.Paths.ManifestPath())
	resp, execErr := manager.Execute(ctx, operations.OperationRequest{Step: opts.stage})

	if err := telemetry.WriteMetrics(cfg.Paths.MetricsPath()); err != nil {
		logger.Warn("Failed to write metrics", slog.String("error", err.Error()))
	}
	if execErr != nil {
		return execErr
	}

	logger.Info("Pipeline finished",
		slog.String("operation_id", resp.ID),
		slog.String("status", string(resp.Status)),
		slog.Duration("duration", resp.Duration),
		slog.String("manifest", cfg.Paths.ManifestPath()))
	return nil
}

// openTraceOutput opens the span export file, or stdout when path is empty.
func openTraceOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	return f, f.Close, nil
}
