package operations

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"amtkcli/internal/config"
	"amtkcli/internal/dataprocessing"
	apperrors "amtkcli/internal/errors"
	"amtkcli/internal/exporter"
	"amtkcli/internal/files"
	"amtkcli/internal/frame"
	"amtkcli/internal/infrastructure"
	"amtkcli/internal/reference"
	"amtkcli/pkg/contracts/domain"
)

// StageDeps are shared by every pipeline stage. Config paths must already
// be resolved.
type StageDeps struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *infrastructure.PipelineMetrics
	Writer  *exporter.CSVWriter
}

func (d StageDeps) withDefaults() StageDeps {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Metrics == nil {
		d.Metrics = infrastructure.NewNoopTelemetry(d.Logger).Metrics
	}
	if d.Writer == nil {
		d.Writer = exporter.NewCSVWriter(d.Logger)
	}
	return d
}

// CoverageByServiceLinePath is the per-service-line coverage report written
// next to the per-period one.
func CoverageByServiceLinePath(paths config.PathsConfig) string {
	return strings.TrimSuffix(paths.CoveragePath(), ".csv") + "-service_line.csv"
}

// CombineStage concatenates the raw workbooks into one typed table.
type CombineStage struct {
	BaseStage
	deps StageDeps
}

// NewCombineStage creates the combine step
func NewCombineStage(deps StageDeps) *CombineStage {
	deps = deps.withDefaults()
	return &CombineStage{
		BaseStage: NewBaseStage(StageIDCombine, StageNameCombine, nil),
		deps:      deps,
	}
}

// Execute parses every raw extract, stacks them, resolves placeholder
// tokens and writes the combined table and its coverage reports.
func (s *CombineStage) Execute(ctx context.Context, state *OperationState) error {
	paths := s.deps.Config.Paths
	logger := s.deps.Logger.With(slog.String("stage", s.ID()))

	workbooks, err := files.NewDiscovery(paths.BaseDir).FindWorkbooks(paths.RawDir, paths.RawPattern)
	if err != nil {
		return apperrors.NewStorageError("failed to list raw workbooks", err)
	}
	if len(workbooks) == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("workbooks matching %q in %s", paths.RawPattern, paths.RawDir))
	}

	extracts := make([]*frame.Frame, 0, len(workbooks))
	names := make([]string, 0, len(workbooks))
	rowsIn := 0
	for _, wb := range workbooks {
		f, err := dataprocessing.ParseWorkbook(wb.Path, logger)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "Workbook parsed",
			slog.String("file", wb.Name),
			slog.Int("rows", f.Len()))
		extracts = append(extracts, f)
		names = append(names, wb.Name)
		rowsIn += f.Len()
	}

	combined, report, err := dataprocessing.Combine(extracts, s.deps.Config.Pipeline.SentinelTokens)
	if err != nil {
		return err
	}
	for _, col := range report.Columns() {
		s.deps.Metrics.RecordSentinels(ctx, col, report.Counts[col])
		logger.InfoContext(ctx, "Placeholder values replaced",
			slog.String("column", col),
			slog.Int("count", report.Counts[col]))
	}

	outputs, err := combineOutputs(paths, combined)
	if err != nil {
		return err
	}
	for _, out := range outputs {
		if err := s.deps.Writer.WriteFrame(out.path, out.frame); err != nil {
			return err
		}
	}
	for _, r := range dataprocessing.Coverage(combined, false) {
		logger.DebugContext(ctx, "Coverage",
			slog.Int("fiscal_year", r.FiscalYear),
			slog.Int("fiscal_quarter", r.FiscalQuarter),
			slog.Int("rows", r.Rows))
	}

	s.deps.Metrics.RecordRows(ctx, s.ID(), rowsIn, combined.Len())
	stepState := state.GetStage(s.ID())
	stepState.SetMetadata(ContextKeyFiles, names)
	stepState.SetMetadata(ContextKeyRowsIn, rowsIn)
	stepState.SetMetadata(ContextKeyRowsOut, combined.Len())
	stepState.SetMetadata(ContextKeySentinels, report.Total())

	state.Manifest.AddData(DataTypeRawWorkbooks, &DataInfo{
		Location: paths.RawDir, Rows: rowsIn, Files: names, CreatedBy: s.ID(),
	})
	state.Manifest.AddData(DataTypeCombined, &DataInfo{
		Location: paths.CombinedPath(), Rows: combined.Len(), CreatedBy: s.ID(),
	})
	state.Manifest.AddData(DataTypeCoverage, &DataInfo{
		Location:  paths.CoveragePath(),
		Files:     []string{paths.CoveragePath(), CoverageByServiceLinePath(paths)},
		CreatedBy: s.ID(),
	})

	logger.InfoContext(ctx, "Combine stage completed",
		slog.Int("workbooks", len(workbooks)),
		slog.Int("rows", combined.Len()),
		slog.Int("placeholders", report.Total()))
	return nil
}

type stageOutput struct {
	path  string
	frame *frame.Frame
}

// combineOutputs builds the combined table and both coverage reports, in
// write order. Nothing is written until all three exist.
func combineOutputs(paths config.PathsConfig, combined *frame.Frame) ([]stageOutput, error) {
	outputs := []stageOutput{{path: paths.CombinedPath(), frame: combined}}
	for _, byLine := range []bool{false, true} {
		cov, err := dataprocessing.CoverageFrame(dataprocessing.Coverage(combined, byLine), byLine)
		if err != nil {
			return nil, err
		}
		path := paths.CoveragePath()
		if byLine {
			path = CoverageByServiceLinePath(paths)
		}
		outputs = append(outputs, stageOutput{path: path, frame: cov})
	}
	return outputs, nil
}

// ProducedOutputs returns the data outputs this step produces
func (s *CombineStage) ProducedOutputs() []DataOutput {
	return []DataOutput{
		{Type: DataTypeCombined, Location: s.deps.Config.Paths.CombinedPath()},
		{Type: DataTypeCoverage, Location: s.deps.Config.Paths.CoveragePath()},
	}
}

// CleanStage normalizes the combined table and resolves its geography.
type CleanStage struct {
	BaseStage
	deps StageDeps
}

// NewCleanStage creates the clean step
func NewCleanStage(deps StageDeps) *CleanStage {
	deps = deps.withDefaults()
	return &CleanStage{
		BaseStage: NewBaseStage(StageIDClean, StageNameClean, []string{StageIDCombine}),
		deps:      deps,
	}
}

// Execute reads the combined table and writes the cleaned one.
func (s *CleanStage) Execute(ctx context.Context, state *OperationState) error {
	cfg := s.deps.Config
	logger := s.deps.Logger.With(slog.String("stage", s.ID()))

	combined, err := dataprocessing.ReadCSV(cfg.Paths.CombinedPath(), dataprocessing.RawSchema)
	if err != nil {
		return err
	}
	ref, err := reference.Load(cfg.Paths, cfg.Pipeline, false, logger)
	if err != nil {
		return err
	}
	normalizer, err := dataprocessing.NewNormalizer(cfg.Pipeline.WhitespacePattern)
	if err != nil {
		return apperrors.NewConfigError("invalid whitespace pattern", err)
	}

	cleaned, err := dataprocessing.Clean(combined, dataprocessing.CleanOptions{
		Normalizer:        normalizer,
		StateFixes:        cfg.Pipeline.StateFixes,
		StationStateFixes: cfg.Pipeline.StationStateFixes,
		Countries:         ref.Countries,
		Regions:           ref.Regions,
	})
	if err != nil {
		return err
	}
	if err := s.deps.Writer.WriteFrame(cfg.Paths.CleanedPath(), cleaned); err != nil {
		return err
	}

	unresolved := cleaned.Col(domain.ColRegion).NullCount()
	s.deps.Metrics.RecordRows(ctx, s.ID(), combined.Len(), cleaned.Len())
	stepState := state.GetStage(s.ID())
	stepState.SetMetadata(ContextKeyRowsIn, combined.Len())
	stepState.SetMetadata(ContextKeyRowsOut, cleaned.Len())
	state.Manifest.AddData(DataTypeCleaned, &DataInfo{
		Location:  cfg.Paths.CleanedPath(),
		Rows:      cleaned.Len(),
		CreatedBy: s.ID(),
		Metadata:  map[string]interface{}{"rows_without_region": unresolved},
	})

	logger.InfoContext(ctx, "Clean stage completed",
		slog.Int("rows", cleaned.Len()),
		slog.Int("rows_without_region", unresolved))
	return nil
}

// ProducedOutputs returns the data outputs this step produces
func (s *CleanStage) ProducedOutputs() []DataOutput {
	return []DataOutput{{Type: DataTypeCleaned, Location: s.deps.Config.Paths.CleanedPath()}}
}

// AugmentStage joins route, station and override data onto the cleaned
// table and writes the canonical table.
type AugmentStage struct {
	BaseStage
	deps StageDeps
}

// NewAugmentStage creates the augment step
func NewAugmentStage(deps StageDeps) *AugmentStage {
	deps = deps.withDefaults()
	return &AugmentStage{
		BaseStage: NewBaseStage(StageIDAugment, StageNameAugment, []string{StageIDClean}),
		deps:      deps,
	}
}

// Execute reads the cleaned table and writes the canonical one.
func (s *AugmentStage) Execute(ctx context.Context, state *OperationState) error {
	cfg := s.deps.Config
	logger := s.deps.Logger.With(slog.String("stage", s.ID()))

	cleaned, err := dataprocessing.ReadCSV(cfg.Paths.CleanedPath(), dataprocessing.CleanSchema)
	if err != nil {
		return err
	}
	ref, err := reference.Load(cfg.Paths, cfg.Pipeline, true, logger)
	if err != nil {
		return err
	}

	canonical, err := dataprocessing.Augment(cleaned, dataprocessing.AugmentOptions{
		Routes:      ref.Routes,
		Stations:    ref.Stations,
		Overrides:   ref.Overrides,
		RatioPolicy: domain.RatioPolicy(cfg.Pipeline.RatioPolicy),
	})
	if err != nil {
		return err
	}
	if cfg.Pipeline.ValidateRecords {
		if err := dataprocessing.ValidateRecords(canonical); err != nil {
			return err
		}
	}
	if err := s.deps.Writer.WriteFrame(cfg.Paths.CanonicalPath(), canonical); err != nil {
		return err
	}

	unmatched := canonical.Col(domain.ColStationType).NullCount()
	s.deps.Metrics.RecordRows(ctx, s.ID(), cleaned.Len(), canonical.Len())
	stepState := state.GetStage(s.ID())
	stepState.SetMetadata(ContextKeyRowsIn, cleaned.Len())
	stepState.SetMetadata(ContextKeyRowsOut, canonical.Len())
	state.Manifest.SetConfig("ratio_policy", cfg.Pipeline.RatioPolicy)
	if ref.Overrides != nil {
		state.Manifest.SetConfig("overrides_version", ref.Overrides.Version)
	}
	state.Manifest.AddData(DataTypeCanonical, &DataInfo{
		Location:  cfg.Paths.CanonicalPath(),
		Rows:      canonical.Len(),
		CreatedBy: s.ID(),
		Metadata:  map[string]interface{}{"rows_without_station_match": unmatched},
	})

	logger.InfoContext(ctx, "Augment stage completed",
		slog.Int("rows", canonical.Len()),
		slog.Int("rows_without_station_match", unmatched))
	return nil
}

// ProducedOutputs returns the data outputs this step produces
func (s *AugmentStage) ProducedOutputs() []DataOutput {
	return []DataOutput{{Type: DataTypeCanonical, Location: s.deps.Config.Paths.CanonicalPath()}}
}

// StageFactory creates the pipeline steps in registration order
func StageFactory(deps StageDeps) []Step {
	return []Step{
		NewCombineStage(deps),
		NewCleanStage(deps),
		NewAugmentStage(deps),
	}
}

// NewPipelineRegistry registers every pipeline step.
func NewPipelineRegistry(deps StageDeps) (*Registry, error) {
	registry := NewRegistry()
	for _, step := range StageFactory(deps) {
		if err := registry.Register(step); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
