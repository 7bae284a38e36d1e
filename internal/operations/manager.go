package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"amtkcli/internal/infrastructure"
)

// Manager orchestrates pipeline execution
type Manager struct {
	registry     *Registry
	telemetry    *infrastructure.Telemetry
	logger       *slog.Logger
	manifestPath string
}

// NewManager creates a new pipeline manager. A nil telemetry records
// nothing; an empty manifestPath keeps the manifest in memory only.
func NewManager(registry *Registry, telemetry *infrastructure.Telemetry, logger *slog.Logger, manifestPath string) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if telemetry == nil {
		telemetry = infrastructure.NewNoopTelemetry(logger)
	}
	return &Manager{
		registry:     registry,
		telemetry:    telemetry,
		logger:       logger,
		manifestPath: manifestPath,
	}
}

// GetRegistry returns the registry for accessing registered stages
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// Execute runs the requested step, or every step in dependency order when
// req.Step is empty or "all". Execution stops at the first failing step and
// the remaining steps are marked skipped.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	manifest := NewPipelineManifest(req.ID)
	state := NewOperationState(req.ID, manifest)

	ctx, span := m.telemetry.Tracer.Start(ctx, "pipeline.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", req.ID),
			attribute.String("operation.step", req.Step),
		))
	defer span.End()

	steps, err := m.resolveSteps(req.Step)
	if err != nil {
		m.logger.ErrorContext(ctx, "operation_error",
			slog.String("operation_id", req.ID),
			slog.String("error", err.Error()))
		infrastructure.RecordSpanError(span, err)
		state.Fail(err)
		return m.createResponse(state), err
	}

	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	m.logger.InfoContext(ctx, "operation_start",
		slog.String("operation_id", req.ID),
		slog.String("manifest_id", manifest.ID),
		slog.Int("step_count", len(steps)))

	state.Start()
	manifest.SetStatus("running")
	err = m.executeSequential(ctx, state, steps)
	if err != nil {
		infrastructure.RecordSpanError(span, err)
		state.Fail(err)
	} else {
		state.Complete()
		manifest.SetStatus("completed")
	}

	if m.manifestPath != "" {
		if saveErr := manifest.SaveToFile(m.manifestPath); saveErr != nil {
			m.logger.ErrorContext(ctx, "manifest_save_failed",
				slog.String("path", m.manifestPath),
				slog.String("error", saveErr.Error()))
			if err == nil {
				err = saveErr
				state.Fail(err)
			}
		}
	}

	m.logger.InfoContext(ctx, "operation_complete",
		slog.String("operation_id", req.ID),
		slog.String("status", string(state.Status)),
		slog.Duration("duration", state.Duration()))

	return m.createResponse(state), err
}

func (m *Manager) resolveSteps(requested string) ([]Step, error) {
	if requested == "" || requested == StepAll {
		return m.registry.GetDependencyOrder()
	}
	step, err := m.registry.Get(requested)
	if err != nil {
		return nil, err
	}
	return []Step{step}, nil
}

// executeSequential executes steps one by one
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if err := m.executeStep(ctx, state, step); err != nil {
			for _, rest := range steps[i+1:] {
				state.GetStage(rest.ID()).Skip(fmt.Sprintf("step %s failed", step.ID()))
			}
			return err
		}
	}
	return nil
}

func (m *Manager) executeStep(ctx context.Context, state *OperationState, step Step) error {
	ctx, span := m.telemetry.Tracer.Start(ctx, "pipeline.stage."+step.ID(),
		trace.WithAttributes(
			attribute.String("operation.id", state.ID),
			attribute.String("stage.id", step.ID()),
			attribute.String("stage.name", step.Name()),
		))
	defer span.End()

	stepState := state.GetStage(step.ID())
	stepState.Start()
	state.Manifest.RecordStageStart(step.ID(), step.Name())
	m.logger.InfoContext(ctx, "stage_start",
		slog.String("operation_id", state.ID),
		slog.String("stage", step.ID()))

	start := time.Now()
	err := step.Execute(ctx, state)
	duration := time.Since(start)

	if err != nil {
		err = NewExecutionError(step.ID(), err)
		stepState.Fail(err)
		state.Manifest.RecordStageFailure(step.ID(), err)
		infrastructure.RecordSpanError(span, err)
		m.telemetry.Metrics.RecordStage(ctx, step.ID(), string(StepStatusFailed), duration)
		m.telemetry.Metrics.RecordError(ctx, step.ID(), errorTypeOf(err))
		m.logger.ErrorContext(ctx, "stage_error",
			slog.String("operation_id", state.ID),
			slog.String("stage", step.ID()),
			slog.String("error_type", errorTypeOf(err)),
			slog.String("error", err.Error()))
		return err
	}

	outputs := make([]string, 0, len(step.ProducedOutputs()))
	for _, o := range step.ProducedOutputs() {
		outputs = append(outputs, o.Type)
	}
	stepState.Complete()
	state.Manifest.RecordStageCompletion(step.ID(), outputs, stepState.snapshotMetadata())
	m.telemetry.Metrics.RecordStage(ctx, step.ID(), string(StepStatusCompleted), duration)
	m.logger.InfoContext(ctx, "stage_complete",
		slog.String("operation_id", state.ID),
		slog.String("stage", step.ID()),
		slog.Duration("duration", duration))
	return nil
}

// createResponse creates an operation response from state
func (m *Manager) createResponse(state *OperationState) *OperationResponse {
	resp := &OperationResponse{
		ID:       state.ID,
		Status:   state.Status,
		Duration: state.Duration(),
		Steps:    state.Steps,
	}
	if state.Manifest != nil {
		resp.ManifestID = state.Manifest.ID
	}
	if state.Error != nil {
		resp.Error = state.Error.Error()
	}
	return resp
}
