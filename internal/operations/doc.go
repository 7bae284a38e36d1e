// Package operations runs the station performance pipeline as a sequence of
// registered steps: combine, clean and augment.
//
// Each step reads the previous step's persisted CSV and writes its own, so
// a single step can be rerun on its own. The Manager orders steps by their
// declared dependencies, wraps each one in a span, records stage metrics and
// keeps a PipelineManifest of what ran and what it produced.
//
// Example usage:
//
//	registry := operations.NewRegistry()
//	for _, step := range operations.StageFactory(deps) {
//		registry.Register(step)
//	}
//	manager := operations.NewManager(registry, telemetry, logger)
//	resp, err := manager.Execute(ctx, operations.OperationRequest{Step: "all"})
package operations
