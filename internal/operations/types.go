package operations

import (
	"time"
)

// Pipeline step identifiers
const (
	StageIDCombine = "combine"
	StageIDClean   = "clean"
	StageIDAugment = "augment"
)

// Pipeline step names
const (
	StageNameCombine = "Combine Extracts"
	StageNameClean   = "Clean Performance Table"
	StageNameAugment = "Augment With Reference Data"
)

// StepAll requests every registered step in dependency order.
const StepAll = "all"

// Data types recorded in the manifest
const (
	DataTypeRawWorkbooks = "raw_workbooks"
	DataTypeCombined     = "combined_csv"
	DataTypeCoverage     = "coverage_csv"
	DataTypeCleaned      = "cleaned_csv"
	DataTypeCanonical    = "canonical_csv"
)

// Context keys for operation state
const (
	ContextKeyRowsIn    = "rows_in"
	ContextKeyRowsOut   = "rows_out"
	ContextKeyFiles     = "files"
	ContextKeySentinels = "sentinel_values"
)

// OperationRequest represents a request to execute the pipeline
type OperationRequest struct {
	ID   string `json:"id"`
	Step string `json:"step"`
}

// OperationResponse represents the response from a pipeline execution
type OperationResponse struct {
	ID         string                `json:"id"`
	Status     OperationStatusValue  `json:"status"`
	Duration   time.Duration         `json:"duration"`
	Steps      map[string]*StepState `json:"steps"`
	ManifestID string                `json:"manifest_id"`
	Error      string                `json:"error,omitempty"`
}
