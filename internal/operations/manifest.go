package operations

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PipelineManifest records one pipeline run: which steps ran, how they
// ended and which files they produced.
type PipelineManifest struct {
	mu sync.RWMutex

	ID          string    `json:"id"`
	OperationID string    `json:"operation_id"`
	StartTime   time.Time `json:"start_time"`

	// Config captures the settings that shape the outputs.
	Config map[string]interface{} `json:"config,omitempty"`

	AvailableData   map[string]*DataInfo `json:"available_data"`
	CompletedStages []StageExecution     `json:"completed_stages"`

	Status      string    `json:"status"` // "pending", "running", "completed", "failed"
	LastUpdated time.Time `json:"last_updated"`
	Error       string    `json:"error,omitempty"`
}

// DataInfo tracks information about produced data
type DataInfo struct {
	Type      string                 `json:"type"`
	Location  string                 `json:"location"`
	Rows      int                    `json:"rows"`
	Files     []string               `json:"files,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	CreatedBy string                 `json:"created_by"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// StageExecution tracks the execution of a single stage
type StageExecution struct {
	StageID    string                 `json:"stage_id"`
	StageName  string                 `json:"stage_name"`
	StartTime  time.Time              `json:"start_time"`
	EndTime    time.Time              `json:"end_time"`
	Duration   string                 `json:"duration"`
	Status     string                 `json:"status"` // "running", "completed", "failed"
	OutputData []string               `json:"output_data"`
	Error      string                 `json:"error,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// NewPipelineManifest creates a new pipeline manifest
func NewPipelineManifest(operationID string) *PipelineManifest {
	now := time.Now()
	return &PipelineManifest{
		ID:              uuid.NewString(),
		OperationID:     operationID,
		StartTime:       now,
		Config:          make(map[string]interface{}),
		AvailableData:   make(map[string]*DataInfo),
		CompletedStages: []StageExecution{},
		Status:          "pending",
		LastUpdated:     now,
	}
}

// SetConfig records a setting in the manifest.
func (m *PipelineManifest) SetConfig(key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Config[key] = value
}

// GetData returns information about produced data
func (m *PipelineManifest) GetData(dataType string) (*DataInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, exists := m.AvailableData[dataType]
	return data, exists
}

// AddData records newly produced data
func (m *PipelineManifest) AddData(dataType string, info *DataInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	info.Type = dataType
	info.CreatedAt = time.Now()
	m.AvailableData[dataType] = info
	m.LastUpdated = time.Now()
}

// SetStatus updates the run status.
func (m *PipelineManifest) SetStatus(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Status = status
	m.LastUpdated = time.Now()
}

// RecordStageStart records the start of a stage execution
func (m *PipelineManifest) RecordStageStart(stageID, stageName string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CompletedStages = append(m.CompletedStages, StageExecution{
		StageID:   stageID,
		StageName: stageName,
		StartTime: time.Now(),
		Status:    "running",
	})
	m.LastUpdated = time.Now()
}

// RecordStageCompletion records the completion of a stage
func (m *PipelineManifest) RecordStageCompletion(stageID string, outputData []string, metadata map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s := m.latest(stageID); s != nil {
		s.EndTime = time.Now()
		s.Duration = s.EndTime.Sub(s.StartTime).String()
		s.Status = "completed"
		s.OutputData = outputData
		s.Metadata = metadata
	}
	m.LastUpdated = time.Now()
}

// RecordStageFailure records a stage failure and fails the run
func (m *PipelineManifest) RecordStageFailure(stageID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s := m.latest(stageID); s != nil {
		s.EndTime = time.Now()
		s.Duration = s.EndTime.Sub(s.StartTime).String()
		s.Status = "failed"
		s.Error = err.Error()
	}
	m.Status = "failed"
	m.Error = fmt.Sprintf("stage %s failed: %v", stageID, err)
	m.LastUpdated = time.Now()
}

func (m *PipelineManifest) latest(stageID string) *StageExecution {
	for i := len(m.CompletedStages) - 1; i >= 0; i-- {
		if m.CompletedStages[i].StageID == stageID {
			return &m.CompletedStages[i]
		}
	}
	return nil
}

// IsStageCompleted checks if a stage has been completed
func (m *PipelineManifest) IsStageCompleted(stageID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.latest(stageID)
	return s != nil && s.Status == "completed"
}

// SaveToFile saves the manifest to a JSON file
func (m *PipelineManifest) SaveToFile(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}
	return nil
}

// LoadManifestFromFile loads a manifest from a JSON file
func LoadManifestFromFile(path string) (*PipelineManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var manifest PipelineManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	if manifest.AvailableData == nil {
		manifest.AvailableData = make(map[string]*DataInfo)
	}
	return &manifest, nil
}
