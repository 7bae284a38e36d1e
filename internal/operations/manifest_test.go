package operations

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineManifest_Lifecycle(t *testing.T) {
	m := NewPipelineManifest("op-1")
	_, err := uuid.Parse(m.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", m.Status)

	m.RecordStageStart(StageIDCombine, StageNameCombine)
	assert.False(t, m.IsStageCompleted(StageIDCombine))
	m.RecordStageCompletion(StageIDCombine, []string{DataTypeCombined}, map[string]interface{}{"rows_out": 2})
	assert.True(t, m.IsStageCompleted(StageIDCombine))

	m.AddData(DataTypeCombined, &DataInfo{Location: "/tmp/x.csv", Rows: 2, CreatedBy: StageIDCombine})
	info, ok := m.GetData(DataTypeCombined)
	require.True(t, ok)
	assert.Equal(t, DataTypeCombined, info.Type)
	assert.False(t, info.CreatedAt.IsZero())

	m.RecordStageStart(StageIDClean, StageNameClean)
	m.RecordStageFailure(StageIDClean, errors.New("boom"))
	assert.Equal(t, "failed", m.Status)
	assert.Contains(t, m.Error, "clean")
	assert.Equal(t, "boom", m.CompletedStages[1].Error)
}

func TestPipelineManifest_SaveAndLoad(t *testing.T) {
	m := NewPipelineManifest("op-2")
	m.SetConfig("ratio_policy", "null_on_zero_late")
	m.RecordStageStart(StageIDAugment, StageNameAugment)
	m.RecordStageCompletion(StageIDAugment, []string{DataTypeCanonical}, nil)
	m.SetStatus("completed")

	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, m.SaveToFile(path))

	loaded, err := LoadManifestFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, m.ID, loaded.ID)
	assert.Equal(t, "completed", loaded.Status)
	assert.Equal(t, "null_on_zero_late", loaded.Config["ratio_policy"])
	require.Len(t, loaded.CompletedStages, 1)
	assert.Equal(t, []string{DataTypeCanonical}, loaded.CompletedStages[0].OutputData)

	_, err = LoadManifestFromFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
