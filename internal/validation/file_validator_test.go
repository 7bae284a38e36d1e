package validation

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "amtkcli/internal/errors"
)

func newValidator() *FileValidator {
	return NewFileValidator(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFileValidator_ValidateInputDirectory(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantType  apperrors.ErrorType
	}{
		{
			name:      "existing directory",
			setupFunc: func(t *testing.T) string { return t.TempDir() },
		},
		{
			name:      "non-existent directory",
			setupFunc: func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing") },
			wantType:  apperrors.ErrTypeNotFound,
		},
		{
			name: "path is file not directory",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "extract.xlsx", "x")
			},
			wantType: apperrors.ErrTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newValidator().ValidateInputDirectory(tt.setupFunc(t))
			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantType, apperrors.TypeOf(err))
		})
	}
}

func TestFileValidator_ValidateFiles(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "station_performance_metrics-v1p2.csv", "Arrival Station Code\nCHI\n")
	jsonPath := writeFile(t, dir, "amtk_sub_services.json", "[]")
	emptyPath := writeFile(t, dir, "empty.csv", "")

	tests := []struct {
		name     string
		validate func(*FileValidator) error
		wantType apperrors.ErrorType
	}{
		{"csv", func(v *FileValidator) error { return v.ValidateCSVFile(csvPath) }, ""},
		{"json", func(v *FileValidator) error { return v.ValidateJSONFile(jsonPath) }, ""},
		{"csv with json extension", func(v *FileValidator) error { return v.ValidateCSVFile(jsonPath) }, apperrors.ErrTypeValidation},
		{"empty file", func(v *FileValidator) error { return v.ValidateCSVFile(emptyPath) }, apperrors.ErrTypeValidation},
		{"missing file", func(v *FileValidator) error { return v.ValidateFile(filepath.Join(dir, "nope.csv")) }, apperrors.ErrTypeNotFound},
		{"directory", func(v *FileValidator) error { return v.ValidateFile(dir) }, apperrors.ErrTypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validate(newValidator())
			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantType, apperrors.TypeOf(err))
		})
	}
}
