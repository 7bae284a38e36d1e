package exporter

import (
	"bytes"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "amtkcli/internal/errors"
	"amtkcli/internal/frame"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}))).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	writer := NewCSVWriter(testLogger())

	tests := []struct {
		name    string
		options WriteOptions
		want    [][]string
	}{
		{
			name: "headers and records",
			options: WriteOptions{
				Headers: []string{"Station Code", "Station"},
				Records: [][]string{{"NYP", "New York"}, {"WAS", "Washington, DC"}},
			},
			want: [][]string{{"Station Code", "Station"}, {"NYP", "New York"}, {"WAS", "Washington, DC"}},
		},
		{
			name:    "headers only",
			options: WriteOptions{Headers: []string{"a", "b"}},
			want:    [][]string{{"a", "b"}},
		},
		{
			name: "with BOM",
			options: WriteOptions{
				Headers:   []string{"x"},
				Records:   [][]string{{"1"}},
				BOMPrefix: true,
			},
			want: [][]string{{"x"}, {"1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "out.csv")
			require.NoError(t, writer.WriteCSV(path, tt.options))
			assert.Equal(t, tt.want, readCSV(t, path))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.options.BOMPrefix, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
		})
	}
}

func TestCSVWriter_WriteFrame(t *testing.T) {
	f, err := frame.New(
		frame.Strings("Station Code", "NYP", "ZZZ"),
		frame.Ints("Train Number", 364, 50),
		frame.Floats("Late Detraining Customers Ratio", 0.05, nan()),
	)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "frame.csv")
	require.NoError(t, NewCSVWriter(testLogger()).WriteFrame(path, f))

	assert.Equal(t, [][]string{
		{"Station Code", "Train Number", "Late Detraining Customers Ratio"},
		{"NYP", "364", "0.05"},
		{"ZZZ", "50", ""},
	}, readCSV(t, path))
}

func TestCSVWriter_NoPartialFileOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("previous\n"), 0644))

	err := writeAtomic(path, func(*os.File) error { return assert.AnError })
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeStorage, apperrors.TypeOf(err))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
