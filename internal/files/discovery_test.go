package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
}

func TestDiscovery_FindWorkbooks(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "FY23 Q2 Station Performance.xlsx")
	touch(t, dir, "FY23%20Q1%20Station%20Performance.xlsx")
	touch(t, dir, "Station Performance notes.txt")
	touch(t, dir, "~$FY23 Q3 Station Performance.xlsx")
	touch(t, dir, "ridership.xlsx")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "Station Performance.xlsx"), 0755))

	files, err := NewDiscovery("").FindWorkbooks(dir, "*Station Performance*.xlsx")
	require.NoError(t, err)

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	assert.Equal(t, []string{
		"FY23 Q2 Station Performance.xlsx",
		"FY23%20Q1%20Station%20Performance.xlsx",
	}, names)
	assert.Equal(t, filepath.Join(dir, names[0]), files[0].Path)
}

func TestDiscovery_RelativeDir(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "raw"), 0755))
	touch(t, filepath.Join(base, "raw"), "a.csv")

	files, err := NewDiscovery(base).FindFilesByPattern("raw", "*.csv")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, int64(1), files[0].Size)
}

func TestDiscovery_Errors(t *testing.T) {
	d := NewDiscovery("")

	_, err := d.FindFilesByPattern(filepath.Join(t.TempDir(), "missing"), "*.xlsx")
	assert.Error(t, err)

	_, err = d.FindFilesByPattern(t.TempDir(), "[")
	assert.Error(t, err)
}
