package operations

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"amtkcli/internal/config"
	"amtkcli/internal/dataprocessing"
	apperrors "amtkcli/internal/errors"
	"amtkcli/internal/frame"
	"amtkcli/pkg/contracts/domain"
)

const (
	fixtureSubServices = `[
  {"sub service": "Wolverine", "hosts": [{"railroad": "Amtrak", "miles": 97}, {"railroad": "NS", "miles": 182}]},
  {"sub service": "Cardinal", "hosts": [{"railroad": "CSX", "miles": 1146.6}]}
]`
	fixtureStates  = `{"United States": ["Illinois", "Maine"], "Canada": ["Ontario"]}`
	fixtureRegions = `{"Midwest": {"East North Central": ["Illinois"]}, "Northeast": {"New England": ["Maine"]}}`
	fixtureNTAD    = `OBJECTID,Code,StnType,StaType,Name,City,State,Address1,Address2,ZipCode,lat,lon
1,CHI,TRAIN,Station Building (with waiting room),Chicago,Chicago,IL,225 S. Canal St.,,60606,41.8786,-87.6394
2,XCH,BUS,Curbside Bus Stop only (no shelter),Bus,Chicago,IL,,,60601,41.88,-87.62
3,FAL,TRAIN,Platform only (no shelter),Falmouth,Portland,ME,,,04101,,
`
	fixtureOverrides = `version: "test-1"
overrides:
  - code: FAL
    city: Falmouth
    zip_code: "04105"
    latitude: 43.7696
    longitude: -70.2595
`
)

func writeFixture(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// writeExtract writes a raw performance workbook with a title row above the
// header, the way the published extracts are laid out.
func writeExtract(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, 0, len(domain.RawColumns))
	for _, c := range domain.RawColumns {
		if c != domain.ColAvgMinLateC {
			header = append(header, c)
		}
	}
	all := append([][]any{{"Station Performance Metrics"}, header}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, f.SaveAs(path))
}

func testWorkspace(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.BaseDir = t.TempDir()
	paths, err := cfg.Paths.Resolve()
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())
	cfg.Paths = paths

	writeFixture(t, paths.SubServicesFile, fixtureSubServices)
	writeFixture(t, paths.StatesFile, fixtureStates)
	writeFixture(t, paths.RegionsFile, fixtureRegions)
	writeFixture(t, paths.StationsFile, fixtureNTAD)
	writeFixture(t, paths.OverridesFile, fixtureOverrides)

	writeExtract(t, filepath.Join(paths.RawDir, "FY24 Station Performance.xlsx"), [][]any{
		{2024, 1, "State Supported", "Michigan Services", "Wolverine", 364, "CHI", "Chicago,  Illinois", 100, 5, 12.5},
		{2024, 2, "State Supported", "Michigan Services", "Wolverine", 364, "ZZZ", "Nowhere, Atlantis", 40, 0, "--"},
		{2023, 4, "Long Distance", "Long Distance", "Cardinal", 50, "FAL", "Falmouth, Maine", 10, 2, 7},
	})
	writeFixture(t, filepath.Join(paths.RawDir, "notes.txt"), "not a workbook")
	return cfg
}

func findRow(t *testing.T, f *frame.Frame, code string) frame.Row {
	t.Helper()
	for i := 0; i < f.Len(); i++ {
		if c, _ := f.Row(i).Str(domain.ColStationCode); c == code {
			return f.Row(i)
		}
	}
	t.Fatalf("station %s not found", code)
	return frame.Row{}
}

func TestPipeline_EndToEnd(t *testing.T) {
	cfg := testWorkspace(t)
	registry, err := NewPipelineRegistry(StageDeps{Config: cfg, Logger: testLogger()})
	require.NoError(t, err)
	m := NewManager(registry, nil, testLogger(), cfg.Paths.ManifestPath())

	resp, err := m.Execute(context.Background(), OperationRequest{Step: StepAll})
	require.NoError(t, err)
	assert.Equal(t, OperationStatusCompleted, resp.Status)

	t.Run("combined", func(t *testing.T) {
		combined, err := dataprocessing.ReadCSV(cfg.Paths.CombinedPath(), dataprocessing.RawSchema)
		require.NoError(t, err)
		assert.Equal(t, domain.RawColumns, combined.Columns())
		// newest period first
		assert.Equal(t, []any{"ZZZ", "CHI", "FAL"}, combined.Col(domain.ColStationCode).Values)
		assert.Nil(t, findRow(t, combined, "ZZZ").Get(domain.ColAvgMinLateCS))
	})

	t.Run("coverage", func(t *testing.T) {
		for _, path := range []string{cfg.Paths.CoveragePath(), CoverageByServiceLinePath(cfg.Paths)} {
			_, err := os.Stat(path)
			assert.NoError(t, err, path)
		}
	})

	t.Run("canonical", func(t *testing.T) {
		canonical, err := dataprocessing.ReadCSV(cfg.Paths.CanonicalPath(), dataprocessing.CanonicalSchema)
		require.NoError(t, err)
		assert.Equal(t, domain.CanonicalColumns, canonical.Columns())
		require.Equal(t, 3, canonical.Len())

		chi := findRow(t, canonical, "CHI")
		assert.Equal(t, 0.05, chi.Get(domain.ColLateRatio))
		assert.Equal(t, int64(279), chi.Get(domain.ColRouteMiles))
		assert.Equal(t, 12.5, chi.Get(domain.ColAvgMinLate))
		assert.Equal(t, "Illinois", chi.Get(domain.ColState))
		assert.Equal(t, "Midwest", chi.Get(domain.ColRegion))
		assert.Equal(t, "United States", chi.Get(domain.ColCountry))
		assert.Equal(t, "Chicago", chi.Get(domain.ColCity))

		zzz := findRow(t, canonical, "ZZZ")
		assert.Nil(t, zzz.Get(domain.ColCity))
		assert.Nil(t, zzz.Get(domain.ColLateRatio))
		assert.Nil(t, zzz.Get(domain.ColRegion))

		fal := findRow(t, canonical, "FAL")
		assert.Equal(t, "Falmouth", fal.Get(domain.ColCity))
		assert.Equal(t, "04105", fal.Get(domain.ColZIPCode))
		assert.Equal(t, int64(1146), fal.Get(domain.ColRouteMiles))
	})

	t.Run("manifest", func(t *testing.T) {
		manifest, err := LoadManifestFromFile(cfg.Paths.ManifestPath())
		require.NoError(t, err)
		assert.Equal(t, "completed", manifest.Status)
		assert.Equal(t, "test-1", manifest.Config["overrides_version"])
		info, ok := manifest.AvailableData[DataTypeCanonical]
		require.True(t, ok)
		assert.Equal(t, 3, info.Rows)
		raw := manifest.AvailableData[DataTypeRawWorkbooks]
		require.NotNil(t, raw)
		assert.Equal(t, []string{"FY24 Station Performance.xlsx"}, raw.Files)
	})
}

func TestPipeline_Failures(t *testing.T) {
	t.Run("no raw workbooks", func(t *testing.T) {
		cfg := testWorkspace(t)
		cfg.Paths.RawPattern = "*Ridership*.xlsx"
		registry, err := NewPipelineRegistry(StageDeps{Config: cfg, Logger: testLogger()})
		require.NoError(t, err)

		resp, err := NewManager(registry, nil, testLogger(), "").Execute(context.Background(), OperationRequest{})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrTypeNotFound, apperrors.TypeOf(err))
		assert.Equal(t, StepStatusSkipped, resp.Steps[StageIDAugment].GetStatus())
		_, statErr := os.Stat(cfg.Paths.CombinedPath())
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("clean without combined input", func(t *testing.T) {
		cfg := testWorkspace(t)
		registry, err := NewPipelineRegistry(StageDeps{Config: cfg, Logger: testLogger()})
		require.NoError(t, err)

		_, err = NewManager(registry, nil, testLogger(), "").Execute(context.Background(), OperationRequest{Step: StageIDClean})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrTypeNotFound, apperrors.TypeOf(err))
	})

	t.Run("invalid records", func(t *testing.T) {
		cfg := testWorkspace(t)
		writeExtract(t, filepath.Join(cfg.Paths.RawDir, "FY24 Station Performance.xlsx"), [][]any{
			{2024, 1, "State Supported", "Michigan Services", "Wolverine", 364, "CHI", "Chicago, Illinois", 10, 50, 3},
		})
		registry, err := NewPipelineRegistry(StageDeps{Config: cfg, Logger: testLogger()})
		require.NoError(t, err)

		resp, err := NewManager(registry, nil, testLogger(), "").Execute(context.Background(), OperationRequest{})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrTypeValidation, apperrors.TypeOf(err))
		assert.Equal(t, StepStatusFailed, resp.Steps[StageIDAugment].GetStatus())
		_, statErr := os.Stat(cfg.Paths.CanonicalPath())
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestCombineOutputs_BuildsEverythingBeforeWriting(t *testing.T) {
	cfg := testWorkspace(t)
	paths := cfg.Paths

	combined, err := frame.New(
		frame.Ints(domain.ColFiscalYear, 2024, 2024, 2023),
		frame.Ints(domain.ColFiscalQuarter, 1, 1, 4),
		frame.Strings(domain.ColServiceLine, "State Supported", "Long Distance", "Long Distance"),
	)
	require.NoError(t, err)

	outputs, err := combineOutputs(paths, combined)
	require.NoError(t, err)
	require.Len(t, outputs, 3)

	assert.Equal(t, paths.CombinedPath(), outputs[0].path)
	assert.Same(t, combined, outputs[0].frame)
	assert.Equal(t, paths.CoveragePath(), outputs[1].path)
	assert.Equal(t, 2, outputs[1].frame.Len())
	assert.Equal(t, CoverageByServiceLinePath(paths), outputs[2].path)
	assert.Equal(t, 3, outputs[2].frame.Len())

	for _, out := range outputs {
		assert.NoFileExists(t, out.path)
	}
}
