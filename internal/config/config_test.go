package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dvfpipe/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "2022-T2", cfg.Pipeline.ReferenceQuarter)
	assert.Equal(t, []string{"2021-T3", "2021-T4", "2022-T1", "2022-T2"}, cfg.Pipeline.TestQuarters)
	assert.Equal(t, float64(360), cfg.Pipeline.MaxHouseSurface)
	assert.Equal(t, float64(200), cfg.Pipeline.MaxApartmentSurface)
	assert.Equal(t, 10, cfg.Pipeline.KZonePrice)
	assert.Equal(t, 3, cfg.Pipeline.KSchools)
	assert.Equal(t, 0.99, cfg.Pipeline.PriceQuantile)
	assert.Equal(t, "mean", cfg.Pipeline.ZonePriceAggregate)
	assert.Equal(t, 10, cfg.Pipeline.TopMetropoles)
	assert.Equal(t, "data", cfg.Paths.DataDir)
	assert.Equal(t, []string{"dvf/full_*.csv"}, cfg.Paths.DVFPatterns,
		"an unconfigured input set must still point at concrete files")
}

func TestValidateRejectsEmptyDVFPatterns(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Paths.DVFPatterns = nil
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no dvf input patterns")
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
pipeline:
  reference_quarter: 2021-T4
  test_quarters: ["2021-T3", "2021-T4"]
  k_zone_price: 5
paths:
  data_dir: /tmp/dvf
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "2021-T4", cfg.Pipeline.ReferenceQuarter)
	assert.Equal(t, 5, cfg.Pipeline.KZonePrice)
	assert.Equal(t, "/tmp/dvf", cfg.Paths.DataDir)
	// Untouched fields keep their defaults.
	assert.Equal(t, 3, cfg.Pipeline.KSchools)
}

func TestLoadInvalidQuarter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline:\n  reference_quarter: 2022-Q2\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reference quarter")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
}

func TestReferenceQuarterParsed(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, domain.Quarter{Year: 2022, T: 2}, cfg.ReferenceQuarter())

	set := cfg.TestQuarterSet()
	assert.True(t, set[domain.Quarter{Year: 2021, T: 3}])
	assert.False(t, set[domain.Quarter{Year: 2020, T: 1}])
}

func TestPathsResolve(t *testing.T) {
	p := PathsConfig{DataDir: "/srv/data"}
	p.applyDefaults()

	assert.Equal(t, filepath.Join("/srv/data", "open_data/valeurs_trimestrielles.csv"), p.Resolve(p.IndexTable))
	assert.Equal(t, "/abs/file.csv", p.Resolve("/abs/file.csv"))
}

func TestOutputPathCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	p := PathsConfig{DataDir: dir, OutputFile: "processed/out.csv"}

	out, err := p.OutputPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "processed", "out.csv"), out)
	assert.DirExists(t, filepath.Join(dir, "processed"))
}
