package convconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSubstitutesEnvVars(t *testing.T) {
	t.Setenv("COLBUILD_TEST_LEVEL", "debug")

	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: ${COLBUILD_TEST_LEVEL}\nmax_rows: 10\n"), 0o644))

	cfg := NewRunConfig(DefaultCSVLimits())
	require.NoError(t, Load(path, cfg))

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, uint64(10), cfg.MaxRows)
}

func TestLoadMissingEnvVarSubstitutesEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: \"${COLBUILD_DOES_NOT_EXIST}\"\n"), 0o644))

	cfg := NewRunConfig(DefaultCSVLimits())
	require.NoError(t, Load(path, cfg))

	assert.Equal(t, "", cfg.LogLevel)
}

func TestLoadMissingFileReturnsConfigError(t *testing.T) {
	cfg := NewRunConfig(DefaultCSVLimits())
	err := Load("/nonexistent/path.yaml", cfg)
	require.Error(t, err)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")

	cfg := NewRunConfig(DefaultExcelLimits())
	cfg.HasHeaderRow = false
	require.NoError(t, Save(path, cfg))

	loaded := NewRunConfig(Limits{})
	require.NoError(t, Load(path, loaded))

	assert.Equal(t, cfg.MaxRows, loaded.MaxRows)
	assert.Equal(t, cfg.HasHeaderRow, loaded.HasHeaderRow)
}
