package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "us_uk", cfg.Extraction.NumberFormat)
	assert.Equal(t, "next_number", cfg.Extraction.ProximityRule)
	assert.Equal(t, 100*time.Millisecond, cfg.Extraction.PollInterval)
	assert.Equal(t, 50, cfg.Extraction.MaxFileSizeMB)
	assert.Equal(t, 500, cfg.Parser.WordsPerPage)
	assert.Equal(t, 1000, cfg.History.MaxSize)
	assert.Equal(t, []string{"txt"}, cfg.Output.Formats)
}

func TestLoadConfig_FileValues(t *testing.T) {
	path := writeConfig(t, `
output:
  folder: /tmp/reports
  formats: [txt, json]
extraction:
  poll_interval: 250ms
  queue_size: 8
serve:
  keywords: [Salary, Bonus]
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/reports", cfg.Output.Folder)
	assert.Equal(t, []string{"txt", "json"}, cfg.Output.Formats)
	assert.Equal(t, 250*time.Millisecond, cfg.Extraction.PollInterval)
	assert.Equal(t, 8, cfg.Extraction.QueueSize)
	assert.Equal(t, []string{"Salary", "Bonus"}, cfg.Serve.Keywords)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "extraction:\n  queue_size: 8\n")
	t.Setenv("TEXTEXTRACT_EXTRACTION_QUEUE_SIZE", "16")
	t.Setenv("TEXTEXTRACT_SERVE_KEYWORDS", "Salary, Bonus ,")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Extraction.QueueSize)
	assert.Equal(t, []string{"Salary", "Bonus"}, cfg.Serve.Keywords)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	path := writeConfig(t, "output:\n  formats: [pdf]\nlogging:\n  format: xml\n")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "output.formats")
	assert.Contains(t, err.Error(), "logging.format")
}

func TestEnvTransform(t *testing.T) {
	key, value := envTransform("TEXTEXTRACT_PARSER_ANTIWORD_PATH", "/usr/bin/antiword")
	assert.Equal(t, "parser.antiword_path", key)
	assert.Equal(t, "/usr/bin/antiword", value)

	key, value = envTransform("TEXTEXTRACT_OUTPUT_FORMATS", "txt,xlsx")
	assert.Equal(t, "output.formats", key)
	assert.Equal(t, []string{"txt", "xlsx"}, value)
}

func TestIsPostgresDSN(t *testing.T) {
	assert.True(t, IsPostgresDSN("postgres://user@localhost/db"))
	assert.True(t, IsPostgresDSN("postgresql://localhost/db"))
	assert.False(t, IsPostgresDSN("/var/lib/textextract.db"))
	assert.False(t, IsPostgresDSN("file::memory:?cache=shared"))
}
