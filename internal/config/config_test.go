package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `{
  "environment": "dev",
  "dev": {
    "base_url": "https://portaldatransparencia.gov.br/download-de-dados/despesas-execucao/",
    "download_dir": "/tmp/despesas",
    "database_url": "sqlite:///tmp/dw.db",
    "schema": ""
  },
  "prod": {
    "base_url": "https://portaldatransparencia.gov.br/download-de-dados/despesas-execucao/",
    "download_dir": "/data/despesas",
    "database_url": "postgres://etl@db/dw?sslmode=disable",
    "log_level": "warn",
    "start_year": 2020,
    "end_year": 2023,
    "fact_delta": "dimension_tuple"
  }
}`

func writeDocument(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func clearOverrides(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DW_ENVIRONMENT", "BASE_URL", "DOWNLOAD_DIR", "DATABASE_URL", "LOG_FILE", "HTTP_TIMEOUT"} {
		t.Setenv(key, "")
	}
}

func TestLoadSelectsDocumentEnvironment(t *testing.T) {
	clearOverrides(t)
	path := writeDocument(t, sampleDocument)

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "/tmp/despesas", cfg.DownloadDir)
	assert.Equal(t, "sqlite:///tmp/dw.db", cfg.DatabaseURL)
	assert.Equal(t, "", cfg.Schema)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultStartYear, cfg.StartYear)
	assert.Equal(t, FactDeltaTimeKey, cfg.FactDelta)
	assert.Equal(t, 10*time.Minute, cfg.HTTPTimeout)
}

func TestLoadExplicitEnvironmentWins(t *testing.T) {
	clearOverrides(t)
	path := writeDocument(t, sampleDocument)
	t.Setenv("DW_ENVIRONMENT", "dev")

	cfg, err := Load(path, "prod")
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Environment)
	assert.Equal(t, DefaultSchema, cfg.Schema)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, FactDeltaDimensionTuple, cfg.FactDelta)

	start, end := cfg.YearRange(time.Now())
	assert.Equal(t, 2020, start)
	assert.Equal(t, 2023, end)
}

func TestLoadEnvironmentVariableOverrides(t *testing.T) {
	clearOverrides(t)
	path := writeDocument(t, sampleDocument)
	t.Setenv("DW_ENVIRONMENT", "prod")
	t.Setenv("DATABASE_URL", "postgres://override/dw")
	t.Setenv("DB_MAX_OPEN_CONNS", "3")

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Environment)
	assert.Equal(t, "postgres://override/dw", cfg.DatabaseURL)
	assert.Equal(t, 3, cfg.DB.MaxOpenConns)
}

func TestLoadUnknownEnvironment(t *testing.T) {
	clearOverrides(t)
	path := writeDocument(t, sampleDocument)

	_, err := Load(path, "staging")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `environment "staging" not found`)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"), "dev")
	require.Error(t, err)
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := &Config{StartYear: 2024, EndYear: 2022, FactDelta: "rows"}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_url is required")
	assert.Contains(t, err.Error(), "download_dir is required")
	assert.Contains(t, err.Error(), "database_url is required")
	assert.Contains(t, err.Error(), `fact_delta "rows"`)
	assert.Contains(t, err.Error(), "end_year 2022 is before start_year 2024")
}

func TestYearRangeOpenEnd(t *testing.T) {
	cfg := &Config{StartYear: 2022}
	start, end := cfg.YearRange(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 2022, start)
	assert.Equal(t, 2025, end)
}

func TestLoadDefaultsBaseURL(t *testing.T) {
	clearOverrides(t)
	path := writeDocument(t, `{"environment": "dev", "dev": {"download_dir": "d", "database_url": "sqlite://dw.db"}}`)

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
}
