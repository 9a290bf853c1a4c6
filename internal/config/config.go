// Package config builds the single configuration object the ETL and API are
// started with. The document selects an environment and holds one block of
// settings per environment; process environment variables override it.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/farxc/despesas-dw/internal/env"
	"github.com/spf13/viper"
)

const (
	keyEnvironment = "environment"

	keyBaseURL     = "base_url"
	keyDownloadDir = "download_dir"
	keyDatabaseURL = "database_url"
	keySchema      = "schema"
	keyLogFile     = "log_file"
	keyLogLevel    = "log_level"
	keyStartYear   = "start_year"
	keyEndYear     = "end_year"
	keyFactDelta   = "fact_delta"
	keyHTTPTimeout = "http_timeout"

	DefaultBaseURL   = "https://portaldatransparencia.gov.br/download-de-dados/despesas-execucao/"
	DefaultSchema    = "DW"
	DefaultStartYear = 2022

	FactDeltaTimeKey        = "time_key"
	FactDeltaDimensionTuple = "dimension_tuple"
)

type Config struct {
	Environment string
	BaseURL     string
	DownloadDir string
	DatabaseURL string
	Schema      string
	LogFile     string
	LogLevel    string
	StartYear   int
	// EndYear of zero means the current year.
	EndYear     int
	FactDelta   string
	HTTPTimeout time.Duration
	DB          DBConfig
}

type DBConfig struct {
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  string
}

// Load reads the document at path. environment, when non-empty, wins over
// DW_ENVIRONMENT and over the document's own "environment" key.
func Load(path, environment string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	envName := strings.TrimSpace(environment)
	if envName == "" {
		envName = env.GetString("DW_ENVIRONMENT", v.GetString(keyEnvironment))
	}
	if envName == "" {
		return nil, fmt.Errorf("config %s: no environment selected", path)
	}

	sub := v.Sub(envName)
	if sub == nil {
		return nil, fmt.Errorf("config %s: environment %q not found", path, envName)
	}
	sub.SetDefault(keyBaseURL, DefaultBaseURL)
	sub.SetDefault(keySchema, DefaultSchema)
	sub.SetDefault(keyLogFile, "etl.log")
	sub.SetDefault(keyLogLevel, "info")
	sub.SetDefault(keyStartYear, DefaultStartYear)
	sub.SetDefault(keyFactDelta, FactDeltaTimeKey)
	sub.SetDefault(keyHTTPTimeout, "10m")

	timeout, err := time.ParseDuration(sub.GetString(keyHTTPTimeout))
	if err != nil {
		return nil, fmt.Errorf("config %s: invalid %s: %w", path, keyHTTPTimeout, err)
	}

	cfg := &Config{
		Environment: envName,
		BaseURL:     env.GetString("BASE_URL", sub.GetString(keyBaseURL)),
		DownloadDir: env.GetString("DOWNLOAD_DIR", sub.GetString(keyDownloadDir)),
		DatabaseURL: env.GetString("DATABASE_URL", sub.GetString(keyDatabaseURL)),
		Schema:      sub.GetString(keySchema),
		LogFile:     env.GetString("LOG_FILE", sub.GetString(keyLogFile)),
		LogLevel:    sub.GetString(keyLogLevel),
		StartYear:   sub.GetInt(keyStartYear),
		EndYear:     sub.GetInt(keyEndYear),
		FactDelta:   sub.GetString(keyFactDelta),
		HTTPTimeout: env.GetDuration("HTTP_TIMEOUT", timeout),
		DB: DBConfig{
			MaxOpenConns: env.GetInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: env.GetInt("DB_MAX_IDLE_CONNS", 10),
			MaxIdleTime:  env.GetString("DB_MAX_IDLE_TIME", "15m"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s [%s]: %w", path, envName, err)
	}
	return cfg, nil
}

// Validate reports every problem found, not just the first one.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.BaseURL) == "" {
		problems = append(problems, "base_url is required")
	}
	if strings.TrimSpace(c.DownloadDir) == "" {
		problems = append(problems, "download_dir is required")
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		problems = append(problems, "database_url is required")
	}
	if c.FactDelta != FactDeltaTimeKey && c.FactDelta != FactDeltaDimensionTuple {
		problems = append(problems, fmt.Sprintf("fact_delta %q must be %q or %q", c.FactDelta, FactDeltaTimeKey, FactDeltaDimensionTuple))
	}
	if c.EndYear != 0 && c.EndYear < c.StartYear {
		problems = append(problems, fmt.Sprintf("end_year %d is before start_year %d", c.EndYear, c.StartYear))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// YearRange resolves the inclusive range to load, using now for an open end.
func (c *Config) YearRange(now time.Time) (int, int) {
	end := c.EndYear
	if end == 0 {
		end = now.Year()
	}
	return c.StartYear, end
}
