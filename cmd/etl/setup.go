package main

import (
	"fmt"
	"os"

	"github.com/farxc/despesas-dw/internal/config"
	"github.com/farxc/despesas-dw/internal/db"
	"github.com/farxc/despesas-dw/internal/logger"
	"github.com/farxc/despesas-dw/internal/store"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
)

// app bundles what every subcommand needs once configuration is loaded.
type app struct {
	cfg       *config.Config
	appLogger *logger.Logger
	database  *sqlx.DB
	storage   *store.Storage
	logFile   *os.File
}

func setup() (*app, error) {
	const component = "Main"

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load(configFile, envName)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	appLogger, logFile, err := logger.OpenFile(cfg.LogFile, logger.ParseLevel(level))
	if err != nil {
		return nil, err
	}

	database, err := db.New(cfg.DatabaseURL, cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns, cfg.DB.MaxIdleTime)
	if err != nil {
		appLogger.Error(component, "Database connection failed: error=%v", err)
		logFile.Close()
		return nil, fmt.Errorf("connect to warehouse: %w", err)
	}
	appLogger.Info(component, "Database connection pool established: driver=%s environment=%s", database.DriverName(), cfg.Environment)

	return &app{
		cfg:       cfg,
		appLogger: appLogger,
		database:  database,
		storage:   store.NewStorage(database, cfg.Schema),
		logFile:   logFile,
	}, nil
}

func (a *app) close() {
	a.database.Close()
	a.logFile.Close()
}
