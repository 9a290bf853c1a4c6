package main

import (
	"os"

	"github.com/farxc/despesas-dw/internal/config"
	"github.com/farxc/despesas-dw/internal/db"
	"github.com/farxc/despesas-dw/internal/env"
	"github.com/farxc/despesas-dw/internal/logger"
	"github.com/farxc/despesas-dw/internal/store"
	"github.com/joho/godotenv"
)

func main() {
	const component = "Main"

	_ = godotenv.Load()
	appLogger := logger.New(os.Stderr, logger.LevelInfo)

	dwCfg, err := config.Load(env.GetString("CONFIG_FILE", "config.json"), "")
	if err != nil {
		appLogger.Fatal(component, "Failed to load configuration: error=%v", err)
	}
	appLogger.SetLogLevel(logger.ParseLevel(dwCfg.LogLevel))

	cfg := apiConfig{
		addr:        env.GetString("ADDR", ":8080"),
		environment: dwCfg.Environment,
		db:          dwCfg.DB,
	}

	db, err := db.New(
		dwCfg.DatabaseURL,
		cfg.db.MaxOpenConns,
		cfg.db.MaxIdleConns,
		cfg.db.MaxIdleTime)

	if err != nil {
		appLogger.Fatal(component, "Database connection failed: error=%v", err)
	}
	defer db.Close()
	appLogger.Info(component, "Database connection pool established: driver=%s environment=%s", db.DriverName(), dwCfg.Environment)

	app := &application{
		config:    cfg,
		store:     store.NewStorage(db, dwCfg.Schema),
		appLogger: appLogger,
	}

	mux := app.mount()

	if err := app.run(mux); err != nil {
		appLogger.Error(component, "Server stopped: error=%v", err)
		db.Close()
		os.Exit(1)
	}
}
