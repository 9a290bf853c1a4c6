package main

import (
	"net/http"
	"time"

	"github.com/farxc/despesas-dw/internal/config"
	"github.com/farxc/despesas-dw/internal/logger"
	"github.com/farxc/despesas-dw/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const version = "0.1.0"

type application struct {
	config    apiConfig
	store     *store.Storage
	appLogger *logger.Logger
}

type apiConfig struct {
	addr        string
	environment string
	db          config.DBConfig
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	// Set a timeout value on the request context (ctx), that will signal
	// through ctx.Done() that the request has timed out and further
	// processing should be stopped.
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		r.Get("/years", app.handleGetYears)
		r.Get("/dimensions/{name}", app.handleGetDimension)
		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", app.handleGetExpenses)
			r.Get("/by-modality", app.handleGetExpensesByModality)
		})
		r.Get("/runs", app.handleGetRunHistory)
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	const component = "API"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 120,
		ReadTimeout:  time.Second * 40,
		IdleTimeout:  time.Minute,
	}

	app.appLogger.Info(component, "Server started: addr=%s environment=%s", app.config.addr, app.config.environment)
	return srv.ListenAndServe()
}
