// Package app assembles a service binary: router, middleware chain,
// health endpoints, and the HTTP server lifecycle with graceful
// shutdown.
package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/julienschmidt/httprouter"

	"roomly/pkg/config"
	"roomly/pkg/contracts"
	"roomly/pkg/middleware"
	"roomly/pkg/storage"
)

type Application struct {
	cfg            *config.Config
	server         *http.Server
	rateLimiter    *middleware.RateLimiter
	healthHandler  http.Handler
	appHTTPHandler http.Handler
	onShutdown     []func()
}

func New(cfg *config.Config) *Application {
	return &Application{
		cfg:         cfg,
		rateLimiter: middleware.NewRateLimiter(cfg.RateLimitEnabled, cfg.Log),
	}
}

// RateLimiter exposes the shared limiter so handlers can wrap their
// routes with per-route limits.
func (a *Application) RateLimiter() *middleware.RateLimiter {
	return a.rateLimiter
}

// OnShutdown registers a cleanup callback run during graceful shutdown,
// after the server has stopped accepting requests.
func (a *Application) OnShutdown(fn func()) {
	a.onShutdown = append(a.onShutdown, fn)
}

// SetApp wires the service handler and the database-backed health
// endpoints into the server.
func (a *Application) SetApp(appHandler contracts.Handler, db *storage.DB) {
	a.setHealthHandler(db)
	a.setAppHandler(appHandler)
	a.setAppServer()
}

// Health endpoints skip the request pipeline except for recovery and
// logging, so a misbehaving middleware cannot take readiness down with it.
func (a *Application) setHealthHandler(db *storage.DB) {
	healthRouter := httprouter.New()
	healthHandler := NewHealthHandler(db, a.cfg.Log)
	healthHandler.RegisterRoutes(healthRouter)

	var h http.Handler = healthRouter
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.healthHandler = h
}

func (a *Application) setAppHandler(appHandler contracts.Handler) {
	appRouter := httprouter.New()
	appHandler.RegisterRoutes(appRouter)

	var h http.Handler = appRouter
	h = middleware.RequestTimeout(a.cfg.RequestTimeout)(h)
	h = middleware.ContentTypeValidation(a.cfg.Log)(h)
	h = middleware.MaxRequestSize(a.cfg.MaxRequestSize)(h)
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.appHTTPHandler = h
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle("/", a.appHTTPHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.rateLimiter.Stop()
	for _, fn := range a.onShutdown {
		fn()
	}

	a.cfg.Log.Info("Server stopped gracefully")
}
