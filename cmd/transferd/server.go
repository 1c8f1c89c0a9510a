// cmd/transferd/server.go
package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/valdraft/transferdesk/internal/api"
	"github.com/valdraft/transferdesk/internal/config"
	"github.com/valdraft/transferdesk/internal/metrics"
	"github.com/valdraft/transferdesk/internal/ratelimit"
	"github.com/valdraft/transferdesk/internal/service"
	"github.com/valdraft/transferdesk/internal/state"
	"github.com/valdraft/transferdesk/internal/transfers"
)

func buildService(store *state.Store, engines map[string]*transfers.Engine, cfg *config.Config) *service.Service {
	return service.New(store, engines, cfg.Leagues, service.Options{
		Metrics: metrics.Default(),
	})
}

func newServer(cfg *config.Config, svc *service.Service) *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithJSON,
	)

	// Register routes
	registerRoutes(router, svc)

	port := cfg.App.Port
	if port == 0 {
		port = 8080
	}
	return &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux, svc *service.Service) {
	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	limiter := ratelimit.New(nil)
	trustProxy := getEnv("TRUST_PROXY", "") == "true"
	api.NewHandlers(svc, limiter, trustProxy).Register(mux)
}

// newMetricsServer serves prometheus metrics on a separate port. Disabled
// when no metrics port is configured.
func newMetricsServer(cfg *config.Config) *http.Server {
	if cfg.App.MetricsPort == 0 {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return &http.Server{
		Addr:        ":" + strconv.Itoa(cfg.App.MetricsPort),
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
	}
}
