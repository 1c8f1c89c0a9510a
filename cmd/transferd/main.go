// cmd/transferd/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/valdraft/transferdesk/internal/config"
	"github.com/valdraft/transferdesk/internal/scheduler"
	"github.com/valdraft/transferdesk/internal/service"
	"github.com/valdraft/transferdesk/internal/state"
)

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	configPath := flag.String("config", getEnv("CONFIG_PATH", "config.yaml"), "path to the yaml config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.App.Environment)

	store, err := state.Open(cfg.Database.Filename)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open state store")
	}
	defer store.Close()

	if cfg.Mirror.Bucket != "" {
		mirror, err := state.NewMirror(context.Background(), cfg.Mirror.Bucket, cfg.Mirror.Prefix)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to set up state mirror")
		}
		store = store.WithMirror(mirror)
		log.Info().Str("bucket", cfg.Mirror.Bucket).Msg("State mirror enabled")
	}

	engines, err := service.EnginesFromConfig(cfg, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build league engines")
	}
	svc := buildService(store, engines, cfg)

	if err := scheduler.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize scheduler")
	}
	if err := scheduler.RegisterWindowJobs(svc, cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to register window jobs")
	}
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	server := newServer(cfg, svc)
	metricsServer := newMetricsServer(cfg)
	shutdownTimeout := time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 30)) * time.Second

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Run server
	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if metricsServer != nil {
		g.Go(func() error {
			log.Info().Str("addr", metricsServer.Addr).Msg("Starting metrics server")
			if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
				return fmt.Errorf("metrics server error: %w", err)
			}
			return nil
		})
	}

	// Wait for interrupt signal
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("Scheduler shutdown error")
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Metrics server shutdown error")
			}
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}
