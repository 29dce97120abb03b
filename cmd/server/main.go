// Command server runs the fare-watch backend: a flight price search and
// watchlist HTTP API backed by the Amadeus Self-Service APIs and SQLite.
//
// Startup order:
//  1. Load .env (best effort) and environment configuration
//  2. Configure zerolog (level, optional pretty console)
//  3. Initialize OpenTelemetry tracing (optional)
//  4. Open SQLite, run migrations, attach GORM tracing
//  5. Build the provider client and wire routes
//  6. Serve with graceful shutdown on SIGINT/SIGTERM
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-fare-backend/internal/amadeus"
	"github.com/tbourn/go-fare-backend/internal/config"
	httpapi "github.com/tbourn/go-fare-backend/internal/http"
	"github.com/tbourn/go-fare-backend/internal/observability"
	"github.com/tbourn/go-fare-backend/internal/repo"
	"github.com/tbourn/go-fare-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

// @title        Fare Watch Backend API
// @version      1.0
// @description  Flight price search and watchlist service backed by the Amadeus Self-Service APIs.
// @BasePath     /api
func main() {
	// .env is optional; real deployments use the process environment.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	// Logging
	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Info().Str("version", version).Str("gin_mode", cfg.GinMode).Msg("starting fare-watch backend")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	// Database
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}
	if cfg.OTEL.Enabled {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			log.Warn().Err(err).Msg("gorm tracing plugin failed, continuing without")
		}
	}

	// Flight provider
	baseURL := amadeus.BaseURL(cfg.Amadeus.Env)
	tokens, err := amadeus.NewTokenProvider(baseURL, cfg.Amadeus.APIKey, cfg.Amadeus.APISecret)
	if err != nil {
		log.Fatal().Err(err).Msg("amadeus credentials missing")
	}
	searcher := amadeus.New(amadeus.Config{
		BaseURL:   baseURL,
		Currency:  cfg.Amadeus.Currency,
		MaxOffers: cfg.Amadeus.MaxOffers,
		FlexDays:  cfg.Amadeus.FlexDays,
		Timeout:   cfg.Amadeus.Timeout,
	}, tokens)

	// HTTP
	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, searcher, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Amadeus.Env).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown error")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown error")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info().Msg("fare-watch backend stopped")
}
