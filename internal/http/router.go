// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, compression, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-fare-backend/docs" // swagger spec registration
	"github.com/tbourn/go-fare-backend/internal/config"
	"github.com/tbourn/go-fare-backend/internal/domain"
	"github.com/tbourn/go-fare-backend/internal/http/handlers"
	"github.com/tbourn/go-fare-backend/internal/http/middleware"
	"github.com/tbourn/go-fare-backend/internal/repo"
	"github.com/tbourn/go-fare-backend/internal/services"
)

// watchRepoShim adapts the repository free functions to the
// services.WatchlistRepo interface expected by the WatchlistService. This
// keeps services decoupled from the concrete repo package while reusing
// existing functions.
type watchRepoShim struct{}

// UpsertWatchedFlight proxies repo.UpsertWatchedFlight.
func (watchRepoShim) UpsertWatchedFlight(ctx context.Context, db *gorm.DB, wf *domain.WatchedFlight) error {
	return repo.UpsertWatchedFlight(ctx, db, wf)
}

// ListWatchedFlights proxies repo.ListWatchedFlights.
func (watchRepoShim) ListWatchedFlights(ctx context.Context, db *gorm.DB) ([]repo.WatchedFlightWithPrices, error) {
	return repo.ListWatchedFlights(ctx, db)
}

// GetWatchedFlight proxies repo.GetWatchedFlight.
func (watchRepoShim) GetWatchedFlight(ctx context.Context, db *gorm.DB, id uint) (*repo.WatchedFlightWithPrices, error) {
	return repo.GetWatchedFlight(ctx, db, id)
}

// ListAllWatchedFlights proxies repo.ListAllWatchedFlights (refresh sweep).
func (watchRepoShim) ListAllWatchedFlights(ctx context.Context, db *gorm.DB) ([]domain.WatchedFlight, error) {
	return repo.ListAllWatchedFlights(ctx, db)
}

// UpdateWatchedOffer proxies repo.UpdateWatchedOffer (refresh sweep).
func (watchRepoShim) UpdateWatchedOffer(ctx context.Context, db *gorm.DB, id uint, offerID, offerUID, offerJSON, detailsJSON *string) error {
	return repo.UpdateWatchedOffer(ctx, db, id, offerID, offerUID, offerJSON, detailsJSON)
}

// DeleteWatchedFlight proxies repo.DeleteWatchedFlight.
func (watchRepoShim) DeleteWatchedFlight(ctx context.Context, db *gorm.DB, id uint) error {
	return repo.DeleteWatchedFlight(ctx, db, id)
}

// AppendPriceHistory proxies repo.AppendPriceHistory.
func (watchRepoShim) AppendPriceHistory(ctx context.Context, db *gorm.DB, flightID uint, price float64, currency string) (*domain.PriceHistory, error) {
	return repo.AppendPriceHistory(ctx, db, flightID, price, currency)
}

// ListPriceHistory proxies repo.ListPriceHistory.
func (watchRepoShim) ListPriceHistory(ctx context.Context, db *gorm.DB, flightID uint) ([]domain.PriceHistory, error) {
	return repo.ListPriceHistory(ctx, db, flightID)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), compression and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the public API under the configured base path.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Response compression
//  7. Metrics
//  8. Rate limiter (per client IP, protects the provider quota)
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, searcher services.FlightSearcher, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key", // project-specific sensitive header example
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Compress responses (search payloads carry full offer JSON)
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (off by default)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/provider
	searchSvc := services.NewSearchService(searcher)
	watchSvc := services.NewWatchlistService(db, watchRepoShim{}, searcher)
	h := handlers.New(searchSvc, watchSvc)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api"
	api := groupWithPrefix(r, apiBase)
	{
		// Flights
		api.GET("/flights/search", h.SearchFlights)
		api.POST("/flights/price-confirm", h.ConfirmPrice)

		// Reference lookups
		api.GET("/locations", h.SearchLocations)
		api.GET("/airlines", h.SearchAirlines)

		// Watchlist
		api.POST("/watchlist", h.CreateWatch)
		api.GET("/watchlist", h.ListWatchlist)
		api.GET("/watchlist/:id/history", h.GetPriceHistory)
		api.POST("/watchlist/refresh", h.RefreshWatchlist)
		api.DELETE("/watchlist/:id", h.DeleteWatch)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
