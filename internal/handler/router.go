package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/docedelicia/storefront/internal/metrics"
	"github.com/docedelicia/storefront/internal/repository"
)

// Router assembles the storefront HTTP API.
type Router struct {
	authHandler    *AuthHandler
	catalogHandler *CatalogHandler
	cartHandler    *CartHandler
	orderHandler   *OrderHandler
	adminHandler   *AdminHandler
	authMiddleware func(http.Handler) http.Handler
	metrics        *metrics.Metrics
	dbHealth       repository.DatabaseHealth
	logger         zerolog.Logger
}

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	AuthHandler    *AuthHandler
	CatalogHandler *CatalogHandler
	CartHandler    *CartHandler
	OrderHandler   *OrderHandler
	AdminHandler   *AdminHandler
	AuthMiddleware func(http.Handler) http.Handler
	Metrics        *metrics.Metrics
	DBHealth       repository.DatabaseHealth
	Logger         zerolog.Logger
}

// NewRouter creates a new Router.
func NewRouter(config RouterConfig) *Router {
	return &Router{
		authHandler:    config.AuthHandler,
		catalogHandler: config.CatalogHandler,
		cartHandler:    config.CartHandler,
		orderHandler:   config.OrderHandler,
		adminHandler:   config.AdminHandler,
		authMiddleware: config.AuthMiddleware,
		metrics:        config.Metrics,
		dbHealth:       config.DBHealth,
		logger:         config.Logger.With().Str("component", "router").Logger(),
	}
}

// Handler returns the main HTTP handler.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(rt.requestLogger)

	// Health check (no auth)
	r.Get("/health", rt.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMiddleware)
		if rt.metrics != nil {
			r.Use(rt.instrument)
		}

		rt.authHandler.RegisterRoutes(r)
		rt.catalogHandler.RegisterRoutes(r)
		rt.cartHandler.RegisterRoutes(r)
		rt.orderHandler.RegisterRoutes(r)
		rt.adminHandler.RegisterRoutes(r)
	})

	return r
}

// handleHealth reports process and store health.
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	if rt.dbHealth != nil {
		if err := rt.dbHealth.Ping(r.Context()); err != nil {
			rt.logger.Error().Err(err).Msg("health check failed")
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, "healthy", nil)
}

// requestLogger emits one structured log line per request.
func (rt *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		rt.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Msg("request handled")
	})
}

// instrument records request duration, labeled by the matched chi route
// pattern rather than the raw path so cardinality stays bounded.
func (rt *Router) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		rt.metrics.RequestDuration.
			WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}
