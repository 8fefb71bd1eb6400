// Package metrics provides Prometheus instrumentation for the storefront.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Metrics holds all Prometheus collectors for the storefront.
type Metrics struct {
	registry *prometheus.Registry

	// RequestDuration observes HTTP request latency by route and status.
	RequestDuration *prometheus.HistogramVec

	// AuthAttempts counts login and signup attempts by operation and result.
	AuthAttempts *prometheus.CounterVec

	// OrdersPlaced counts successfully placed orders.
	OrdersPlaced prometheus.Counter

	// OrderStatusChanges counts status transitions by target status.
	OrderStatusChanges *prometheus.CounterVec

	// CartMutations counts cart operations by kind (add, update, remove, clear).
	CartMutations *prometheus.CounterVec
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		AuthAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Authentication attempts by operation and result.",
		}, []string{"operation", "result"}),
		OrdersPlaced: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Orders placed successfully.",
		}),
		OrderStatusChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "orders",
			Name:      "status_changes_total",
			Help:      "Order status changes by target status.",
		}, []string{"status"}),
		CartMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "cart",
			Name:      "mutations_total",
			Help:      "Cart mutations by kind.",
		}, []string{"kind"}),
	}
}

// Handler returns an HTTP handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Server is a standalone HTTP server for the metrics endpoint.
type Server struct {
	srv    *http.Server
	logger zerolog.Logger
}

// NewServer creates a metrics server on the given port and path.
func NewServer(m *Metrics, port int, path string, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())

	return &Server{
		srv: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

// Start runs the metrics server until it is shut down.
func (s *Server) Start() {
	s.logger.Info().Str("addr", s.srv.Addr).Msg("metrics server listening")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error().Err(err).Msg("metrics server failed")
	}
}

// Shutdown gracefully stops the metrics server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
