// Package app contains the application setup for the product catalog service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/productcatalog/internal/config"
	"github.com/abgdnv/productcatalog/internal/platform/auth"
	"github.com/abgdnv/productcatalog/internal/platform/messaging"
	"github.com/abgdnv/productcatalog/internal/platform/web"
	"github.com/abgdnv/productcatalog/internal/product/handler"
	"github.com/abgdnv/productcatalog/internal/product/service"
	"github.com/abgdnv/productcatalog/internal/product/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/abgdnv/productcatalog"

type Dependencies struct {
	ProductService service.ProductService
	Authenticator  auth.Authenticator
	Responder      *web.ErrorResponder
	Registry       *prometheus.Registry
	Metrics        *web.Metrics
	Tracer         trace.Tracer
	Propagator     propagation.TextMapPropagator
	Logger         *slog.Logger
}

// SetupDependencies builds the store, service and HTTP collaborators.
// Tracing uses the global provider and propagator installed by telemetry.NewTracerProvider.
func SetupDependencies(cfg *config.Config, publisher messaging.Publisher, logger *slog.Logger) *Dependencies {
	var seed []store.Product
	if cfg.Seed.Enabled {
		seed = store.SeedProducts()
	}
	pService := service.NewService(store.NewInMemoryStore(seed...), publisher, cfg.NATS.SubjectPrefix, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Dependencies{
		ProductService: pService,
		Authenticator:  auth.NewAPIKeyAuthenticator(cfg.Auth.Header, cfg.Auth.APIKey),
		Responder:      web.NewErrorResponder(logger, cfg.App.IsProduction()),
		Registry:       registry,
		Metrics:        web.NewMetrics(registry),
		Tracer:         otel.Tracer(tracerName),
		Propagator:     otel.GetTextMapPropagator(),
		Logger:         logger,
	}
}

// SetupPublisher returns the event publisher and a function releasing its connection.
// With NATS disabled events are dropped.
func SetupPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (messaging.Publisher, func(), error) {
	if !cfg.NATS.Enabled {
		logger.Info("NATS is disabled, product events will not be published")
		return messaging.NoopPublisher{}, func() {}, nil
	}

	nc, err := messaging.NewClient(cfg.NATS.Url, cfg.NATS.Timeout)
	if err != nil {
		return nil, nil, err
	}
	js, err := messaging.NewJetStream(nc)
	if err != nil {
		return nil, nil, err
	}
	streamCtx, cancel := context.WithTimeout(ctx, cfg.NATS.Timeout)
	defer cancel()
	if err := messaging.EnsureStream(streamCtx, js, cfg.NATS.Stream, cfg.NATS.SubjectPrefix); err != nil {
		nc.Close()
		return nil, nil, err
	}
	logger.Info("Connected to NATS", "url", cfg.NATS.Url, "stream", cfg.NATS.Stream)

	publisher := messaging.NewBreakerPublisher(
		messaging.NewNatsPublisher(js, cfg.NATS.Timeout),
		messaging.BreakerSettings{
			Name:                "product-events",
			ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
			OpenTimeout:         cfg.Breaker.OpenTimeout,
		},
	)
	closeFn := func() {
		if err := nc.Drain(); err != nil {
			logger.Error("Failed to drain NATS connection", "error", err)
		}
	}
	return publisher, closeFn, nil
}

// SetupHttpHandler initializes the router with its middleware and routes.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies, cfg *config.Config) http.Handler {
	pApi := handler.NewAPI(deps.ProductService, deps.Authenticator, deps.Responder, deps.Logger, cfg.HTTPServer.MaxBodyBytes)

	mux := chi.NewRouter()
	mux.Use(web.RequestIDInjector)
	mux.Use(web.Trace(deps.Tracer, deps.Propagator, cfg.Metrics.Path, "/healthz"))
	if cfg.Metrics.Enabled {
		mux.Use(deps.Metrics.Middleware(cfg.Metrics.Path))
	}
	mux.Use(web.StructuredLogger(deps.Logger))
	mux.Use(web.Recoverer(deps.Responder))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", cfg.Auth.Header, web.RequestIDHeader},
		ExposedHeaders: []string{web.RequestIDHeader},
		MaxAge:         300,
	}))

	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{Registry: deps.Registry}))
	}
	pApi.RegisterRoutes(mux)

	return mux
}

// SetupHttpServer creates and configures an HTTP server for the product catalog.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps, cfg)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPServer.Port),
		Handler:           mux,
		ReadTimeout:       cfg.HTTPServer.Timeout.Read,
		WriteTimeout:      cfg.HTTPServer.Timeout.Write,
		IdleTimeout:       cfg.HTTPServer.Timeout.Idle,
		ReadHeaderTimeout: cfg.HTTPServer.Timeout.ReadHeader,
		MaxHeaderBytes:    cfg.HTTPServer.MaxHeaderBytes,
	}
	return server
}
