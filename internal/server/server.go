// Package server exposes the aggregation engine and the provider proxies
// over HTTP for the map front end.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/paymap-jp/paymap-cli/internal/aggregate"
	"github.com/paymap-jp/paymap-cli/internal/photocache"
	"github.com/paymap-jp/paymap-cli/pkg/overpass"
	"github.com/paymap-jp/paymap-cli/pkg/places"
)

// Options configures the HTTP server.
type Options struct {
	Port           int
	AllowedOrigins []string
}

// Server wires the aggregator, the raw provider clients, and the photo
// cache behind the UI's API contract.
type Server struct {
	aggregator *aggregate.Aggregator
	places     places.Client
	tags       overpass.Client
	photos     photocache.Cache
	opts       Options

	// generation is a monotonic counter echoed on /api/stores responses so
	// clients can discard results of superseded requests.
	generation atomic.Int64
}

// New creates a Server. The photo cache may be nil, in which case the photo
// endpoint proxies without caching.
func New(agg *aggregate.Aggregator, directory places.Client, tags overpass.Client, photos photocache.Cache, opts Options) *Server {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Server{
		aggregator: agg,
		places:     directory,
		tags:       tags,
		photos:     photos,
		opts:       opts,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/places", s.handleNearby)
		r.Get("/places/search", s.handleTextSearch)
		r.Get("/places/details", s.handleDetails)
		r.Get("/places/photo", s.handlePhoto)
		r.Get("/osm-payment-methods", s.handlePaymentMethods)
		r.Get("/stores", s.handleStores)
	})

	return r
}

// Run starts the server and blocks until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.opts.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	zap.L().Info("starting server", zap.Int("port", s.opts.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server: listen")
	}
	return nil
}
