// Package metrics serves the Prometheus registry that the client, cache and
// table packages register into via promauto. Metrics live next to the code
// that updates them; this package only exposes them.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Registry is the registerer every package uses through promauto.
var Registry = prometheus.DefaultRegisterer

// Pinger reports whether a dependency is reachable. *redis.Client satisfies
// it through a small adapter in the caller.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// NewServeMux returns a mux with /metrics, /health and /ready. ready may be
// nil, in which case /ready behaves like /health.
func NewServeMux(ready Pinger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler(ready))
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func readyHandler(ready Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready == nil {
			healthHandler(w, r)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := ready.Ping(ctx); err != nil {
			http.Error(w, "cache unavailable: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "READY")
	}
}

// Server runs the metrics mux in the background.
type Server struct {
	srv    *http.Server
	ln     net.Listener
	logger zerolog.Logger
	done   chan error
}

// Start listens on addr and serves until Shutdown. Use ":0" for an
// ephemeral port; Addr reports the bound address.
func Start(addr string, ready Pinger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	s := &Server{
		srv: &http.Server{
			Handler:           NewServeMux(ready),
			ReadHeaderTimeout: 5 * time.Second,
		},
		ln:     ln,
		logger: log.With().Str("component", "metrics").Logger(),
		done:   make(chan error, 1),
	}

	go func() {
		err := s.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		if err != nil {
			s.logger.Error().Err(err).Msg("Metrics server failed")
		}
		s.done <- err
	}()

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("Metrics server listening")
	return s, nil
}

// Addr returns the listening address.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Shutdown stops the server and waits for the serve loop to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		return err
	}
	err := <-s.done
	s.logger.Info().Msg("Metrics server stopped")
	return err
}

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - artic_cache_hits_total (Counter): Fresh or stale entries read from Redis
//   - artic_cache_misses_total (Counter): Lookups that found nothing
//   - artic_cache_stored_bytes (Gauge): Size of the last stored body
//   - artic_cache_not_modified_total (Counter): 304 Not Modified revalidations
//   - artic_cache_errors_total{operation} (Counter): Cache operation errors
//
// Request Metrics (pkg/client):
//   - artic_requests_total{status} (Counter): Upstream requests by HTTP status
//   - artic_request_duration_seconds{source} (Histogram): Page fetch duration by source (network, cache, revalidated)
//   - artic_fetch_errors_total{class} (Counter): Failed page fetches by class (client, server, network, decode)
//
// Table Metrics (pkg/table):
//   - artic_page_loads_total{outcome} (Counter): Page loads by outcome (ok, failed, stale)
//   - artic_selection_runs_total{outcome} (Counter): Select-count runs by outcome (complete, short, noop)
//   - artic_selection_pages_fetched_total (Counter): Pages fetched by select-count runs
//   - artic_selected_rows (Gauge): Current selection size
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(artic_cache_hits_total[5m])) /
//   (sum(rate(artic_cache_hits_total[5m])) + sum(rate(artic_cache_misses_total[5m])))
//
//   # Short selections
//   rate(artic_selection_runs_total{outcome="short"}[15m])
//
//   # P95 Page Latency from the network
//   histogram_quantile(0.95, rate(artic_request_duration_seconds_bucket{source="network"}[5m]))
