package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server exposes a Registry's collectors over /metrics for an external
// scraper to pull. It is not the dashboard itself, only the exposition
// surface a dashboard (or Prometheus) would read from.
type Server struct {
	httpServer *http.Server
	log        zerolog.Logger
}

// NewServer builds a metrics HTTP server bound to addr, serving reg's
// collectors at /metrics.
func NewServer(addr string, reg prometheus.Gatherer, log zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Serve blocks accepting scrape requests until Shutdown is called.
func (s *Server) Serve() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("metrics endpoint listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the metrics endpoint.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
