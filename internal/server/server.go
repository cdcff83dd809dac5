package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/rickgao/vaxchart/internal/dataset"
	"github.com/rickgao/vaxchart/internal/metrics"
	"github.com/rickgao/vaxchart/internal/model"
	"github.com/rickgao/vaxchart/internal/render"
)

// ChartProvider computes charts for the current dataset.
type ChartProvider interface {
	Locations() ([]string, error)
	Vaccines() ([]string, error)
	ForLocation(ctx context.Context, location string) (*model.Chart, error)
}

// StatusSource reports dataset load health.
type StatusSource interface {
	Status() dataset.Status
}

// Pinger checks a backing service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds HTTP surface settings.
type Config struct {
	DefaultLocation string
	Width           int
	Height          int
	MetricsPath     string
}

// Server wires the HTTP routes.
type Server struct {
	cfg     Config
	charts  ChartProvider
	status  StatusSource
	hub     *Hub
	checks  map[string]Pinger
	logger  *slog.Logger
	handler http.Handler
}

// New creates a Server. hub may be nil to disable /ws. checks maps a
// component name to its health probe.
func New(cfg Config, charts ChartProvider, status StatusSource, hub *Hub, checks map[string]Pinger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	s := &Server{
		cfg:    cfg,
		charts: charts,
		status: status,
		hub:    hub,
		checks: checks,
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/locations", s.handleLocations)
	mux.HandleFunc("GET /api/chart", s.handleChart)
	mux.HandleFunc("GET /chart.svg", s.handleSVG)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /debug/dataset", s.handleDebugDataset)
	mux.Handle("GET "+cfg.MetricsPath, metrics.Handler())
	if hub != nil {
		mux.Handle("GET /ws", hub)
	}

	s.handler = AccessMiddleware(logger)(mux)
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) layout(c *model.Chart) *render.Layout {
	legend, err := s.charts.Vaccines()
	if err != nil {
		legend = nil
	}
	return render.Compute(c, legend, render.DefaultOptions(s.cfg.Width, s.cfg.Height))
}
