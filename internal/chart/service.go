package chart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rickgao/vaxchart/internal/dataset"
	"github.com/rickgao/vaxchart/internal/metrics"
	"github.com/rickgao/vaxchart/internal/model"
)

var (
	// ErrNotReady is returned before the first dataset load completes.
	ErrNotReady = errors.New("dataset not loaded")

	// ErrUnknownLocation is returned for a location absent from the dataset.
	ErrUnknownLocation = errors.New("unknown location")
)

// SnapshotSource provides the current dataset snapshot.
type SnapshotSource interface {
	Snapshot() *dataset.Snapshot
}

// Cache stores computed charts.
type Cache interface {
	Get(ctx context.Context, loadID, location string) (*model.Chart, bool)
	Set(ctx context.Context, chart *model.Chart)
}

// Service computes charts on demand.
type Service struct {
	source  SnapshotSource
	cache   Cache
	palette []string
	logger  *slog.Logger

	group singleflight.Group
}

// NewService creates a chart Service. cache may be nil.
func NewService(source SnapshotSource, cache Cache, palette []string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if len(palette) == 0 {
		palette = Palette
	}
	return &Service{
		source:  source,
		cache:   cache,
		palette: palette,
		logger:  logger,
	}
}

// Locations returns every location in the current snapshot.
func (s *Service) Locations() ([]string, error) {
	snap := s.source.Snapshot()
	if snap == nil {
		return nil, ErrNotReady
	}
	return snap.Locations(), nil
}

// Vaccines returns every vaccine in the current snapshot in legend order.
func (s *Service) Vaccines() ([]string, error) {
	snap := s.source.Snapshot()
	if snap == nil {
		return nil, ErrNotReady
	}
	return snap.Vaccines(), nil
}

// Colors returns the colour of every vaccine in the current snapshot.
// Colours are assigned over the whole dataset so a vaccine keeps its colour
// when the selected location changes.
func (s *Service) Colors() (map[string]string, error) {
	snap := s.source.Snapshot()
	if snap == nil {
		return nil, ErrNotReady
	}
	return Colors(snap.Vaccines(), s.palette), nil
}

// ForLocation returns the stacked chart for location.
func (s *Service) ForLocation(ctx context.Context, location string) (*model.Chart, error) {
	snap := s.source.Snapshot()
	if snap == nil {
		return nil, ErrNotReady
	}
	if !snap.HasLocation(location) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLocation, location)
	}

	loadID := snap.LoadID.String()
	if s.cache != nil {
		if c, ok := s.cache.Get(ctx, loadID, location); ok {
			return c, nil
		}
	}

	v, err, _ := s.group.Do(loadID+"\x00"+location, func() (any, error) {
		return s.compute(ctx, snap, location), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Chart), nil
}

func (s *Service) compute(ctx context.Context, snap *dataset.Snapshot, location string) *model.Chart {
	start := time.Now()

	c := snap.Chart(location)
	c.Colors = Colors(snap.Vaccines(), s.palette)

	metrics.ChartComputationsTotal.Inc()
	metrics.ChartDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000)

	s.logger.Debug("chart computed",
		"location", location,
		"bins", len(c.Bins),
		"keys", len(c.Keys),
		"duration", time.Since(start),
	)

	if s.cache != nil {
		s.cache.Set(ctx, c)
	}
	return c
}
