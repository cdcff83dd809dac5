package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rickgao/vaxchart/internal/dataset"
	"github.com/rickgao/vaxchart/internal/model"
)

// ChartSource lists locations and computes their charts.
type ChartSource interface {
	Locations() ([]string, error)
	ForLocation(ctx context.Context, location string) (*model.Chart, error)
}

// ChartHandler receives computed charts.
type ChartHandler interface {
	HandleChart(ctx context.Context, chart *model.Chart) error
}

// ChartHandlerFunc is a function adapter for ChartHandler.
type ChartHandlerFunc func(context.Context, *model.Chart) error

func (f ChartHandlerFunc) HandleChart(ctx context.Context, c *model.Chart) error {
	return f(ctx, c)
}

// Config holds poller configuration.
type Config struct {
	Interval    time.Duration // Warm-up interval (default: 1h), 0 disables the ticker
	Concurrency int           // Max concurrent computations (default: 4)
	Timeout     time.Duration // Per-location timeout (default: 30s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:    time.Hour,
		Concurrency: 4,
		Timeout:     30 * time.Second,
	}
}

// CycleStats summarizes one warm-up cycle.
type CycleStats struct {
	Locations int
	Computed  int64
	Errors    int64
	Duration  time.Duration
}

// Poller computes every location's chart after each dataset change and on an interval.
type Poller struct {
	cfg     Config
	charts  ChartSource
	changes <-chan dataset.Change
	handler ChartHandler
	logger  *slog.Logger

	// LoadID of the last dataset a chart was warmed from.
	warmedMu sync.Mutex
	warmed   string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller. changes and handler may be nil.
func New(cfg Config, charts ChartSource, changes <-chan dataset.Change, handler ChartHandler, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Poller{
		cfg:     cfg,
		charts:  charts,
		changes: changes,
		handler: handler,
		logger:  logger,
	}
}

// Start begins the warm-up loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("chart poller started",
		"interval", p.cfg.Interval,
		"concurrency", p.cfg.Concurrency,
	)

	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("chart poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main warm-up loop.
func (p *Poller) run() {
	defer p.wg.Done()

	var tick <-chan time.Time
	if p.cfg.Interval > 0 {
		ticker := time.NewTicker(p.cfg.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	// Warm up immediately on start.
	p.pollAll()

	changes := p.changes
	for {
		select {
		case <-p.ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			if change.LoadID.String() == p.warmedLoadID() {
				p.logger.Debug("dataset already warmed, skipping", "load_id", change.LoadID)
				continue
			}
			p.logger.Debug("dataset changed, warming charts", "load_id", change.LoadID)
			p.pollAll()
		case <-tick:
			p.pollAll()
		}
	}
}

// pollAll computes charts for all locations concurrently.
func (p *Poller) pollAll() CycleStats {
	start := time.Now()

	locations, err := p.charts.Locations()
	if err != nil {
		p.logger.Debug("no locations to warm", "error", err)
		return CycleStats{}
	}
	if len(locations) == 0 {
		p.logger.Debug("no locations to warm")
		return CycleStats{}
	}

	// Semaphore for bounded concurrency.
	sem := make(chan struct{}, p.cfg.Concurrency)
	var wg sync.WaitGroup
	var computed, errors atomic.Int64

	for _, location := range locations {
		wg.Add(1)
		go func(location string) {
			defer wg.Done()

			// Acquire semaphore slot.
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-p.ctx.Done():
				return
			}

			if err := p.pollLocation(location); err != nil {
				p.logger.Warn("failed to warm chart",
					"location", location,
					"error", err,
				)
				errors.Add(1)
				return
			}

			computed.Add(1)
		}(location)
	}

	wg.Wait()

	stats := CycleStats{
		Locations: len(locations),
		Computed:  computed.Load(),
		Errors:    errors.Load(),
		Duration:  time.Since(start),
	}
	p.logger.Info("warm-up cycle complete",
		"locations", stats.Locations,
		"computed", stats.Computed,
		"errors", stats.Errors,
		"duration", stats.Duration,
	)
	return stats
}

// pollLocation computes and handles a single location's chart.
func (p *Poller) pollLocation(location string) error {
	ctx := p.ctx
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(p.ctx, p.cfg.Timeout)
		defer cancel()
	}

	c, err := p.charts.ForLocation(ctx, location)
	if err != nil {
		return err
	}

	if p.handler != nil {
		if err := p.handler.HandleChart(ctx, c); err != nil {
			return err
		}
	}

	if c.LoadID != "" {
		p.warmedMu.Lock()
		p.warmed = c.LoadID
		p.warmedMu.Unlock()
	}
	return nil
}

func (p *Poller) warmedLoadID() string {
	p.warmedMu.Lock()
	defer p.warmedMu.Unlock()
	return p.warmed
}
