package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Config holds Dataset Registry configuration.
type Config struct {
	RefreshInterval    time.Duration // 0 disables periodic refresh
	RefreshTimeout     time.Duration
	InitialLoadTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		RefreshInterval:    6 * time.Hour,
		RefreshTimeout:     5 * time.Minute,
		InitialLoadTimeout: 5 * time.Minute,
	}
}

// registryImpl implements the Registry interface.
type registryImpl struct {
	cfg     Config
	fetcher Fetcher
	logger  *slog.Logger
	now     func() time.Time

	state *registryState

	// Serializes loads so overlapping refreshes cannot swap out of order.
	loadMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRegistry creates a new Dataset Registry.
func NewRegistry(cfg Config, fetcher Fetcher, logger *slog.Logger) Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &registryImpl{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
		state:   newState(),
	}
}

// Start loads the dataset and begins background refresh.
func (r *registryImpl) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	// Initial load (blocking).
	loadCtx := r.ctx
	if r.cfg.InitialLoadTimeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(r.ctx, r.cfg.InitialLoadTimeout)
		defer cancel()
	}
	if err := r.Refresh(loadCtx); err != nil {
		r.cancel()
		return fmt.Errorf("initial load: %w", err)
	}

	if r.cfg.RefreshInterval > 0 {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.refreshLoop(r.ctx)
		}()
	}

	st := r.state.status()
	r.logger.Info("dataset registry started",
		"rows", st.Rows,
		"locations", st.Locations,
		"vaccines", st.Vaccines,
		"refresh_interval", r.cfg.RefreshInterval,
	)

	return nil
}

// Stop gracefully shuts down.
func (r *registryImpl) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.state.closeSubscribers()
		r.logger.Info("dataset registry stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the current snapshot.
func (r *registryImpl) Snapshot() *Snapshot {
	return r.state.snapshot()
}

// Subscribe returns a channel of snapshot changes.
func (r *registryImpl) Subscribe() <-chan Change {
	return r.state.subscribe()
}

// Status reports load health.
func (r *registryImpl) Status() Status {
	return r.state.status()
}
