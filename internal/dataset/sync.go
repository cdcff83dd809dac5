package dataset

import (
	"context"
	"time"

	"github.com/rickgao/vaxchart/internal/metrics"
)

// Refresh fetches the dataset and swaps in a new snapshot on success.
// On failure the previous snapshot stays in place.
func (r *registryImpl) Refresh(ctx context.Context) error {
	r.loadMu.Lock()
	defer r.loadMu.Unlock()

	start := time.Now()
	r.logger.Info("loading dataset")

	res, err := r.fetcher.Fetch(ctx)
	if err != nil {
		r.state.fail(err)
		metrics.DatasetRefreshesTotal.WithLabelValues("error").Inc()
		return err
	}

	snap := NewSnapshot(res.Records, r.now())
	snap.Skipped = res.Skipped
	r.state.swap(snap)

	metrics.DatasetRefreshesTotal.WithLabelValues("ok").Inc()
	metrics.RowsLoaded.Set(float64(snap.Len()))

	r.logger.Info("dataset loaded",
		"load_id", snap.LoadID,
		"rows", snap.Len(),
		"skipped", res.Skipped,
		"locations", len(snap.locations),
		"from", snap.domain.Min.Format("2006-01-02"),
		"to", snap.domain.Max.Format("2006-01-02"),
		"duration", time.Since(start),
	)

	return nil
}

// refreshLoop periodically reloads the dataset.
func (r *registryImpl) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refreshOnce(ctx)
		}
	}
}

func (r *registryImpl) refreshOnce(ctx context.Context) {
	if r.cfg.RefreshTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.RefreshTimeout)
		defer cancel()
	}

	if err := r.Refresh(ctx); err != nil {
		r.logger.Warn("dataset refresh failed, keeping previous snapshot", "error", err)
	}
}
