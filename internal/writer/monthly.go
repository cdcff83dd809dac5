package writer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/vaxchart/internal/metrics"
	"github.com/rickgao/vaxchart/internal/model"
)

// ErrQueueFull is returned by Submit when the input queue has no room.
var ErrQueueFull = errors.New("writer queue full")

// finalFlushTimeout bounds the flush performed during Stop.
const finalFlushTimeout = 10 * time.Second

// BatchSender sends a pgx batch. Satisfied by *pgxpool.Pool and *pgx.Conn.
type BatchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

const upsertMonthly = `
	INSERT INTO vaccination_monthly (load_id, location, vaccine, month, doses)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (location, vaccine, month)
	DO UPDATE SET doses = EXCLUDED.doses, load_id = EXCLUDED.load_id
`

// MonthlyWriter consumes MonthlyRows and upserts them into vaccination_monthly.
type MonthlyWriter struct {
	cfg    WriterConfig
	logger *slog.Logger

	// Input queue
	input chan MonthlyRow

	// Database
	db BatchSender

	// Batching
	batch       []MonthlyRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Metrics
	metrics WriterMetrics
}

// NewMonthlyWriter creates a new MonthlyWriter.
func NewMonthlyWriter(cfg WriterConfig, db BatchSender, logger *slog.Logger) *MonthlyWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	if cfg.BufferSize < 1 {
		cfg.BufferSize = cfg.BatchSize
	}
	return &MonthlyWriter{
		cfg:    cfg,
		input:  make(chan MonthlyRow, cfg.BufferSize),
		db:     db,
		logger: logger,
		batch:  make([]MonthlyRow, 0, cfg.BatchSize),
	}
}

// Start begins consuming rows and writing to the database.
func (w *MonthlyWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	// Consumer goroutine
	w.wg.Add(1)
	go w.consumeLoop()

	// Flush ticker goroutine
	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("monthly writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop gracefully shuts down the writer, flushing queued rows.
func (w *MonthlyWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping monthly writer")

	if w.cancel != nil {
		w.cancel()
	}

	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}

	// Wait for goroutines
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("monthly writer stopped")
	case <-ctx.Done():
		w.logger.Warn("monthly writer stop timed out")
	}

	// Drain whatever the consumer did not pick up
	w.drain()

	flushCtx, cancel := context.WithTimeout(context.Background(), finalFlushTimeout)
	defer cancel()
	w.flush(flushCtx)

	return nil
}

// Submit queues rows without blocking. Rows beyond the queue capacity are
// dropped and ErrQueueFull is returned.
func (w *MonthlyWriter) Submit(rows []MonthlyRow) error {
	for i, r := range rows {
		select {
		case w.input <- r:
		default:
			dropped := int64(len(rows) - i)
			w.batchMu.Lock()
			w.metrics.Dropped += dropped
			w.batchMu.Unlock()
			w.logger.Warn("writer queue full, dropping rows", "dropped", dropped)
			return ErrQueueFull
		}
	}
	return nil
}

// HandleChart queues every monthly total in c.
func (w *MonthlyWriter) HandleChart(_ context.Context, c *model.Chart) error {
	rows, err := RowsFromChart(c)
	if err != nil {
		return err
	}
	return w.Submit(rows)
}

// Stats returns current metrics.
func (w *MonthlyWriter) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

// consumeLoop reads from the input queue and accumulates batches.
func (w *MonthlyWriter) consumeLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case row := <-w.input:
			w.handleRow(row)
		}
	}
}

// flushLoop periodically flushes the batch.
func (w *MonthlyWriter) flushLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.flushTicker.C:
			w.flush(w.ctx)
		}
	}
}

// handleRow adds a row to the batch, flushing when it is full.
func (w *MonthlyWriter) handleRow(row MonthlyRow) {
	w.batchMu.Lock()
	w.batch = append(w.batch, row)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flush(w.ctx)
	}
}

// drain moves queued rows into the batch without flushing.
func (w *MonthlyWriter) drain() {
	for {
		select {
		case row := <-w.input:
			w.batchMu.Lock()
			w.batch = append(w.batch, row)
			w.batchMu.Unlock()
		default:
			return
		}
	}
}

// flush writes the current batch to the database.
func (w *MonthlyWriter) flush(ctx context.Context) {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := w.batch
	w.batch = make([]MonthlyRow, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	if err := w.batchUpsert(ctx, batch); err != nil {
		// A cancelled context means shutdown; keep the rows for the final flush.
		if ctx.Err() != nil {
			w.batchMu.Lock()
			w.batch = append(batch, w.batch...)
			w.batchMu.Unlock()
			w.logger.Debug("flush interrupted, rows kept for final flush", "count", len(batch))
			return
		}
		w.logger.Error("batch upsert failed", "error", err, "count", len(batch))
		metrics.WriterErrorsTotal.Inc()
		w.batchMu.Lock()
		w.metrics.Errors++
		w.batchMu.Unlock()
		return
	}

	metrics.WriterFlushesTotal.Inc()
	metrics.WriterRowsTotal.Add(float64(len(batch)))

	w.batchMu.Lock()
	w.metrics.Inserts += int64(len(batch))
	w.metrics.Flushes++
	w.batchMu.Unlock()

	w.logger.Debug("flushed monthly totals",
		"count", len(batch),
		"duration", time.Since(start),
	)
}

// batchUpsert writes rows using pgx.Batch with ON CONFLICT DO UPDATE.
func (w *MonthlyWriter) batchUpsert(ctx context.Context, rows []MonthlyRow) error {
	if w.db == nil {
		return errors.New("no database configured")
	}

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(upsertMonthly, r.LoadID, r.Location, r.Vaccine, r.Month, r.Doses)
	}

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}

	return nil
}
