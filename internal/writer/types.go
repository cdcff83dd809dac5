package writer

import (
	"time"

	"github.com/google/uuid"
)

// WriterConfig contains configuration for batch writers.
type WriterConfig struct {
	// BatchSize is the number of rows to accumulate before flushing.
	BatchSize int

	// FlushInterval is the maximum time between flushes.
	FlushInterval time.Duration

	// BufferSize is the capacity of the input queue.
	BufferSize int
}

// DefaultWriterConfig returns sensible defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BatchSize:     1000,
		FlushInterval: 1 * time.Second,
		BufferSize:    10000,
	}
}

// WriterMetrics tracks writer activity.
type WriterMetrics struct {
	Inserts int64 // Rows upserted
	Flushes int64 // Successful batch flushes
	Errors  int64 // Failed batch flushes
	Dropped int64 // Rows rejected because the input queue was full
}

// MonthlyRow is one row of the vaccination_monthly table.
type MonthlyRow struct {
	LoadID   uuid.UUID
	Location string
	Vaccine  string
	Month    time.Time // First day of the month, UTC
	Doses    float64
}
