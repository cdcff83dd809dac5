// Package dataset implements the Dataset Registry.
//
// The Dataset Registry:
//   - Loads the full vaccination CSV on startup (blocking)
//   - Re-fetches it on an interval and swaps in an immutable Snapshot
//   - Computes the global month thresholds once per load
//   - Notifies subscribers of every successful refresh
//
// Snapshots are never modified after construction and may be shared freely
// between goroutines.
package dataset
