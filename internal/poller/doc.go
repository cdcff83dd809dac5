// Package poller implements the chart warm-up poller.
//
// The poller:
//   - Computes every location's chart after each dataset load and on an interval
//   - Bounds concurrent computations with a semaphore
//   - Hands each chart to a ChartHandler (the monthly writer)
package poller
