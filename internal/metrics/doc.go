// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Dataset fetch counts, failures, latency and skipped rows
//   - Chart computations and their latency
//   - Redis cache hits and misses
//   - Writer flushes, rows and errors
//   - Connected WebSocket clients
package metrics
