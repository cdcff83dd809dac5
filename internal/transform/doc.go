// Package transform turns a location's cumulative vaccination series into
// month-binned, per-vaccine stacked chart data.
//
// Pipeline:
//   - Derive: per-vaccine daily increments from cumulative totals (clamped at 0)
//   - BinRecords: partition by date using month thresholds shared by all locations
//   - Aggregate: per-bin, per-vaccine sums of the increments
//   - StackDiverging: [low, high] placement per vaccine per bin
//
// Every step returns new values; inputs are never modified, so the same cached
// dataset can be transformed repeatedly for different locations.
package transform
