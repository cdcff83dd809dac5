// Package chart serves per-location stacked charts.
//
// A chart is computed from the registry's current snapshot, deduplicated per
// (load, location) while in flight, and cached in Redis when configured.
package chart
