// Package model defines shared data types used across vaxchart.
//
// Conventions:
//   - Dates: time.Time at UTC midnight (the source is day-granular)
//   - Counts: float64, matching the source's numeric columns
//   - Keys: vaccine names exactly as they appear in the source
package model
