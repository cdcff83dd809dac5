// Package database manages the optional TimescaleDB connection used to keep
// monthly dose totals, and creates the vaccination_monthly table on startup.
package database
