// Package writer persists monthly dose totals to TimescaleDB.
//
// MonthlyWriter batches rows from computed charts and upserts them into
// vaccination_monthly keyed by (location, vaccine, month), so a dataset
// reload overwrites the previous totals and stamps the new load_id.
package writer
