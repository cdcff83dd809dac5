// Package server exposes charts over HTTP.
//
// Routes:
//   - GET /                page with location picker and inline chart
//   - GET /api/locations   location list and default
//   - GET /api/chart       chart JSON for ?location=
//   - GET /chart.svg       chart SVG for ?location=
//   - GET /health          component health
//   - GET /debug/dataset   current load summary
//   - GET /ws              dataset refresh notifications
//   - GET <metrics path>   Prometheus metrics
package server
