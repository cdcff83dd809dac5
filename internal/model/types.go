package model

import (
	"encoding/json"
	"time"
)

// -----------------------------------------------------------------------------
// Source Types
// -----------------------------------------------------------------------------

// Record is one row of the vaccinations-by-manufacturer dataset.
type Record struct {
	Location          string    // Country or region name (e.g., "Japan")
	Date              time.Time // Reporting day (UTC midnight)
	Vaccine           string    // Manufacturer (e.g., "Pfizer/BioNTech")
	TotalVaccinations float64   // Cumulative doses administered up to Date
}

// DerivedRecord is a Record with the day's incremental dose count attached.
type DerivedRecord struct {
	Record
	CurrentValue float64 // Doses since the previous report for the same vaccine, never negative
}

// -----------------------------------------------------------------------------
// Chart Types
// -----------------------------------------------------------------------------

// Bin is a calendar-month bucket of derived records.
type Bin struct {
	Month   string             // Label formatted from Start ("Jan-2006")
	Start   time.Time          // Inclusive lower edge
	End     time.Time          // Exclusive upper edge (inclusive for the last bin)
	Records []DerivedRecord    // Records whose Date falls inside the bin
	Totals  map[string]float64 // Sum of CurrentValue per vaccine
}

// Value returns the aggregated total for key, 0 when the key has no records.
func (b Bin) Value(key string) float64 {
	return b.Totals[key]
}

// MarshalJSON flattens a bin into {"month": ..., "<vaccine>": total, ...}.
func (b Bin) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(b.Totals)+1)
	for k, v := range b.Totals {
		out[k] = v
	}
	out["month"] = b.Month
	return json.Marshal(out)
}

// Interval is the [low, high] extent of one stacked segment.
type Interval [2]float64

// Low returns the lower offset.
func (i Interval) Low() float64 { return i[0] }

// High returns the upper offset.
func (i Interval) High() float64 { return i[1] }

// Series is the stacked placement of one vaccine across all bins.
type Series struct {
	Key    string     `json:"key"`
	Index  int        `json:"index"`
	Points []Interval `json:"points"` // One interval per bin, aligned with Chart.Bins
}

// Chart is the complete output of the transform pipeline for one location.
type Chart struct {
	Location string            `json:"location"`
	LoadID   string            `json:"load_id,omitempty"`
	Keys     []string          `json:"keys"`
	Bins     []Bin             `json:"bins"`
	Series   []Series          `json:"series"`
	Colors   map[string]string `json:"colors,omitempty"`
}

// Months returns the bin labels in order.
func (c *Chart) Months() []string {
	months := make([]string, len(c.Bins))
	for i, b := range c.Bins {
		months[i] = b.Month
	}
	return months
}

// Extent returns the minimum and maximum stacked offsets across all series.
// An empty chart yields (0, 0).
func (c *Chart) Extent() (lo, hi float64) {
	first := true
	for _, s := range c.Series {
		for _, p := range s.Points {
			for _, v := range p {
				if v != v { // NaN
					continue
				}
				if first {
					lo, hi = v, v
					first = false
					continue
				}
				if v < lo {
					lo = v
				}
				if v > hi {
					hi = v
				}
			}
		}
	}
	return lo, hi
}
