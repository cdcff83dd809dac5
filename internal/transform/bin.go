package transform

import (
	"sort"
	"time"

	"github.com/rickgao/vaxchart/internal/model"
)

// MonthLayout formats bin labels ("Mar-2021").
const MonthLayout = "Jan-2006"

// Domain is the closed date range covered by a dataset.
type Domain struct {
	Min time.Time
	Max time.Time
}

// IsZero reports whether the domain was never set.
func (d Domain) IsZero() bool {
	return d.Min.IsZero() && d.Max.IsZero()
}

// Extent returns the earliest and latest record dates.
// ok is false when records is empty.
func Extent(records []model.Record) (d Domain, ok bool) {
	for i, r := range records {
		if i == 0 {
			d.Min, d.Max = r.Date, r.Date
			continue
		}
		if r.Date.Before(d.Min) {
			d.Min = r.Date
		}
		if r.Date.After(d.Max) {
			d.Max = r.Date
		}
	}
	return d, len(records) > 0
}

// MonthThresholds returns the first instant of every calendar month that
// falls inside [d.Min, d.Max], in UTC.
func MonthThresholds(d Domain) []time.Time {
	if d.IsZero() || d.Max.Before(d.Min) {
		return nil
	}
	start := d.Min.UTC()
	t := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	if t.Before(start) {
		t = t.AddDate(0, 1, 0)
	}

	var out []time.Time
	for !t.After(d.Max) {
		out = append(out, t)
		t = t.AddDate(0, 1, 0)
	}
	return out
}

// BinRecords partitions records into bins bounded by the domain and the
// thresholds.
//
// Thresholds at or before d.Min and after d.Max are ignored; a threshold equal
// to d.Max is kept. With n remaining thresholds there are n+1 bins: [Min, t0),
// [t0, t1), ..., [t(n-1), Max], the last one closed, so a dataset ending on
// the first of a month still gets a bin for that month. Records dated outside the domain are dropped. Every bin
// exists even when no record falls into it, so callers sharing a domain get
// identical bins.
func BinRecords(records []model.DerivedRecord, d Domain, thresholds []time.Time) []model.Bin {
	if d.IsZero() || d.Max.Before(d.Min) {
		return nil
	}

	inner := make([]time.Time, 0, len(thresholds))
	for _, t := range thresholds {
		if t.After(d.Min) && !t.After(d.Max) {
			inner = append(inner, t)
		}
	}
	sort.Slice(inner, func(i, j int) bool { return inner[i].Before(inner[j]) })

	edges := make([]time.Time, 0, len(inner)+2)
	edges = append(edges, d.Min)
	edges = append(edges, inner...)
	edges = append(edges, d.Max)

	bins := make([]model.Bin, len(edges)-1)
	for i := range bins {
		bins[i] = model.Bin{
			Month: edges[i].Format(MonthLayout),
			Start: edges[i],
			End:   edges[i+1],
		}
	}

	for _, r := range records {
		if r.Date.Before(d.Min) || r.Date.After(d.Max) {
			continue
		}
		// Number of thresholds <= date is the bin index.
		k := sort.Search(len(inner), func(i int) bool { return inner[i].After(r.Date) })
		bins[k].Records = append(bins[k].Records, r)
	}

	return bins
}

// Aggregate fills each bin's Totals with the per-key sum of CurrentValue.
// Keys without records in a bin get 0. The input bins are not modified.
func Aggregate(bins []model.Bin, keys []string) []model.Bin {
	out := make([]model.Bin, len(bins))
	for i, b := range bins {
		totals := make(map[string]float64, len(keys))
		for _, k := range keys {
			totals[k] = 0
		}
		for _, r := range b.Records {
			if _, ok := totals[r.Vaccine]; ok {
				totals[r.Vaccine] += r.CurrentValue
			}
		}
		b.Records = append([]model.DerivedRecord(nil), b.Records...)
		b.Totals = totals
		out[i] = b
	}
	return out
}
