package transform

import (
	"sort"

	"github.com/rickgao/vaxchart/internal/model"
)

// Keys returns the distinct vaccine names in order of first appearance.
func Keys(records []model.Record) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, r := range records {
		if _, ok := seen[r.Vaccine]; ok {
			continue
		}
		seen[r.Vaccine] = struct{}{}
		keys = append(keys, r.Vaccine)
	}
	return keys
}

// Derive computes the incremental dose count of every record.
//
// Records are grouped by vaccine and ordered by date within each group. The
// first record of a group keeps its raw total; every later one gets the
// difference to its predecessor, or 0 when the cumulative total went down.
// The result is aligned with the input: out[i] derives from records[i].
func Derive(records []model.Record) []model.DerivedRecord {
	out := make([]model.DerivedRecord, len(records))
	groups := make(map[string][]int)
	for i, r := range records {
		out[i] = model.DerivedRecord{Record: r}
		groups[r.Vaccine] = append(groups[r.Vaccine], i)
	}

	for _, idx := range groups {
		sort.SliceStable(idx, func(a, b int) bool {
			return records[idx[a]].Date.Before(records[idx[b]].Date)
		})
		for n, i := range idx {
			if n == 0 {
				out[i].CurrentValue = records[i].TotalVaccinations
				continue
			}
			out[i].CurrentValue = increment(records[idx[n-1]].TotalVaccinations, records[i].TotalVaccinations)
		}
	}

	return out
}

// increment returns cur - prev, clamped at 0. A NaN difference passes through.
func increment(prev, cur float64) float64 {
	diff := cur - prev
	if diff < 0 {
		return 0
	}
	return diff
}
