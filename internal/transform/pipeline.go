package transform

import (
	"time"

	"github.com/rickgao/vaxchart/internal/model"
)

// Run executes the full pipeline for one location's records.
//
// d and thresholds must come from the whole dataset, not from records, so
// that every location is binned into the same months.
func Run(location string, records []model.Record, d Domain, thresholds []time.Time) *model.Chart {
	keys := Keys(records)
	derived := Derive(records)
	bins := Aggregate(BinRecords(derived, d, thresholds), keys)

	return &model.Chart{
		Location: location,
		Keys:     keys,
		Bins:     bins,
		Series:   StackDiverging(bins, keys),
	}
}
