package transform

import "github.com/rickgao/vaxchart/internal/model"

// StackDiverging places every key of every bin on a shared baseline.
//
// Within a bin keys are visited in order: positive values stack upward from
// 0, negative values stack downward from 0, anything else (0 or NaN) is
// placed at [0, value].
func StackDiverging(bins []model.Bin, keys []string) []model.Series {
	series := make([]model.Series, len(keys))
	for i, k := range keys {
		series[i] = model.Series{
			Key:    k,
			Index:  i,
			Points: make([]model.Interval, len(bins)),
		}
	}

	for j, b := range bins {
		var pos, neg float64
		for i, k := range keys {
			v := b.Value(k)
			switch {
			case v > 0:
				series[i].Points[j] = model.Interval{pos, pos + v}
				pos += v
			case v < 0:
				series[i].Points[j] = model.Interval{neg + v, neg}
				neg += v
			default:
				series[i].Points[j] = model.Interval{0, v}
			}
		}
	}

	return series
}
