package render

import "math"

// band places n equally sized bands across [r0, r1] with the given inner and
// outer padding, centred in the range.
type band struct {
	start     float64
	step      float64
	bandwidth float64
}

func newBand(n int, r0, r1, paddingInner, paddingOuter float64) band {
	if n == 0 {
		return band{start: r0}
	}
	span := r1 - r0
	step := span / math.Max(1, float64(n)-paddingInner+paddingOuter*2)
	start := r0 + (span-step*(float64(n)-paddingInner))*0.5
	return band{
		start:     start,
		step:      step,
		bandwidth: step * (1 - paddingInner),
	}
}

func (b band) pos(i int) float64 {
	return b.start + b.step*float64(i)
}

// linear maps [d0, d1] onto [r0, r1]. A degenerate domain maps to the range midpoint.
type linear struct {
	d0, d1 float64
	r0, r1 float64
}

func (s linear) pos(v float64) float64 {
	if s.d1 == s.d0 {
		return (s.r0 + s.r1) / 2
	}
	return s.r0 + (v-s.d0)/(s.d1-s.d0)*(s.r1-s.r0)
}

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// tickStep returns a round step (1, 2 or 5 times a power of ten) that divides
// [lo, hi] into roughly count intervals.
func tickStep(lo, hi float64, count int) float64 {
	if count < 1 || hi <= lo {
		return 0
	}
	step := (hi - lo) / float64(count)
	power := math.Floor(math.Log10(step))
	e := step / math.Pow(10, power)
	factor := 1.0
	switch {
	case e >= e10:
		factor = 10
	case e >= e5:
		factor = 5
	case e >= e2:
		factor = 2
	}
	return factor * math.Pow(10, power)
}

// ticks returns the multiples of the tick step inside [lo, hi].
func ticks(lo, hi float64, count int) (values []float64, step float64) {
	if hi == lo {
		return []float64{lo}, 0
	}
	step = tickStep(lo, hi, count)
	if step == 0 {
		return nil, 0
	}
	i0 := math.Ceil(lo / step)
	i1 := math.Floor(hi / step)
	for i := i0; i <= i1; i++ {
		values = append(values, i*step)
	}
	return values, step
}
