package render

import (
	"fmt"
	"math"

	"github.com/rickgao/vaxchart/internal/model"
)

// Margin is the space reserved around the plot area, in pixels.
type Margin struct {
	Top, Right, Bottom, Left float64
}

// Options controls chart geometry.
type Options struct {
	Width         int
	Height        int
	Margin        Margin
	BarPadding    float64 // Inner padding between month bars, as a fraction of the step
	LegendPadding float64 // Padding between legend entries, as a fraction of the step
	LegendHeight  float64
	YLabel        string
	YTickCount    int // 0 means one tick per 60px of height
}

// DefaultOptions returns the standard chart geometry for the given size.
func DefaultOptions(width, height int) Options {
	return Options{
		Width:         width,
		Height:        height,
		Margin:        Margin{Top: 60, Right: 30, Bottom: 60, Left: 100},
		BarPadding:    0.2,
		LegendPadding: 0.3,
		LegendHeight:  25,
		YLabel:        "↑ Vaccinations",
	}
}

// Rect is an axis-aligned rectangle in SVG coordinates (y grows downwards).
type Rect struct {
	X, Y, W, H float64
}

// Segment is one vaccine's share of one month's bar.
type Segment struct {
	Rect
	Key     string
	Month   string
	Color   string
	Value   float64
	Tooltip string
}

// Tick is an axis tick at pixel position Pos.
type Tick struct {
	Pos   float64
	Label string
}

// LegendItem is a colour swatch and its label.
type LegendItem struct {
	Key    string
	Color  string
	Swatch Rect
	LabelX float64
	LabelY float64
}

// Layout is the fully positioned chart.
type Layout struct {
	Width    int
	Height   int
	Location string

	PlotLeft   float64
	PlotRight  float64
	PlotTop    float64
	PlotBottom float64

	Segments []Segment
	XTicks   []Tick // Band centres labelled by month
	YTicks   []Tick
	Legend   []LegendItem

	YLabel  string
	YLabelX float64
	YLabelY float64
	Empty   bool
}

// Compute positions every segment, tick and legend entry of c.
// legend lists the keys shown in the legend; nil means c.Keys.
func Compute(c *model.Chart, legend []string, opts Options) *Layout {
	if legend == nil {
		legend = c.Keys
	}
	m := opts.Margin

	l := &Layout{
		Width:      opts.Width,
		Height:     opts.Height,
		Location:   c.Location,
		PlotLeft:   m.Left,
		PlotRight:  float64(opts.Width) - m.Right,
		PlotTop:    m.Top,
		PlotBottom: float64(opts.Height) - m.Bottom,
		YLabel:     opts.YLabel,
		YLabelX:    m.Left - 20,
		YLabelY:    m.Top,
		Empty:      len(c.Bins) == 0,
	}

	x := newBand(len(c.Bins), l.PlotLeft, l.PlotRight, opts.BarPadding, 0)
	lo, hi := c.Extent()
	y := linear{d0: lo, d1: hi, r0: l.PlotBottom, r1: l.PlotTop}

	for i, b := range c.Bins {
		l.XTicks = append(l.XTicks, Tick{
			Pos:   x.pos(i) + x.bandwidth/2,
			Label: b.Month,
		})
	}

	count := opts.YTickCount
	if count == 0 {
		count = opts.Height / 60
	}
	values, step := ticks(lo, hi, count)
	for _, v := range values {
		l.YTicks = append(l.YTicks, Tick{Pos: y.pos(v), Label: formatTick(v, step)})
	}

	for _, s := range c.Series {
		for i, p := range s.Points {
			if i >= len(c.Bins) {
				break
			}
			y0, y1 := y.pos(p.Low()), y.pos(p.High())
			h := math.Abs(y0 - y1)
			if h == 0 || math.IsNaN(h) {
				continue
			}
			b := c.Bins[i]
			v := b.Value(s.Key)
			l.Segments = append(l.Segments, Segment{
				Rect:    Rect{X: x.pos(i), Y: math.Min(y0, y1), W: x.bandwidth, H: h},
				Key:     s.Key,
				Month:   b.Month,
				Color:   c.Colors[s.Key],
				Value:   v,
				Tooltip: Tooltip(s.Key, b.Month, v),
			})
		}
	}

	lg := newBand(len(legend), l.PlotLeft, l.PlotRight, opts.LegendPadding, opts.LegendPadding)
	for i, k := range legend {
		sx := lg.pos(i)
		l.Legend = append(l.Legend, LegendItem{
			Key:    k,
			Color:  c.Colors[k],
			Swatch: Rect{X: sx, Y: 10, W: lg.bandwidth / 2, H: opts.LegendHeight},
			LabelX: sx + lg.bandwidth/2 + 5,
			LabelY: 10 + opts.LegendHeight/2,
		})
	}

	return l
}

// Tooltip is the hover text for one segment.
func Tooltip(vaccine, month string, total float64) string {
	return fmt.Sprintf("Vaccine: %s\nMonth: %s\nMonth Total: %s", vaccine, month, FormatCount(total))
}
