package render

import (
	"fmt"
	"html"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	axisFontSize   = 10.0
	legendFontSize = 11.0
	labelGap       = 6
)

// SVG draws l with the go-chart vector renderer and writes it to w.
func SVG(w io.Writer, l *Layout) error {
	r, err := chart.SVG(l.Width, l.Height)
	if err != nil {
		return fmt.Errorf("create svg renderer: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}
	r.SetFont(font)

	fillRect(r, Rect{W: float64(l.Width), H: float64(l.Height)}, drawing.ColorWhite)

	drawGrid(r, l)
	for _, s := range l.Segments {
		fillRect(r, s.Rect, ParseColor(s.Color))
	}
	drawXAxis(r, l)
	drawLegend(r, l)

	if l.YLabel != "" {
		r.SetFontSize(axisFontSize)
		r.SetFontColor(drawing.ColorBlack)
		text(r, l.YLabel, px(l.YLabelX), px(l.YLabelY)-labelGap)
	}

	if err := r.Save(w); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func px(v float64) int {
	return int(math.Round(v))
}

// text writes body escaped for XML; the vector renderer emits it verbatim.
func text(r chart.Renderer, body string, x, y int) {
	r.Text(html.EscapeString(body), x, y)
}

func fillRect(r chart.Renderer, rect Rect, c drawing.Color) {
	r.SetFillColor(c)
	r.SetStrokeWidth(0)
	r.MoveTo(px(rect.X), px(rect.Y))
	r.LineTo(px(rect.X+rect.W), px(rect.Y))
	r.LineTo(px(rect.X+rect.W), px(rect.Y+rect.H))
	r.LineTo(px(rect.X), px(rect.Y+rect.H))
	r.Close()
	r.Fill()
}

func line(r chart.Renderer, x0, y0, x1, y1 float64, c drawing.Color) {
	r.SetStrokeColor(c)
	r.SetStrokeWidth(1)
	r.MoveTo(px(x0), px(y0))
	r.LineTo(px(x1), px(y1))
	r.Stroke()
}

// drawGrid draws horizontal gridlines with their labels left of the plot.
func drawGrid(r chart.Renderer, l *Layout) {
	grid := drawing.ColorBlack.WithAlpha(77)
	r.SetFontSize(axisFontSize)
	r.SetFontColor(drawing.ColorBlack)

	for _, t := range l.YTicks {
		line(r, l.PlotLeft, t.Pos, l.PlotRight, t.Pos, grid)
		box := r.MeasureText(t.Label)
		text(r, t.Label, px(l.PlotLeft)-labelGap-box.Width(), px(t.Pos)+box.Height()/2)
	}
}

// drawXAxis draws the baseline and month labels, thinning labels that would overlap.
func drawXAxis(r chart.Renderer, l *Layout) {
	line(r, l.PlotLeft, l.PlotBottom, l.PlotRight, l.PlotBottom, drawing.ColorBlack)
	if len(l.XTicks) == 0 {
		return
	}

	r.SetFontSize(axisFontSize)
	r.SetFontColor(drawing.ColorBlack)

	widest := 0
	for _, t := range l.XTicks {
		if w := r.MeasureText(t.Label).Width(); w > widest {
			widest = w
		}
	}
	every := 1
	if len(l.XTicks) > 1 {
		spacing := l.XTicks[1].Pos - l.XTicks[0].Pos
		if spacing > 0 {
			every = int(math.Ceil(float64(widest+labelGap) / spacing))
		}
	}
	if every < 1 {
		every = 1
	}

	for i, t := range l.XTicks {
		line(r, t.Pos, l.PlotBottom, t.Pos, l.PlotBottom+labelGap, drawing.ColorBlack)
		if i%every != 0 {
			continue
		}
		box := r.MeasureText(t.Label)
		text(r, t.Label, px(t.Pos)-box.Width()/2, px(l.PlotBottom)+labelGap+box.Height()+2)
	}
}

func drawLegend(r chart.Renderer, l *Layout) {
	r.SetFontSize(legendFontSize)
	r.SetFontColor(drawing.ColorBlack)

	for _, item := range l.Legend {
		fillRect(r, item.Swatch, ParseColor(item.Color))
		box := r.MeasureText(item.Key)
		text(r, item.Key, px(item.LabelX), px(item.LabelY)+box.Height()/2)
	}
}
