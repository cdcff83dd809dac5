package render

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// FormatCount formats n with thousands separators, e.g. 1234567 -> "1,234,567".
func FormatCount(n float64) string {
	p := message.NewPrinter(language.English)
	return p.Sprint(number.Decimal(n))
}

// formatTick formats an axis value with the number of decimals implied by step.
func formatTick(v, step float64) string {
	digits := 0
	if step > 0 && step < 1 {
		digits = int(math.Ceil(-math.Log10(step)))
	}
	p := message.NewPrinter(language.English)
	return p.Sprint(number.Decimal(v,
		number.MinFractionDigits(digits),
		number.MaxFractionDigits(digits),
	))
}
