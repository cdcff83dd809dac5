package render

import (
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// namedColors maps the CSS colour names used by the chart palette to hex.
var namedColors = map[string]string{
	"black":     "000000",
	"white":     "ffffff",
	"gray":      "808080",
	"red":       "ff0000",
	"gold":      "ffd700",
	"blue":      "0000ff",
	"yellow":    "ffff00",
	"green":     "008000",
	"maroon":    "800000",
	"silver":    "c0c0c0",
	"lime":      "00ff00",
	"olive":     "808000",
	"darkgreen": "006400",
	"pink":      "ffc0cb",
	"brown":     "a52a2a",
	"slateblue": "6a5acd",
	"orange":    "ffa500",
	"teal":      "008080",
	"cyan":      "00ffff",
}

// ParseColor resolves a CSS colour name or #hex string. Unknown values are gray.
func ParseColor(s string) drawing.Color {
	s = strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[s]; ok {
		return drawing.ColorFromHex(hex)
	}
	if strings.HasPrefix(s, "#") && (len(s) == 4 || len(s) == 7) {
		return drawing.ColorFromHex(s[1:])
	}
	return drawing.ColorFromHex(namedColors["gray"])
}
