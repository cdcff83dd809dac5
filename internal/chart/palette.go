package chart

// Palette is the ordinal colour range assigned to vaccines in order of
// first appearance, wrapping around when there are more vaccines than colours.
var Palette = []string{
	"gold",
	"blue",
	"yellow",
	"green",
	"maroon",
	"silver",
	"lime",
	"olive",
	"darkgreen",
	"pink",
	"brown",
	"slateblue",
	"orange",
	"teal",
	"cyan",
}

// Colors maps each key to a palette entry by position.
func Colors(keys []string, palette []string) map[string]string {
	if len(palette) == 0 {
		palette = Palette
	}
	out := make(map[string]string, len(keys))
	for i, k := range keys {
		out[k] = palette[i%len(palette)]
	}
	return out
}
