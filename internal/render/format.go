package render

import (
	"fmt"
	"math"
)

// FormatLabel truncates name to maxChars runes, marking the cut with "...".
func FormatLabel(name string, maxChars int) string {
	r := []rune(name)
	if maxChars <= 0 || len(r) <= maxChars {
		return name
	}
	return string(r[:maxChars]) + "..."
}

// FormatWeight renders an edge weight for its label.
func FormatWeight(w float64) string {
	return fmt.Sprintf("%.2f", w)
}

// minZoom is the zoom level at which labels vanish completely.
const minZoom = 0.1

// LabelOpacity fades labels out as the view zooms out: fully transparent at
// minZoom, fully opaque at fadeThreshold and beyond.
func LabelOpacity(k, fadeThreshold float64) float64 {
	if fadeThreshold <= minZoom {
		return 1
	}
	return math.Max(0, math.Min(1, (k-minZoom)/(fadeThreshold-minZoom)))
}
