package domain

import (
	"math"
	"strconv"
)

// MarkerRadiusScale converts sqrt(|magnitude|) into a circle radius in metres.
const MarkerRadiusScale = 70000.0

// DepthThresholds are the ascending lower bounds of the six depth colour steps.
var DepthThresholds = []float64{-10.0, 10.0, 30.0, 50.0, 70.0, 90.0}

// depthColors pairs one-to-one with DepthThresholds.
var depthColors = []string{"lightgreen", "yellow", "gold", "orange", "orangered", "red"}

// MarkerRadius returns the circle radius in metres for a magnitude.
func MarkerRadius(magnitude float64) float64 {
	return math.Sqrt(math.Abs(magnitude)) * MarkerRadiusScale
}

// DepthColor returns the fill colour of the highest threshold not exceeding
// depth. Depths shallower than the first threshold take the first colour.
func DepthColor(depth float64) string {
	color := depthColors[0]
	for i, th := range DepthThresholds {
		if depth >= th {
			color = depthColors[i]
		}
	}
	return color
}

// HeatWeight is the heat-point intensity contributed by one event.
func HeatWeight(magnitude float64) float64 {
	return (1 + magnitude) * 4.0
}

// LegendEntry is one row of the depth colour legend.
type LegendEntry struct {
	Color string `json:"color"`
	Label string `json:"label"`
}

// DepthLegend lists every depth colour step with its range label, e.g.
// "10 – 30", and "90+" for the open-ended last step.
func DepthLegend() []LegendEntry {
	entries := make([]LegendEntry, 0, len(DepthThresholds))
	for i, th := range DepthThresholds {
		label := formatThreshold(th) + "+"
		if i+1 < len(DepthThresholds) {
			label = formatThreshold(th) + " – " + formatThreshold(DepthThresholds[i+1])
		}
		entries = append(entries, LegendEntry{
			Color: DepthColor(th + 1.0),
			Label: label,
		})
	}
	return entries
}

func formatThreshold(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
