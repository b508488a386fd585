package render

import (
	"errors"
	"fmt"
)

// Layer group names as shown in the page's layer control.
const (
	LayerEarthquakes    = "Earthquakes"
	LayerHeatmap        = "Heatmap"
	LayerTectonicPlates = "Tectonic Plates"
	LayerOrogens        = "Orogens"
)

// ErrUnknownVariant is returned by ParseVariant.
var ErrUnknownVariant = errors.New("unknown page variant")

// Variant selects which of the two page flavours is served.
type Variant string

const (
	// VariantVisualization draws depth-coloured markers over plate
	// boundaries and orogens.
	VariantVisualization Variant = "visualization"
	// VariantHeatmap draws a heat layer plus uniform markers.
	VariantHeatmap Variant = "heatmap"
)

// ParseVariant validates a variant name.
func ParseVariant(s string) (Variant, error) {
	switch v := Variant(s); v {
	case VariantVisualization, VariantHeatmap:
		return v, nil
	default:
		return "", fmt.Errorf("variant %q: %w", s, ErrUnknownVariant)
	}
}

// Layers lists the variant's overlay groups in layer-control order.
func (v Variant) Layers() []string {
	if v == VariantHeatmap {
		return []string{LayerHeatmap, LayerEarthquakes}
	}
	return []string{LayerEarthquakes, LayerTectonicPlates, LayerOrogens}
}

// Modes lists the render modes run after every filter pass.
func (v Variant) Modes() []Mode {
	if v == VariantHeatmap {
		return []Mode{ModeHeatmap, ModeMarkers}
	}
	return []Mode{ModeMarkers}
}

// HasBoundaries reports whether the variant draws plate and orogen overlays.
func (v Variant) HasBoundaries() bool {
	return v == VariantVisualization
}
