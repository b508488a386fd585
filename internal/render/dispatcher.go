// Package render turns filtered events and boundary lines into map
// primitives. Every draw preserves whether the user had the target layer
// shown or hidden.
package render

import (
	"fmt"
	"time"

	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/couchcryptid/quake-map/internal/mapview"
)

// Mode selects how events are drawn.
type Mode int

const (
	ModeHeatmap Mode = iota
	ModeMarkers
)

func (m Mode) String() string {
	switch m {
	case ModeHeatmap:
		return "heatmap"
	case ModeMarkers:
		return "markers"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Layer returns the group a mode draws into.
func (m Mode) Layer() string {
	if m == ModeHeatmap {
		return LayerHeatmap
	}
	return LayerEarthquakes
}

// LayerMap is the part of the map widget the dispatcher drives. Update must
// apply fn to the named group as one step for concurrent readers.
type LayerMap interface {
	Update(name string, fn func(g *mapview.Group))
}

// HeatLayerOptions are the blend settings of the heat layer.
var HeatLayerOptions = mapview.HeatOptions{
	MinOpacity: 0.2,
	Radius:     40,
	Blur:       40,
	Gradient: map[string]string{
		"0.15": "blue",
		"0.25": "green",
		"0.4":  "orange",
		"0.5":  "orangered",
		"0.65": "red",
		"1.0":  "darkred",
	},
}

// Boundary overlay styles.
var (
	PlateStyle  = mapview.LineStyle{Color: "firebrick", Weight: 4}
	OrogenStyle = mapview.LineStyle{Color: "steelblue", Weight: 2}
)

// Fixed marker look on the heatmap page.
const (
	heatmapMarkerRadius = 50000.0
	heatmapMarkerFill   = "maroon"
)

// PopupDateLayout formats event times in marker popups.
const PopupDateLayout = "2006-01-02"

// Result summarises one draw.
type Result struct {
	Layer      string
	Primitives int
	Visible    bool
}

// Dispatcher draws into a LayerMap for one page variant.
type Dispatcher struct {
	layers  LayerMap
	variant Variant
}

// NewDispatcher creates a dispatcher for the given map and variant.
func NewDispatcher(layers LayerMap, variant Variant) *Dispatcher {
	return &Dispatcher{layers: layers, variant: variant}
}

// Variant returns the page variant the dispatcher styles markers for.
func (d *Dispatcher) Variant() Variant { return d.variant }

// Render replaces the mode's layer contents with one primitive per event.
func (d *Dispatcher) Render(events []domain.Event, mode Mode) Result {
	layer := mode.Layer()
	visible := d.redraw(layer, func(g *mapview.Group) {
		if mode == ModeHeatmap {
			d.drawHeat(g, events)
			return
		}
		d.drawMarkers(g, events)
	})
	return Result{Layer: layer, Primitives: len(events), Visible: visible}
}

// RenderBoundaries replaces a group's contents with one polyline per boundary.
func (d *Dispatcher) RenderBoundaries(group string, lines []domain.Boundary, style mapview.LineStyle) Result {
	prims := make([]mapview.Primitive, 0, len(lines))
	for _, b := range lines {
		pts := make([]mapview.Coord, len(b.Points))
		for i, p := range b.Points {
			pts[i] = mapview.Coord{Lat: p.Lat, Lon: p.Lon}
		}
		prims = append(prims, mapview.NewPolyline(pts, style))
	}
	visible := d.redraw(group, func(g *mapview.Group) { g.Add(prims...) })
	return Result{Layer: group, Primitives: len(prims), Visible: visible}
}

// redraw clears group and runs draw with the group attached, then detaches
// it again if the user had it hidden. The whole sequence is one map update.
// It returns the final visibility.
func (d *Dispatcher) redraw(group string, draw func(g *mapview.Group)) bool {
	var visible bool
	d.layers.Update(group, func(g *mapview.Group) {
		visible = g.Attached()
		g.Clear()
		g.AddToMap()
		draw(g)
		if !visible {
			g.RemoveFromMap()
		}
	})
	return visible
}

func (d *Dispatcher) drawHeat(g *mapview.Group, events []domain.Event) {
	prims := make([]mapview.Primitive, 0, len(events))
	for _, e := range events {
		prims = append(prims, mapview.NewHeatPoint(e.Latitude, e.Longitude, domain.HeatWeight(e.Magnitude)))
	}
	g.SetHeatOptions(HeatLayerOptions)
	g.Add(prims...)
}

func (d *Dispatcher) drawMarkers(g *mapview.Group, events []domain.Event) {
	prims := make([]mapview.Primitive, 0, len(events))
	for _, e := range events {
		prims = append(prims, mapview.NewCircle(e.Latitude, e.Longitude, d.markerStyle(e), NewPopup(e)))
	}
	g.Add(prims...)
}

func (d *Dispatcher) markerStyle(e domain.Event) mapview.CircleStyle {
	style := mapview.CircleStyle{
		Color:  "black",
		Stroke: true,
		Weight: 0.5,
	}
	if d.variant == VariantHeatmap {
		style.Radius = heatmapMarkerRadius
		style.FillColor = heatmapMarkerFill
		style.FillOpacity = 1.0
		return style
	}
	style.Radius = domain.MarkerRadius(e.Magnitude)
	style.FillColor = domain.DepthColor(e.Depth)
	style.FillOpacity = 0.7
	return style
}

// NewPopup formats the marker popup text for an event.
func NewPopup(e domain.Event) mapview.Popup {
	var date string
	if !e.Time.IsZero() {
		date = e.Time.In(time.UTC).Format(PopupDateLayout)
	}
	return mapview.Popup{
		Title:     e.Title,
		URL:       e.URL,
		Location:  e.Place,
		Date:      date,
		Magnitude: domain.FormatFixed(e.Magnitude, 2),
		Depth:     domain.FormatFixed(e.Depth, 2) + " km",
		Latitude:  domain.FormatFixed(e.Latitude, 4),
		Longitude: domain.FormatFixed(e.Longitude, 4),
	}
}
