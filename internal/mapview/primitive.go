package mapview

// Kind names the drawable primitive carried by a Primitive.
type Kind string

const (
	KindHeat     Kind = "heat"
	KindCircle   Kind = "circle"
	KindPolyline Kind = "polyline"
)

// Coord is a primitive position in degrees. X and Y are only set on
// snapshots projected to Web Mercator.
type Coord struct {
	Lat float64  `json:"lat"`
	Lon float64  `json:"lon"`
	X   *float64 `json:"x,omitempty"`
	Y   *float64 `json:"y,omitempty"`
}

// HeatPoint is a weighted point for heat rendering.
type HeatPoint struct {
	Coord
	Weight float64 `json:"weight"`
}

// CircleStyle mirrors the options of a map circle marker.
type CircleStyle struct {
	Radius      float64 `json:"radius"` // metres
	FillColor   string  `json:"fillColor"`
	FillOpacity float64 `json:"fillOpacity"`
	Color       string  `json:"color"`
	Stroke      bool    `json:"stroke"`
	Weight      float64 `json:"weight"`
}

// Popup is the text bound to a circle marker.
type Popup struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Location  string `json:"location"`
	Date      string `json:"date"`
	Magnitude string `json:"magnitude"`
	Depth     string `json:"depth"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// Circle is a styled circle marker with popup text.
type Circle struct {
	Coord
	Style CircleStyle `json:"style"`
	Popup Popup       `json:"popup"`
}

// LineStyle mirrors the options of a map polyline.
type LineStyle struct {
	Color  string  `json:"color"`
	Weight float64 `json:"weight"`
}

// Polyline is a styled line through a sequence of points.
type Polyline struct {
	Points []Coord   `json:"points"`
	Style  LineStyle `json:"style"`
}

// Primitive is one drawable item in a layer group. Exactly one of Heat,
// Circle or Polyline is set, matching Kind. Primitives are never mutated
// after creation.
type Primitive struct {
	Kind     Kind       `json:"kind"`
	Heat     *HeatPoint `json:"heat,omitempty"`
	Circle   *Circle    `json:"circle,omitempty"`
	Polyline *Polyline  `json:"polyline,omitempty"`
}

// NewHeatPoint builds a weighted heat point.
func NewHeatPoint(lat, lon, weight float64) Primitive {
	return Primitive{
		Kind: KindHeat,
		Heat: &HeatPoint{Coord: Coord{Lat: lat, Lon: lon}, Weight: weight},
	}
}

// NewCircle builds a styled circle marker with popup text.
func NewCircle(lat, lon float64, style CircleStyle, popup Popup) Primitive {
	return Primitive{
		Kind:   KindCircle,
		Circle: &Circle{Coord: Coord{Lat: lat, Lon: lon}, Style: style, Popup: popup},
	}
}

// NewPolyline builds a styled polyline from lat/lon pairs.
func NewPolyline(points []Coord, style LineStyle) Primitive {
	pts := make([]Coord, len(points))
	copy(pts, points)
	return Primitive{
		Kind:     KindPolyline,
		Polyline: &Polyline{Points: pts, Style: style},
	}
}

// HeatOptions configures how a heat layer blends its points.
type HeatOptions struct {
	MinOpacity float64           `json:"minOpacity"`
	Radius     float64           `json:"radius"`
	Blur       float64           `json:"blur"`
	Gradient   map[string]string `json:"gradient"`
}
