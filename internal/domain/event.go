package domain

import "time"

// Event is one seismic observation parsed from a feed feature.
// Events are immutable once fetched and are replaced wholesale on every fetch.
type Event struct {
	ID        int       `json:"id"` // position in source order
	Magnitude float64   `json:"magnitude"`
	Depth     float64   `json:"depth"` // km, positive below the surface
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Time      time.Time `json:"time"`
	Place     string    `json:"place,omitempty"`
	URL       string    `json:"url,omitempty"`
	Title     string    `json:"title,omitempty"`
}

// Feed is the result of one successful fetch of a period's event feed.
type Feed struct {
	Period    Period
	Events    []Event
	Rejected  int // features dropped at the fetch boundary
	FetchedAt time.Time
}

// LatLon is a WGS-84 coordinate pair in degrees.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Boundary is one polyline of a tectonic plate boundary or orogen outline.
type Boundary struct {
	Name   string   `json:"name,omitempty"`
	Points []LatLon `json:"points"`
}
