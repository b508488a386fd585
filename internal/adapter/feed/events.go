package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang/geo/s2"
	"github.com/peterstace/simplefeatures/geom"

	"github.com/couchcryptid/quake-map/internal/domain"
)

// Rejection reasons.
const (
	reasonDecode      = "decode"
	reasonGeometry    = "geometry"
	reasonCoordinates = "coordinates"
	reasonLocation    = "location"
	reasonMagnitude   = "magnitude"
)

var (
	errNotPoint      = errors.New("geometry is not a point")
	errEmptyPoint    = errors.New("point has no coordinates")
	errNoDepth       = errors.New("point has no depth")
	errBadLocation   = errors.New("latitude or longitude out of range")
	errNoMagnitude   = errors.New("mag property missing or not a number")
	errNotLinear     = errors.New("geometry has no lines")
	errShortBoundary = errors.New("line has fewer than two points")
)

// Rejection records one feature left out while converting a collection.
type Rejection struct {
	Index  int
	Reason string
	Err    error
}

// FetchEvents downloads a period's feed and converts it to events stamped
// with the current clock.
func (c *Client) FetchEvents(ctx context.Context, period domain.Period) (domain.Feed, error) {
	coll, err := c.FetchCollection(ctx, SourceEvents, period.URL)
	if err != nil {
		return domain.Feed{}, fmt.Errorf("fetch %s: %w", period.Label, err)
	}
	events, rejected := Events(coll.Features)
	for _, r := range rejected {
		c.reject(SourceEvents, r.Reason, r.Index, r.Err)
	}
	return domain.Feed{
		Period:    period,
		Events:    events,
		Rejected:  len(coll.Rejections) + len(rejected),
		FetchedAt: domain.Now(),
	}, nil
}

// Events converts USGS point features to events in source order. Each
// event's ID is its feature's position in the collection.
func Events(features []geom.GeoJSONFeature) ([]domain.Event, []Rejection) {
	events := make([]domain.Event, 0, len(features))
	var rejected []Rejection
	for i, f := range features {
		e, reason, err := toEvent(f)
		if err != nil {
			rejected = append(rejected, Rejection{Index: i, Reason: reason, Err: err})
			continue
		}
		e.ID = i
		events = append(events, e)
	}
	return events, rejected
}

func toEvent(f geom.GeoJSONFeature) (domain.Event, string, error) {
	pt, ok := f.Geometry.AsPoint()
	if !ok {
		return domain.Event{}, reasonGeometry, errNotPoint
	}
	c, ok := pt.Coordinates()
	if !ok {
		return domain.Event{}, reasonCoordinates, errEmptyPoint
	}
	if !c.Type.Is3D() {
		return domain.Event{}, reasonCoordinates, errNoDepth
	}
	lon, lat := c.XY.X, c.XY.Y
	if !s2.LatLngFromDegrees(lat, lon).IsValid() {
		return domain.Event{}, reasonLocation, errBadLocation
	}
	mag, ok := f.Properties["mag"].(float64)
	if !ok {
		return domain.Event{}, reasonMagnitude, errNoMagnitude
	}

	e := domain.Event{
		Magnitude: mag,
		Depth:     c.Z,
		Latitude:  lat,
		Longitude: lon,
		Place:     stringProp(f.Properties, "place"),
		URL:       stringProp(f.Properties, "url"),
		Title:     stringProp(f.Properties, "title"),
	}
	if ms, ok := f.Properties["time"].(float64); ok {
		e.Time = time.UnixMilli(int64(ms)).UTC()
	}
	return e, "", nil
}

func stringProp(props map[string]interface{}, key string) string {
	s, _ := props[key].(string)
	return s
}
