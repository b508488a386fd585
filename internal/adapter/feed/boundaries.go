package feed

import (
	"context"
	"fmt"

	"github.com/peterstace/simplefeatures/geom"

	"github.com/couchcryptid/quake-map/internal/domain"
)

// FetchBoundaries downloads a plate boundary or orogen collection and
// flattens it to polylines.
func (c *Client) FetchBoundaries(ctx context.Context, source, url string) ([]domain.Boundary, error) {
	coll, err := c.FetchCollection(ctx, source, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	lines, rejected := Boundaries(coll.Features)
	for _, r := range rejected {
		c.reject(source, r.Reason, r.Index, r.Err)
	}
	return lines, nil
}

// Boundaries flattens line and polygon features to one polyline per line
// string or ring, keeping each feature's Name property.
func Boundaries(features []geom.GeoJSONFeature) ([]domain.Boundary, []Rejection) {
	lines := make([]domain.Boundary, 0, len(features))
	var rejected []Rejection
	for i, f := range features {
		name := stringProp(f.Properties, "Name")
		rings, ok := linesOf(f.Geometry)
		if !ok {
			rejected = append(rejected, Rejection{Index: i, Reason: reasonGeometry, Err: errNotLinear})
			continue
		}

		before := len(lines)
		for _, ls := range rings {
			if b, ok := toBoundary(name, ls); ok {
				lines = append(lines, b)
			}
		}
		if len(lines) == before {
			rejected = append(rejected, Rejection{Index: i, Reason: reasonCoordinates, Err: errShortBoundary})
		}
	}
	return lines, rejected
}

// linesOf returns every line string or polygon ring in g. It reports false
// for geometries that carry no lines.
func linesOf(g geom.Geometry) ([]geom.LineString, bool) {
	var rings []geom.LineString
	if ls, ok := g.AsLineString(); ok {
		return append(rings, ls), true
	}
	if mls, ok := g.AsMultiLineString(); ok {
		for j := 0; j < mls.NumLineStrings(); j++ {
			rings = append(rings, mls.LineStringN(j))
		}
		return rings, true
	}
	if p, ok := g.AsPolygon(); ok {
		return appendRings(rings, p), true
	}
	if mp, ok := g.AsMultiPolygon(); ok {
		for j := 0; j < mp.NumPolygons(); j++ {
			rings = appendRings(rings, mp.PolygonN(j))
		}
		return rings, true
	}
	return nil, false
}

func appendRings(rings []geom.LineString, p geom.Polygon) []geom.LineString {
	if p.IsEmpty() {
		return rings
	}
	rings = append(rings, p.ExteriorRing())
	for k := 0; k < p.NumInteriorRings(); k++ {
		rings = append(rings, p.InteriorRingN(k))
	}
	return rings
}

func toBoundary(name string, ls geom.LineString) (domain.Boundary, bool) {
	seq := ls.Coordinates()
	if seq.Length() < 2 {
		return domain.Boundary{}, false
	}
	pts := make([]domain.LatLon, seq.Length())
	for i := range pts {
		xy := seq.GetXY(i)
		pts[i] = domain.LatLon{Lat: xy.Y, Lon: xy.X}
	}
	return domain.Boundary{Name: name, Points: pts}, true
}
