package mapview

import (
	"errors"
	"fmt"

	"github.com/wroge/wgs84"
)

// Coordinate reference systems a snapshot can be expressed in.
const (
	CRSWGS84       = "EPSG:4326"
	CRSWebMercator = "EPSG:3857"
)

// ErrUnsupportedCRS is returned by ParseCRS for unknown systems.
var ErrUnsupportedCRS = errors.New("unsupported crs")

// ParseCRS accepts an EPSG code with or without the "EPSG:" prefix. An empty
// string means WGS-84.
func ParseCRS(s string) (string, error) {
	switch s {
	case "", "4326", CRSWGS84:
		return CRSWGS84, nil
	case "3857", CRSWebMercator:
		return CRSWebMercator, nil
	default:
		return "", fmt.Errorf("crs %q: %w", s, ErrUnsupportedCRS)
	}
}

// Project returns a copy of s with Web Mercator X/Y set on every coordinate
// when crs is EPSG:3857. Lat/Lon are kept. Other systems return s unchanged.
func (s LayerSnapshot) Project(crs string) LayerSnapshot {
	if crs != CRSWebMercator || s.CRS == CRSWebMercator {
		return s
	}
	f := wgs84.EPSG().Transform(4326, 3857)
	project := func(c Coord) Coord {
		x, y, _ := f(c.Lon, c.Lat, 0)
		c.X, c.Y = &x, &y
		return c
	}

	out := s
	out.CRS = CRSWebMercator
	out.Primitives = make([]Primitive, len(s.Primitives))
	for i, p := range s.Primitives {
		switch {
		case p.Heat != nil:
			h := *p.Heat
			h.Coord = project(h.Coord)
			p.Heat = &h
		case p.Circle != nil:
			c := *p.Circle
			c.Coord = project(c.Coord)
			p.Circle = &c
		case p.Polyline != nil:
			l := *p.Polyline
			l.Points = make([]Coord, len(p.Polyline.Points))
			for j, pt := range p.Polyline.Points {
				l.Points[j] = project(pt)
			}
			p.Polyline = &l
		}
		out.Primitives[i] = p
	}
	return out
}
