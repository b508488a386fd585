package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownBand is returned when a band name is not part of a category table.
var ErrUnknownBand = errors.New("unknown band")

// Dimension identifies which event attribute a category table buckets.
type Dimension int

const (
	DimensionMagnitude Dimension = iota
	DimensionDepth
)

func (d Dimension) String() string {
	switch d {
	case DimensionMagnitude:
		return "magnitude"
	case DimensionDepth:
		return "depth"
	default:
		return fmt.Sprintf("dimension(%d)", int(d))
	}
}

// Value extracts the attribute this dimension measures from an event.
func (d Dimension) Value(e Event) float64 {
	if d == DimensionDepth {
		return e.Depth
	}
	return e.Magnitude
}

// Interval is a closed numeric range [Low, High].
type Interval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Contains reports whether v lies in the closed interval.
func (i Interval) Contains(v float64) bool {
	return v >= i.Low && v <= i.High
}

// Band is a named interval used to bucket one dimension.
type Band struct {
	Name     string   `json:"name"`
	Interval Interval `json:"interval"`
}

// CategoryTable is the ordered set of bands for one dimension plus the
// distinguished All band that stands for "no filter".
type CategoryTable struct {
	Dimension Dimension
	All       Band
	Bands     []Band
}

// Lookup resolves a band name, including the sentinel, to its interval.
func (t CategoryTable) Lookup(name string) (Interval, bool) {
	if name == t.All.Name {
		return t.All.Interval, true
	}
	for _, b := range t.Bands {
		if b.Name == name {
			return b.Interval, true
		}
	}
	return Interval{}, false
}

// Validate checks that name is the sentinel or one of the table's bands.
func (t CategoryTable) Validate(name string) error {
	if _, ok := t.Lookup(name); !ok {
		return fmt.Errorf("%s band %q: %w", t.Dimension, name, ErrUnknownBand)
	}
	return nil
}

// Names returns the sentinel name followed by every band name in table order.
func (t CategoryTable) Names() []string {
	names := make([]string, 0, len(t.Bands)+1)
	names = append(names, t.All.Name)
	for _, b := range t.Bands {
		names = append(names, b.Name)
	}
	return names
}

// MagnitudeTable buckets events by rounded magnitude.
var MagnitudeTable = CategoryTable{
	Dimension: DimensionMagnitude,
	All:       Band{Name: "Magnitude", Interval: Interval{Low: -20.0, High: 20.0}},
	Bands: []Band{
		{Name: "<2.5", Interval: Interval{Low: -20.0, High: 2.4}},
		{Name: "2.5-5.4", Interval: Interval{Low: 2.5, High: 5.4}},
		{Name: "5.5-6.0", Interval: Interval{Low: 5.5, High: 6.0}},
		{Name: "7.0-7.9", Interval: Interval{Low: 7.0, High: 7.9}},
		{Name: "8.0+", Interval: Interval{Low: 8.0, High: 20.0}},
	},
}

// DepthTable buckets events by rounded depth in kilometres.
var DepthTable = CategoryTable{
	Dimension: DimensionDepth,
	All:       Band{Name: "Depth", Interval: Interval{Low: -10.0, High: 1000.0}},
	Bands: []Band{
		{Name: "-10-10", Interval: Interval{Low: -10.0, High: 9.9}},
		{Name: "10-30", Interval: Interval{Low: 10.0, High: 29.9}},
		{Name: "30-50", Interval: Interval{Low: 30.0, High: 49.9}},
		{Name: "50-70", Interval: Interval{Low: 50.0, High: 69.9}},
		{Name: "70-90", Interval: Interval{Low: 70.0, High: 89.9}},
		{Name: "90+", Interval: Interval{Low: 90.0, High: 1000.0}},
	},
}
