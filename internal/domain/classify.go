package domain

import (
	"math"
	"strconv"
)

// FormatFixed formats v with the given number of decimals. The exact binary
// value is rounded to the nearest step, and exact ties round away from zero.
// A negative v keeps its sign even when it rounds to zero.
func FormatFixed(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) || decimals < 0 {
		return strconv.FormatFloat(v, 'f', decimals, 64)
	}
	abs := math.Abs(v)
	// A tie is exactly representable only as an odd multiple of 2^-(decimals+1).
	if q := math.Ldexp(abs, decimals+1); q == math.Trunc(q) && math.Mod(q, 2) == 1 {
		abs = math.Nextafter(abs, math.Inf(1))
	}
	s := strconv.FormatFloat(abs, 'f', decimals, 64)
	if v < 0 {
		s = "-" + s
	}
	return s
}

// RoundOneDecimal rounds v to one decimal place the way the band boundaries
// expect, with the tie rule of FormatFixed.
func RoundOneDecimal(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	r, _ := strconv.ParseFloat(FormatFixed(v, 1), 64)
	return math.Copysign(r, v)
}

// Classify returns the name of the first non-sentinel band whose interval
// contains v rounded to one decimal place. It returns false when v falls
// outside every band; callers treat that as unclassified, not as an error.
func Classify(v float64, t CategoryTable) (string, bool) {
	r := RoundOneDecimal(v)
	for _, b := range t.Bands {
		if b.Interval.Contains(r) {
			return b.Name, true
		}
	}
	return "", false
}

// AvailableBands returns, in table order, the non-sentinel bands that at
// least one event falls into. The sentinel is never included.
func AvailableBands(events []Event, t CategoryTable) []string {
	bands := make([]string, 0, len(t.Bands))
	for _, b := range t.Bands {
		for _, e := range events {
			if b.Interval.Contains(RoundOneDecimal(t.Dimension.Value(e))) {
				bands = append(bands, b.Name)
				break
			}
		}
	}
	return bands
}
