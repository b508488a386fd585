package domain

// Filter returns the events whose rounded magnitude lies in magBand's
// interval and whose rounded depth lies in depthBand's interval, preserving
// input order. Selecting a table's All band disables that dimension's test,
// so Filter(events, all, all) returns every event. An unknown band name
// matches nothing.
func Filter(events []Event, magBand, depthBand string, magTable, depthTable CategoryTable) []Event {
	magTest, okMag := bandTest(magTable, magBand)
	depthTest, okDepth := bandTest(depthTable, depthBand)
	out := make([]Event, 0, len(events))
	if !okMag || !okDepth {
		return out
	}
	for _, e := range events {
		if magTest(e) && depthTest(e) {
			out = append(out, e)
		}
	}
	return out
}

// FilterSelection applies Filter with the selection's bands against the
// standard magnitude and depth tables.
func FilterSelection(events []Event, sel Selection) []Event {
	return Filter(events, sel.Magnitude, sel.Depth, MagnitudeTable, DepthTable)
}

func bandTest(t CategoryTable, name string) (func(Event) bool, bool) {
	if name == t.All.Name {
		return func(Event) bool { return true }, true
	}
	rng, ok := t.Lookup(name)
	if !ok {
		return nil, false
	}
	return func(e Event) bool {
		return rng.Contains(RoundOneDecimal(t.Dimension.Value(e)))
	}, true
}
