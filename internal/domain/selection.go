package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPeriod is returned when a time period label has no feed.
var ErrUnknownPeriod = errors.New("unknown period")

// Time period labels, in menu order.
const (
	PeriodPast30Days = "Past 30 Days"
	PeriodPast7Days  = "Past 7 Days"
	PeriodPastDay    = "Past Day"
	PeriodPastHour   = "Past Hour"
)

var periodFeeds = []struct {
	label string
	file  string
}{
	{PeriodPast30Days, "all_month.geojson"},
	{PeriodPast7Days, "all_week.geojson"},
	{PeriodPastDay, "all_day.geojson"},
	{PeriodPastHour, "all_hour.geojson"},
}

// Period is a selectable time window and the feed URL that serves it.
type Period struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Periods is the ordered list of selectable time windows.
type Periods []Period

// NewPeriods builds the period list against a USGS summary feed base URL.
func NewPeriods(baseURL string) Periods {
	base := strings.TrimRight(baseURL, "/")
	periods := make(Periods, 0, len(periodFeeds))
	for _, pf := range periodFeeds {
		periods = append(periods, Period{Label: pf.label, URL: base + "/" + pf.file})
	}
	return periods
}

// Lookup finds a period by label.
func (ps Periods) Lookup(label string) (Period, error) {
	for _, p := range ps {
		if p.Label == label {
			return p, nil
		}
	}
	return Period{}, fmt.Errorf("period %q: %w", label, ErrUnknownPeriod)
}

// Labels returns every period label in order.
func (ps Periods) Labels() []string {
	labels := make([]string, 0, len(ps))
	for _, p := range ps {
		labels = append(labels, p.Label)
	}
	return labels
}

// Selection holds the user's current period, magnitude band and depth band.
// A zero band means nothing; use NewSelection to start from the sentinels.
type Selection struct {
	Period    string `json:"period"`
	Magnitude string `json:"magnitude"`
	Depth     string `json:"depth"`
}

// NewSelection starts a selection on period with both bands unfiltered.
func NewSelection(period string) Selection {
	return Selection{
		Period:    period,
		Magnitude: MagnitudeTable.All.Name,
		Depth:     DepthTable.All.Name,
	}
}

// WithPeriod switches the period and resets both bands to their sentinels.
func (s Selection) WithPeriod(period string) Selection {
	return NewSelection(period)
}

// WithMagnitude changes only the magnitude band.
func (s Selection) WithMagnitude(band string) (Selection, error) {
	if err := MagnitudeTable.Validate(band); err != nil {
		return s, err
	}
	s.Magnitude = band
	return s, nil
}

// WithDepth changes only the depth band.
func (s Selection) WithDepth(band string) (Selection, error) {
	if err := DepthTable.Validate(band); err != nil {
		return s, err
	}
	s.Depth = band
	return s, nil
}
