//go:build usgs

package feed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quake-map/internal/config"
	"github.com/couchcryptid/quake-map/internal/domain"
)

// These tests hit the live USGS and plate boundary feeds.
// Run with: go test -tags=usgs ./internal/adapter/feed/ -v -count=1

func TestSmoke_FetchEventsPastDay(t *testing.T) {
	c := testClient()
	period, err := domain.NewPeriods(config.DefaultFeedBaseURL).Lookup(domain.PeriodPastDay)
	require.NoError(t, err)

	feed, err := c.FetchEvents(context.Background(), period)
	require.NoError(t, err)

	assert.NotEmpty(t, feed.Events, "a day of global seismicity is never empty")
	for _, e := range feed.Events {
		assert.InDelta(t, 0, e.Latitude, 90)
		assert.InDelta(t, 0, e.Longitude, 180)
		assert.False(t, e.Time.IsZero())
	}
}

func TestSmoke_FetchPlates(t *testing.T) {
	c := testClient()

	lines, err := c.FetchBoundaries(context.Background(), SourcePlates, config.DefaultPlatesURL)
	require.NoError(t, err)
	assert.NotEmpty(t, lines)
}
