package feed

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/couchcryptid/quake-map/internal/observability"
)

const (
	contentTypeGeoJSON = "application/geo+json"
	headerContentType  = "Content-Type"
)

// quakeFeed has three good events followed by one feature per rejection reason.
const quakeFeed = `{
  "type": "FeatureCollection",
  "metadata": {"title": "USGS All Earthquakes, Past Day"},
  "features": [
    {"type": "Feature", "id": "ak1",
     "properties": {"mag": 1.6, "place": "12 km SSW of Willow, Alaska", "time": 1710027000000,
                    "url": "https://earthquake.usgs.gov/earthquakes/eventpage/ak1", "title": "M 1.6 - 12 km SSW of Willow, Alaska"},
     "geometry": {"type": "Point", "coordinates": [-150.1, 61.6, 35.2]}},
    {"type": "Feature", "id": "us2",
     "properties": {"mag": 5.5, "place": "Kermadec Islands", "time": 1710030600000},
     "geometry": {"type": "Point", "coordinates": [-177.9, -29.4, 95.0]}},
    {"type": "Feature", "id": "ci3",
     "properties": {"mag": -0.4, "place": "Ridgecrest, CA"},
     "geometry": {"type": "Point", "coordinates": [-117.6, 35.7, -1.2]}},
    {"type": "Feature", "id": "nomag",
     "properties": {"mag": null, "place": "Nowhere"},
     "geometry": {"type": "Point", "coordinates": [10, 10, 10]}},
    {"type": "Feature", "id": "flat",
     "properties": {"mag": 2.0},
     "geometry": {"type": "Point", "coordinates": [10, 10]}},
    {"type": "Feature", "id": "offworld",
     "properties": {"mag": 2.0},
     "geometry": {"type": "Point", "coordinates": [10, 95, 10]}},
    {"type": "Feature", "id": "line",
     "properties": {"mag": 2.0},
     "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]}},
    {"type": "Feature", "id": "short",
     "properties": {"mag": 2.0},
     "geometry": {"type": "Point", "coordinates": [10]}}
  ]
}`

const plateFeed = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"Name": "AF-AN"},
     "geometry": {"type": "LineString", "coordinates": [[-0.4, -54.8], [0.3, -54.6], [1.1, -54.4]]}},
    {"type": "Feature", "properties": {"Name": "EU-NA"},
     "geometry": {"type": "MultiLineString", "coordinates": [[[-30, 60], [-29, 61]], [[-28, 62], [-27, 63]]]}},
    {"type": "Feature", "properties": {"Name": "Alps"},
     "geometry": {"type": "Polygon", "coordinates": [[[6, 44], [14, 44], [14, 48], [6, 48], [6, 44]]]}},
    {"type": "Feature", "properties": {"Name": "dot"},
     "geometry": {"type": "Point", "coordinates": [0, 0]}}
  ]
}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient() *Client {
	return NewClient(5*time.Second, discardLogger(), observability.NewMetricsForTesting())
}

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set(headerContentType, contentTypeGeoJSON)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchEvents_Success(t *testing.T) {
	fetchedAt := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(fetchedAt))
	t.Cleanup(func() { domain.SetClock(nil) })

	srv := serve(t, http.StatusOK, quakeFeed)
	c := testClient()
	period := domain.Period{Label: domain.PeriodPastDay, URL: srv.URL + "/all_day.geojson"}

	feed, err := c.FetchEvents(context.Background(), period)
	require.NoError(t, err)

	assert.Equal(t, period, feed.Period)
	assert.Equal(t, fetchedAt, feed.FetchedAt)
	assert.Equal(t, 5, feed.Rejected)
	require.Len(t, feed.Events, 3)

	first := feed.Events[0]
	assert.Equal(t, 0, first.ID)
	assert.InDelta(t, 1.6, first.Magnitude, 0)
	assert.InDelta(t, 35.2, first.Depth, 0)
	assert.InDelta(t, 61.6, first.Latitude, 0)
	assert.InDelta(t, -150.1, first.Longitude, 0)
	assert.Equal(t, "12 km SSW of Willow, Alaska", first.Place)
	assert.Equal(t, "https://earthquake.usgs.gov/earthquakes/eventpage/ak1", first.URL)
	assert.Equal(t, "M 1.6 - 12 km SSW of Willow, Alaska", first.Title)
	assert.Equal(t, time.UnixMilli(1710027000000).UTC(), first.Time)

	assert.InDelta(t, -0.4, feed.Events[2].Magnitude, 0)
	assert.InDelta(t, -1.2, feed.Events[2].Depth, 0)
	assert.True(t, feed.Events[2].Time.IsZero())

	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.FetchRequests.WithLabelValues(SourceEvents, "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.RejectedFeatures.WithLabelValues(SourceEvents, reasonMagnitude)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.RejectedFeatures.WithLabelValues(SourceEvents, reasonLocation)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.RejectedFeatures.WithLabelValues(SourceEvents, reasonGeometry)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.RejectedFeatures.WithLabelValues(SourceEvents, reasonCoordinates)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.RejectedFeatures.WithLabelValues(SourceEvents, reasonDecode)), 0)
}

func TestFetchCollection_Non200(t *testing.T) {
	srv := serve(t, http.StatusServiceUnavailable, "upstream down")
	c := testClient()

	_, err := c.FetchCollection(context.Background(), SourceEvents, srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
	assert.Contains(t, err.Error(), "upstream down")
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.FetchRequests.WithLabelValues(SourceEvents, "error")), 0)
}

func TestFetchCollection_MalformedJSON(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"type": "FeatureCollection", "features": [`)

	_, err := testClient().FetchCollection(context.Background(), SourceEvents, srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode events feed")
}

func TestFetchCollection_WrongType(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"type": "Feature", "geometry": null, "properties": {}}`)

	_, err := testClient().FetchCollection(context.Background(), SourcePlates, srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unexpected type "Feature"`)
}

func TestFetchCollection_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c := NewClient(50*time.Millisecond, discardLogger(), observability.NewMetricsForTesting())
	_, err := c.FetchCollection(context.Background(), SourceEvents, srv.URL)
	require.Error(t, err)
}

func TestFetchCollection_ContextCanceled(t *testing.T) {
	srv := serve(t, http.StatusOK, quakeFeed)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient().FetchCollection(ctx, SourceEvents, srv.URL)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFetchBoundaries(t *testing.T) {
	srv := serve(t, http.StatusOK, plateFeed)
	c := testClient()

	lines, err := c.FetchBoundaries(context.Background(), SourcePlates, srv.URL)
	require.NoError(t, err)

	require.Len(t, lines, 4)
	assert.Equal(t, "AF-AN", lines[0].Name)
	assert.Equal(t, []domain.LatLon{{Lat: -54.8, Lon: -0.4}, {Lat: -54.6, Lon: 0.3}, {Lat: -54.4, Lon: 1.1}}, lines[0].Points)
	assert.Equal(t, "EU-NA", lines[1].Name)
	assert.Equal(t, "EU-NA", lines[2].Name)
	assert.Equal(t, "Alps", lines[3].Name)
	assert.Len(t, lines[3].Points, 5)
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.RejectedFeatures.WithLabelValues(SourcePlates, reasonGeometry)), 0)
}

func TestFetchBoundaries_Error(t *testing.T) {
	srv := serve(t, http.StatusNotFound, "")

	_, err := testClient().FetchBoundaries(context.Background(), SourceOrogens, srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch orogens")
}

const shapeFeed = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"Name": "JF-NA"},
     "geometry": {"type": "MultiLineString", "coordinates": [[[-130, 50], [-129, 49]], [[-128, 48], [-127, 47], [-126, 46]]]}},
    {"type": "Feature", "properties": {"Name": "Zagros"},
     "geometry": {"type": "Polygon", "coordinates": [
       [[44, 30], [56, 30], [56, 38], [44, 38], [44, 30]],
       [[48, 32], [50, 32], [50, 34], [48, 32]]]}},
    {"type": "Feature", "properties": {"Name": "Andes"},
     "geometry": {"type": "MultiPolygon", "coordinates": [
       [[[-80, -40], [-70, -40], [-70, -10], [-80, -40]]],
       [[[-78, 0], [-74, 0], [-74, 5], [-78, 0]]]]}},
    {"type": "Feature", "properties": {"Name": "pin"},
     "geometry": {"type": "Point", "coordinates": [1, 2]}}
  ]
}`

func TestBoundaries_Shapes(t *testing.T) {
	coll, err := Decode(strings.NewReader(shapeFeed))
	require.NoError(t, err)
	require.Empty(t, coll.Rejections)

	lines, rejected := Boundaries(coll.Features)

	names := make([]string, 0, len(lines))
	for _, l := range lines {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{"JF-NA", "JF-NA", "Zagros", "Zagros", "Andes", "Andes"}, names)
	assert.Equal(t, []domain.LatLon{{Lat: 50, Lon: -130}, {Lat: 49, Lon: -129}}, lines[0].Points)
	assert.Len(t, lines[1].Points, 3)
	assert.Len(t, lines[2].Points, 5, "exterior ring")
	assert.Len(t, lines[3].Points, 4, "interior ring")
	assert.Equal(t, domain.LatLon{Lat: 0, Lon: -78}, lines[5].Points[0])

	require.Len(t, rejected, 1)
	assert.Equal(t, 3, rejected[0].Index)
	assert.Equal(t, reasonGeometry, rejected[0].Reason)
}

func TestEvents_NonPointRejected(t *testing.T) {
	coll, err := Decode(strings.NewReader(shapeFeed))
	require.NoError(t, err)

	events, rejected := Events(coll.Features)

	require.Len(t, events, 0)
	require.Len(t, rejected, 4)
	for _, r := range rejected[:3] {
		assert.Equal(t, reasonGeometry, r.Reason)
	}
	assert.Equal(t, reasonCoordinates, rejected[3].Reason, "2D point has no depth")
}
