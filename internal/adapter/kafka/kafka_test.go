package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quake-map/internal/config"
	"github.com/couchcryptid/quake-map/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	renderedAt := time.Date(2024, 3, 10, 12, 0, 5, 0, time.UTC)
	rec := domain.RenderRecord{
		Selection:  domain.Selection{Period: "Past Day", Magnitude: "2.5-5.4", Depth: "Depth"},
		Variant:    "visualization",
		FeedURL:    "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_day.geojson",
		Loaded:     300,
		Filtered:   42,
		Rejected:   1,
		FetchedAt:  renderedAt.Add(-5 * time.Second),
		RenderedAt: renderedAt,
	}

	msg, err := serializeToMessage(rec)
	require.NoError(t, err)

	assert.Equal(t, []byte("Past Day"), msg.Key)
	assert.Contains(t, string(msg.Value), `"magnitude":"2.5-5.4"`)
	assert.Contains(t, string(msg.Value), `"filtered":42`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "variant", msg.Headers[0].Key)
	assert.Equal(t, []byte("visualization"), msg.Headers[0].Value)
	assert.Equal(t, "rendered_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2024-03-10T12:00:05Z"), msg.Headers[1].Value)

	var back domain.RenderRecord
	require.NoError(t, json.Unmarshal(msg.Value, &back))
	assert.Equal(t, rec, back)
}

func TestNewWriter_UsesJournalTopic(t *testing.T) {
	cfg := &config.Config{
		KafkaBrokers:      []string{"broker1:9092", "broker2:9092"},
		KafkaJournalTopic: "quake-map-renders",
	}
	w := NewWriter(cfg, nil)
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, "quake-map-renders", w.writer.Topic)
	assert.NotNil(t, w.writer.Addr)
}
