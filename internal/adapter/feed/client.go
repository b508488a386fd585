// Package feed fetches GeoJSON documents over HTTP: the USGS earthquake
// summary feeds and the PB2002 plate boundary and orogen outlines.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/peterstace/simplefeatures/geom"

	"github.com/couchcryptid/quake-map/internal/observability"
)

// Fetch sources, used as metric and log labels.
const (
	SourceEvents  = "events"
	SourcePlates  = "plates"
	SourceOrogens = "orogens"
)

// maxBodyBytes bounds how much of a response is read. The 30-day feed is a
// few tens of megabytes.
const maxBodyBytes = 256 << 20

// Collection is a decoded GeoJSON FeatureCollection. Features that failed to
// decode are listed in Rejections and left out.
type Collection struct {
	Features   []geom.GeoJSONFeature
	Rejections []Rejection
}

// Client fetches GeoJSON feature collections.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a feed client whose requests give up after timeout.
func NewClient(timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// FetchCollection downloads url and decodes it as a FeatureCollection.
func (c *Client) FetchCollection(ctx context.Context, source, url string) (Collection, error) {
	start := time.Now()
	coll, err := c.fetchCollection(ctx, source, url)
	c.metrics.FetchDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues(source, "error").Inc()
		return Collection{}, err
	}
	c.metrics.FetchRequests.WithLabelValues(source, "success").Inc()
	return coll, nil
}

func (c *Client) fetchCollection(ctx context.Context, source, url string) (Collection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Collection{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Collection{}, fmt.Errorf("%s feed request: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Collection{}, fmt.Errorf("%s feed error: status %d: %s", source, resp.StatusCode, body)
	}

	coll, err := Decode(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Collection{}, fmt.Errorf("decode %s feed: %w", source, err)
	}
	for _, r := range coll.Rejections {
		c.reject(source, r.Reason, r.Index, r.Err)
	}
	return coll, nil
}

// Decode reads a GeoJSON FeatureCollection. Each feature is decoded on its
// own so one bad feature does not sink the whole document.
func Decode(r io.Reader) (Collection, error) {
	var doc envelope
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Collection{}, err
	}
	if doc.Type != "FeatureCollection" {
		return Collection{}, fmt.Errorf("unexpected type %q", doc.Type)
	}

	coll := Collection{Features: make([]geom.GeoJSONFeature, 0, len(doc.Features))}
	for i, raw := range doc.Features {
		var f geom.GeoJSONFeature
		if err := json.Unmarshal(raw, &f); err != nil {
			coll.Rejections = append(coll.Rejections, Rejection{Index: i, Reason: reasonDecode, Err: err})
			continue
		}
		coll.Features = append(coll.Features, f)
	}
	return coll, nil
}

func (c *Client) reject(source, reason string, index int, err error) {
	c.metrics.RejectedFeatures.WithLabelValues(source, reason).Inc()
	c.logger.Debug("feature rejected", "source", source, "reason", reason, "index", index, "error", err)
}

// envelope is the outer FeatureCollection object.
type envelope struct {
	Type     string            `json:"type"`
	Features []json.RawMessage `json:"features"`
}
