package domain

import "time"

// RenderRecord summarises one completed filter-and-render pass.
type RenderRecord struct {
	Selection  Selection `json:"selection"`
	Variant    string    `json:"variant"`
	FeedURL    string    `json:"feed_url"`
	Loaded     int       `json:"loaded"`
	Filtered   int       `json:"filtered"`
	Rejected   int       `json:"rejected"`
	FetchedAt  time.Time `json:"fetched_at"`
	RenderedAt time.Time `json:"rendered_at"`
}
