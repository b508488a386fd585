package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/couchcryptid/quake-map/internal/mapview"
	"github.com/couchcryptid/quake-map/internal/menu"
	"github.com/couchcryptid/quake-map/internal/observability"
	"github.com/couchcryptid/quake-map/internal/render"
)

// ErrUnknownLayer is returned when a visibility toggle names a layer the
// page does not have.
var ErrUnknownLayer = errors.New("unknown layer")

// ErrStopped is returned by commands sent after Run has returned.
var ErrStopped = errors.New("pipeline stopped")

// EventSource fetches a period's event feed.
type EventSource interface {
	FetchEvents(ctx context.Context, period domain.Period) (domain.Feed, error)
}

// BoundarySource fetches plate boundary or orogen lines.
type BoundarySource interface {
	FetchBoundaries(ctx context.Context, source, url string) ([]domain.Boundary, error)
}

// Renderer draws events and boundaries into layer groups.
type Renderer interface {
	Render(events []domain.Event, mode render.Mode) render.Result
	RenderBoundaries(group string, lines []domain.Boundary, style mapview.LineStyle) render.Result
}

// LayerControl shows and hides layer groups.
type LayerControl interface {
	HasLayer(name string) bool
	AddToMap(name string)
	RemoveFromMap(name string)
}

// Menus is the page's set of drop-down selects.
type Menus interface {
	Repopulate(id string, labels []string) error
	Choose(id, value string) bool
}

// Journal records completed render passes.
type Journal interface {
	Record(ctx context.Context, rec domain.RenderRecord) error
}

// Overlay is a static boundary layer fetched once at start-up.
type Overlay struct {
	Layer  string
	Source string
	URL    string
	Style  mapview.LineStyle
}

// Options configures a Pipeline.
type Options struct {
	Variant       render.Variant
	Periods       domain.Periods
	DefaultPeriod string
	Overlays      []Overlay
	Journal       Journal // nil disables the journal
}

// State is a read-only view of the pipeline for the page surface.
type State struct {
	Selection    domain.Selection `json:"selection"`
	Variant      string           `json:"variant"`
	LoadedPeriod string           `json:"loaded_period,omitempty"`
	Loading      bool             `json:"loading"`
	Loaded       int              `json:"loaded"`
	Filtered     int              `json:"filtered"`
	Rejected     int              `json:"rejected"`
	FetchedAt    time.Time        `json:"fetched_at,omitzero"`
	Stale        uint64           `json:"stale_fetches"`
}

const journalQueueSize = 64

// Pipeline owns the selection state and drives fetch, filter, and render.
// All state changes happen on the Run goroutine; other goroutines talk to
// it through commands and read the published State.
type Pipeline struct {
	events   EventSource
	bounds   BoundarySource
	renderer Renderer
	layers   LayerControl
	menus    Menus
	journal  Journal
	opts     Options
	logger   *slog.Logger
	metrics  *observability.Metrics

	cmds     chan command
	feeds    chan fetchResult
	overlays chan overlayResult
	records  chan domain.RenderRecord
	done     chan struct{}

	ready atomic.Bool
	state atomic.Pointer[State]

	// Owned by the Run goroutine.
	sel      domain.Selection
	feed     *domain.Feed
	filtered int
	seq      uint64
	pending  *fetchTag
	stale    uint64
}

type commandKind int

const (
	cmdPeriod commandKind = iota
	cmdMagnitude
	cmdDepth
	cmdVisibility
)

type command struct {
	kind    commandKind
	value   string
	visible bool
	reply   chan error
}

// fetchTag identifies one issued event fetch.
type fetchTag struct {
	period string
	seq    uint64
}

type fetchResult struct {
	tag  fetchTag
	feed domain.Feed
	err  error
}

type overlayResult struct {
	overlay Overlay
	lines   []domain.Boundary
	err     error
}

// New creates a Pipeline. The default period must be one of opts.Periods.
func New(events EventSource, bounds BoundarySource, renderer Renderer, layers LayerControl, menus Menus, opts Options, logger *slog.Logger, metrics *observability.Metrics) (*Pipeline, error) {
	if _, err := opts.Periods.Lookup(opts.DefaultPeriod); err != nil {
		return nil, fmt.Errorf("default period: %w", err)
	}
	p := &Pipeline{
		events:   events,
		bounds:   bounds,
		renderer: renderer,
		layers:   layers,
		menus:    menus,
		journal:  opts.Journal,
		opts:     opts,
		logger:   logger,
		metrics:  metrics,
		cmds:     make(chan command),
		feeds:    make(chan fetchResult),
		overlays: make(chan overlayResult),
		records:  make(chan domain.RenderRecord, journalQueueSize),
		done:     make(chan struct{}),
		sel:      domain.NewSelection(opts.DefaultPeriod),
	}
	p.publish()
	return p, nil
}

// CheckReadiness returns nil once the first event render has landed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no events rendered yet")
	}
	return nil
}

// State returns the most recently published state.
func (p *Pipeline) State() State {
	return *p.state.Load()
}

// Layers returns the page's overlay layer names.
func (p *Pipeline) Layers() []string {
	return p.opts.Variant.Layers()
}

// Run bootstraps the page and processes commands and fetch results until
// the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "variant", p.opts.Variant, "period", p.sel.Period)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)
	defer close(p.done)

	if p.journal != nil {
		go p.drainJournal(ctx)
	}

	p.bootstrap(ctx)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case cmd := <-p.cmds:
			cmd.reply <- p.handle(ctx, cmd)
		case res := <-p.feeds:
			p.applyFeed(res)
		case res := <-p.overlays:
			p.applyOverlay(res)
		}
	}
}

// SetPeriod switches the time period, resets both bands, and refetches.
func (p *Pipeline) SetPeriod(ctx context.Context, label string) error {
	return p.send(ctx, command{kind: cmdPeriod, value: label})
}

// SetMagnitude changes the magnitude band and re-renders loaded data.
func (p *Pipeline) SetMagnitude(ctx context.Context, band string) error {
	return p.send(ctx, command{kind: cmdMagnitude, value: band})
}

// SetDepth changes the depth band and re-renders loaded data.
func (p *Pipeline) SetDepth(ctx context.Context, band string) error {
	return p.send(ctx, command{kind: cmdDepth, value: band})
}

// SetLayerVisible shows or hides an overlay layer, as the map's layer
// control would.
func (p *Pipeline) SetLayerVisible(ctx context.Context, layer string, visible bool) error {
	return p.send(ctx, command{kind: cmdVisibility, value: layer, visible: visible})
}

func (p *Pipeline) send(ctx context.Context, cmd command) error {
	cmd.reply = make(chan error, 1)
	select {
	case p.cmds <- cmd:
	case <-p.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// bootstrap fills the period menu, starts the overlay fetches, and issues
// the first event fetch.
func (p *Pipeline) bootstrap(ctx context.Context) {
	labels := p.opts.Periods.Labels()
	if err := p.menus.Repopulate(menu.SelectTimePeriod, labels[1:]); err != nil {
		p.logger.Warn("populate period menu failed", "error", err)
	}
	p.menus.Choose(menu.SelectTimePeriod, p.sel.Period)

	if p.opts.Variant.HasBoundaries() {
		for _, o := range p.opts.Overlays {
			go p.fetchOverlay(ctx, o)
		}
	}

	p.startFetch(ctx)
}

func (p *Pipeline) handle(ctx context.Context, cmd command) error {
	switch cmd.kind {
	case cmdPeriod:
		return p.changePeriod(ctx, cmd.value)
	case cmdMagnitude:
		return p.changeBand(ctx, "magnitude", menu.SelectMagnitude, cmd.value, p.sel.WithMagnitude)
	case cmdDepth:
		return p.changeBand(ctx, "depth", menu.SelectDepth, cmd.value, p.sel.WithDepth)
	case cmdVisibility:
		return p.toggleLayer(cmd.value, cmd.visible)
	default:
		return fmt.Errorf("unknown command %d", cmd.kind)
	}
}

func (p *Pipeline) changePeriod(ctx context.Context, label string) error {
	if _, err := p.opts.Periods.Lookup(label); err != nil {
		p.metrics.SelectionChanges.WithLabelValues("period", "rejected").Inc()
		return err
	}
	p.metrics.SelectionChanges.WithLabelValues("period", "applied").Inc()
	p.sel = p.sel.WithPeriod(label)
	p.feed = nil
	p.menus.Choose(menu.SelectTimePeriod, label)
	p.logger.Info("period changed", "period", label)
	p.startFetch(ctx)
	return nil
}

func (p *Pipeline) changeBand(ctx context.Context, dim, selectID, band string, with func(string) (domain.Selection, error)) error {
	sel, err := with(band)
	if err != nil {
		p.metrics.SelectionChanges.WithLabelValues(dim, "rejected").Inc()
		return err
	}
	p.metrics.SelectionChanges.WithLabelValues(dim, "applied").Inc()
	p.sel = sel
	if p.feed != nil {
		p.syncMenus()
	} else if !p.menus.Choose(selectID, band) {
		p.logger.Debug("band menu catches up when the feed loads", "select", selectID, "band", band)
	}

	switch {
	case p.feed != nil:
		p.renderSelection()
	case p.pending != nil:
		// Applied when the in-flight fetch lands.
		p.publish()
	default:
		p.startFetch(ctx)
	}
	return nil
}

func (p *Pipeline) toggleLayer(layer string, visible bool) error {
	if !slices.Contains(p.opts.Variant.Layers(), layer) {
		return fmt.Errorf("layer %q: %w", layer, ErrUnknownLayer)
	}
	if visible {
		p.layers.AddToMap(layer)
	} else {
		p.layers.RemoveFromMap(layer)
	}
	p.logger.Debug("layer visibility changed", "layer", layer, "visible", visible)
	return nil
}

// startFetch issues a tagged fetch for the current period. Any earlier
// fetch still in flight becomes stale.
func (p *Pipeline) startFetch(ctx context.Context) {
	period, err := p.opts.Periods.Lookup(p.sel.Period)
	if err != nil {
		p.logger.Error("no feed for period", "period", p.sel.Period, "error", err)
		return
	}
	p.seq++
	tag := fetchTag{period: period.Label, seq: p.seq}
	p.pending = &tag
	p.publish()

	go func() {
		feed, err := p.events.FetchEvents(ctx, period)
		select {
		case p.feeds <- fetchResult{tag: tag, feed: feed, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (p *Pipeline) applyFeed(res fetchResult) {
	if p.pending == nil || res.tag != *p.pending {
		p.stale++
		p.metrics.StaleFetches.Inc()
		p.logger.Debug("discarding stale fetch", "period", res.tag.period, "seq", res.tag.seq)
		p.publish()
		return
	}
	p.pending = nil

	if res.err != nil {
		p.logger.Warn("event fetch failed", "period", res.tag.period, "error", res.err)
		p.publish()
		return
	}

	feed := res.feed
	p.feed = &feed
	p.metrics.LoadedEvents.Set(float64(len(feed.Events)))
	p.logger.Info("events loaded", "period", feed.Period.Label, "events", len(feed.Events), "rejected", feed.Rejected)

	p.syncMenus()
	p.renderSelection()
}

// syncMenus refills the band menus with the bands present in the loaded
// feed and re-selects the current bands. A selected band the feed lacks is
// kept as an option so the menu always shows the active filter.
func (p *Pipeline) syncMenus() {
	for _, m := range []struct {
		id    string
		table domain.CategoryTable
		band  string
	}{
		{menu.SelectMagnitude, domain.MagnitudeTable, p.sel.Magnitude},
		{menu.SelectDepth, domain.DepthTable, p.sel.Depth},
	} {
		if err := p.menus.Repopulate(m.id, menuBands(p.feed.Events, m.table, m.band)); err != nil {
			p.logger.Warn("populate band menu failed", "select", m.id, "error", err)
			continue
		}
		if !p.menus.Choose(m.id, m.band) {
			p.logger.Warn("band menu out of sync", "select", m.id, "band", m.band)
		}
	}
}

// menuBands is AvailableBands plus the selected band, in table order.
func menuBands(events []domain.Event, t domain.CategoryTable, selected string) []string {
	available := domain.AvailableBands(events, t)
	if selected == t.All.Name || slices.Contains(available, selected) {
		return available
	}
	bands := make([]string, 0, len(available)+1)
	for _, b := range t.Bands {
		if b.Name == selected || slices.Contains(available, b.Name) {
			bands = append(bands, b.Name)
		}
	}
	return bands
}

func (p *Pipeline) renderSelection() {
	filtered := domain.FilterSelection(p.feed.Events, p.sel)
	for _, mode := range p.opts.Variant.Modes() {
		res := p.renderer.Render(filtered, mode)
		p.metrics.RenderPasses.WithLabelValues(res.Layer).Inc()
		p.metrics.LayerPrimitives.WithLabelValues(res.Layer).Set(float64(res.Primitives))
	}
	p.filtered = len(filtered)
	p.metrics.FilteredEvents.Set(float64(len(filtered)))
	p.ready.Store(true)
	p.publish()

	p.logger.Debug("rendered selection",
		"period", p.sel.Period,
		"magnitude", p.sel.Magnitude,
		"depth", p.sel.Depth,
		"filtered", len(filtered),
	)
	p.enqueueRecord(domain.RenderRecord{
		Selection:  p.sel,
		Variant:    string(p.opts.Variant),
		FeedURL:    p.feed.Period.URL,
		Loaded:     len(p.feed.Events),
		Filtered:   len(filtered),
		Rejected:   p.feed.Rejected,
		FetchedAt:  p.feed.FetchedAt,
		RenderedAt: domain.Now(),
	})
}

func (p *Pipeline) fetchOverlay(ctx context.Context, o Overlay) {
	lines, err := p.bounds.FetchBoundaries(ctx, o.Source, o.URL)
	select {
	case p.overlays <- overlayResult{overlay: o, lines: lines, err: err}:
	case <-ctx.Done():
	}
}

func (p *Pipeline) applyOverlay(res overlayResult) {
	if res.err != nil {
		p.logger.Warn("boundary fetch failed", "layer", res.overlay.Layer, "url", res.overlay.URL, "error", res.err)
		return
	}
	r := p.renderer.RenderBoundaries(res.overlay.Layer, res.lines, res.overlay.Style)
	p.metrics.RenderPasses.WithLabelValues(r.Layer).Inc()
	p.metrics.LayerPrimitives.WithLabelValues(r.Layer).Set(float64(r.Primitives))
	p.logger.Info("boundaries loaded", "layer", r.Layer, "lines", r.Primitives)
}

func (p *Pipeline) enqueueRecord(rec domain.RenderRecord) {
	if p.journal == nil {
		return
	}
	select {
	case p.records <- rec:
	default:
		p.metrics.JournalErrors.Inc()
		p.logger.Warn("journal queue full, dropping render record")
	}
}

func (p *Pipeline) drainJournal(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case rec := <-p.records:
			if err := p.journal.Record(ctx, rec); err != nil {
				if ctx.Err() != nil {
					return
				}
				p.metrics.JournalErrors.Inc()
				p.logger.Warn("journal write failed", "error", err)
				continue
			}
			p.metrics.JournalWrites.Inc()
		}
	}
}

// publish stores a copy of the loop-owned state for concurrent readers.
func (p *Pipeline) publish() {
	s := &State{
		Selection: p.sel,
		Variant:   string(p.opts.Variant),
		Loading:   p.pending != nil,
		Filtered:  p.filtered,
		Stale:     p.stale,
	}
	if p.feed != nil {
		s.LoadedPeriod = p.feed.Period.Label
		s.Loaded = len(p.feed.Events)
		s.Rejected = p.feed.Rejected
		s.FetchedAt = p.feed.FetchedAt
	} else {
		s.Filtered = 0
	}
	p.state.Store(s)
}
