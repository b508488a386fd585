package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quake_map"

// Metrics holds the Prometheus counters, histograms, and gauges for the map pipeline.
type Metrics struct {
	// Feed fetch metrics.
	FetchRequests    *prometheus.CounterVec   // labels: source={events,plates,orogens}, outcome={success,error}
	FetchDuration    *prometheus.HistogramVec // labels: source
	RejectedFeatures *prometheus.CounterVec   // labels: source, reason
	StaleFetches     prometheus.Counter

	// Render metrics.
	RenderPasses    *prometheus.CounterVec // labels: layer
	LayerPrimitives *prometheus.GaugeVec   // labels: layer
	FilteredEvents  prometheus.Gauge
	LoadedEvents    prometheus.Gauge

	// Selection metrics.
	SelectionChanges *prometheus.CounterVec // labels: dimension={period,magnitude,depth}, outcome={applied,rejected}

	// Journal metrics.
	JournalWrites prometheus.Counter
	JournalErrors prometheus.Counter

	PipelineRunning prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchDuration,
		m.RejectedFeatures,
		m.StaleFetches,
		m.RenderPasses,
		m.LayerPrimitives,
		m.FilteredEvents,
		m.LoadedEvents,
		m.SelectionChanges,
		m.JournalWrites,
		m.JournalErrors,
		m.PipelineRunning,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Feed fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Feed fetch duration in seconds, including decoding.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		RejectedFeatures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_features_total",
			Help:      "Feed features dropped at decode time by source and reason.",
		}, []string{"source", "reason"}),
		StaleFetches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_fetches_total",
			Help:      "Fetch results discarded because a newer fetch superseded them.",
		}),
		RenderPasses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_passes_total",
			Help:      "Layer redraws by layer group.",
		}, []string{"layer"}),
		LayerPrimitives: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "layer_primitives",
			Help:      "Primitives currently drawn per layer group.",
		}, []string{"layer"}),
		FilteredEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "filtered_events",
			Help:      "Events passing the current magnitude and depth selection.",
		}),
		LoadedEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "loaded_events",
			Help:      "Events in the currently loaded feed.",
		}),
		SelectionChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selection_changes_total",
			Help:      "User selection changes by dimension and outcome.",
		}, []string{"dimension", "outcome"}),
		JournalWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "journal_writes_total",
			Help:      "Render records written to the journal topic.",
		}),
		JournalErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "journal_errors_total",
			Help:      "Failed journal writes.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline loop is active, 0 when shut down.",
		}),
	}
}
