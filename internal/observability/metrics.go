package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// loss adjustment pipeline.
type Metrics struct {
	MessagesConsumed prometheus.Counter
	MessagesProduced prometheus.Counter
	AdjustErrors     *prometheus.CounterVec // labels: reason={parse,country_not_found,missing_data,gdp_fetch,other}
	PipelineRunning  prometheus.Gauge

	// Adjustment metrics.
	CountriesAdjusted prometheus.Counter
	EventsRescaled    prometheus.Counter
	DamageFactor      prometheus.Histogram

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// GDP fallback metrics.
	GDPFetchRequests *prometheus.CounterVec // labels: outcome={success,error}
	GDPFetchEnabled  prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.MessagesConsumed,
		m.MessagesProduced,
		m.AdjustErrors,
		m.PipelineRunning,
		m.CountriesAdjusted,
		m.EventsRescaled,
		m.DamageFactor,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.GDPFetchRequests,
		m.GDPFetchEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "country_risk",
			Name:      "messages_consumed_total",
			Help:      "Total risk results read from the source topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "country_risk",
			Name:      "messages_produced_total",
			Help:      "Total adjusted results written to the sink topic.",
		}),
		AdjustErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "country_risk",
			Name:      "adjust_errors_total",
			Help:      "Adjustment failures by reason.",
		}, []string{"reason"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "country_risk",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		CountriesAdjusted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "country_risk",
			Name:      "countries_adjusted_total",
			Help:      "Total countries successfully adjusted.",
		}),
		EventsRescaled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "country_risk",
			Name:      "events_rescaled_total",
			Help:      "Total event damages rescaled into economic loss.",
		}),
		DamageFactor: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "country_risk",
			Name:      "damage_factor",
			Help:      "Distribution of computed country damage factors.",
			Buckets:   []float64{0, 0.5, 1, 1.5, 2, 2.5, 3, 4, 5},
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "country_risk",
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "country_risk",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		GDPFetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "country_risk",
			Name:      "gdp_fetch_requests_total",
			Help:      "World Bank GDP fallback requests by outcome.",
		}, []string{"outcome"}),
		GDPFetchEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "country_risk",
			Name:      "gdp_fetch_enabled",
			Help:      "1 when the World Bank GDP fallback is enabled, 0 otherwise.",
		}),
	}
}
