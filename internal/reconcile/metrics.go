package reconcile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Skip reasons recorded in Metrics.SkippedEvents.
const (
	skipPoolMissing     = "pool_missing"
	skipPositionMissing = "position_missing"
	skipPoolExists      = "pool_exists"
	skipPositionExists  = "position_exists"
	skipFailedTx        = "failed_tx"
	skipNoCorrelated    = "no_correlated_event"
)

// Metrics holds the reconciler's Prometheus collectors.
type Metrics struct {
	EpochsProcessed     prometheus.Counter
	EpochsFailed        prometheus.Counter
	BlocksProcessed     prometheus.Counter
	InstructionsHandled *prometheus.CounterVec
	EventsHandled       *prometheus.CounterVec
	SkippedEvents       *prometheus.CounterVec
	FlushDuration       prometheus.Histogram
	CommittedHeight     prometheus.Gauge
}

// NewMetrics registers the collectors with reg. A nil reg uses a private registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Metrics{
		EpochsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "clmm",
			Name:      "epochs_processed_total",
			Help:      "Epochs reconciled and flushed.",
		}),
		EpochsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "clmm",
			Name:      "epochs_failed_total",
			Help:      "Epochs aborted before flush.",
		}),
		BlocksProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "clmm",
			Name:      "blocks_processed_total",
			Help:      "Blocks reconciled in flushed epochs.",
		}),
		InstructionsHandled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clmm",
			Name:      "instructions_handled_total",
			Help:      "Program instructions dispatched, by kind.",
		}, []string{"kind"}),
		EventsHandled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clmm",
			Name:      "events_handled_total",
			Help:      "Program log events dispatched, by kind.",
		}, []string{"kind"}),
		SkippedEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clmm",
			Name:      "events_skipped_total",
			Help:      "Instructions and events skipped, by reason.",
		}, []string{"reason"}),
		FlushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clmm",
			Name:      "flush_duration_seconds",
			Help:      "Time spent flushing an epoch to the store.",
			Buckets:   prometheus.DefBuckets,
		}),
		CommittedHeight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "clmm",
			Name:      "committed_height",
			Help:      "Last block height committed to the store.",
		}),
	}
}
