// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Refresh pipeline
	RefreshTotal    *prometheus.CounterVec
	RefreshDuration prometheus.Histogram
	PoolsIngested   prometheus.Gauge
	PoolsDropped    prometheus.Counter
	StaleRefreshes  prometheus.Counter

	// Detection
	OpportunitiesDetected prometheus.Gauge

	// Alerting
	AlertsEvaluated prometheus.Counter
	AlertsTriggered prometheus.Counter
	ActiveAlerts    prometheus.Gauge

	// Feed
	TransactionsIngested prometheus.Counter
	FeedErrors           *prometheus.CounterVec

	// Health
	LastSuccessfulRefresh prometheus.Gauge
}

// NewMetrics creates a Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "pool_radar"
	}

	return &Metrics{
		RefreshTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "runs_total",
			Help:      "Total refresh cycles by outcome",
		}, []string{"outcome"}),
		RefreshDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "duration_seconds",
			Help:      "Refresh cycle duration",
			Buckets:   prometheus.DefBuckets,
		}),
		PoolsIngested: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "pools_ingested",
			Help:      "Pools in the latest published snapshot",
		}),
		PoolsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "pools_dropped_total",
			Help:      "Malformed pool records dropped during normalization",
		}),
		StaleRefreshes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "stale_total",
			Help:      "Refresh results discarded because a newer one published first",
		}),
		OpportunitiesDetected: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "detector",
			Name:      "opportunities",
			Help:      "Opportunities in the latest ranked list",
		}),
		AlertsEvaluated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerting",
			Name:      "evaluations_total",
			Help:      "Alert evaluation cycles",
		}),
		AlertsTriggered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerting",
			Name:      "triggered_total",
			Help:      "Alerts triggered",
		}),
		ActiveAlerts: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "alerting",
			Name:      "active_rules",
			Help:      "Enabled alert rules",
		}),
		TransactionsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "transactions_total",
			Help:      "Pool transactions received from the live feed",
		}),
		FeedErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "errors_total",
			Help:      "Feed errors by source",
		}, []string{"source"}),
		LastSuccessfulRefresh: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_refresh_timestamp_seconds",
			Help:      "Unix time of the last published refresh",
		}),
	}
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
