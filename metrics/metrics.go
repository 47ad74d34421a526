// Package metrics provides Prometheus metrics for filesystem operations and
// event delivery.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// File operation metrics
	FileOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "theia_fs_operations_total",
			Help: "Total number of file operations by outcome",
		},
		[]string{"operation", "result"},
	)

	FileOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "theia_fs_operation_duration_seconds",
			Help:    "File operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Change event metrics
	ChangeEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "theia_fs_change_events_total",
			Help: "Total number of file change records delivered",
		},
		[]string{"type"},
	)

	ChangeBatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "theia_fs_change_batches_total",
			Help: "Total number of change batches delivered",
		},
	)

	// Provider registry metrics
	RegisteredProviders = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "theia_fs_registered_providers",
			Help: "Number of currently registered providers",
		},
	)

	WatchSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "theia_fs_watch_subscriptions",
			Help: "Number of live watch registrations",
		},
	)
)
