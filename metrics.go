package main

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zephyrtronium/slidewin/metrics"
)

// metrics configuration
func newMetrics() *metrics.Metrics {
	return &metrics.Metrics{
		ScansCount: metrics.NewPromCounter(
			prometheus.NewCounter(
				prometheus.CounterOpts{
					Namespace: "slidewin",
					Subsystem: "scan",
					Name:      "scans",
					Help:      "Number of scans run.",
				},
			),
		),
		WindowsEmitted: metrics.NewPromCounter(
			prometheus.NewCounter(
				prometheus.CounterOpts{
					Namespace: "slidewin",
					Subsystem: "scan",
					Name:      "windows",
					Help:      "Number of window extrema emitted.",
				},
			),
		),
		DequePushes: metrics.NewPromCounter(
			prometheus.NewCounter(
				prometheus.CounterOpts{
					Namespace: "slidewin",
					Subsystem: "scan",
					Name:      "deque_pushes",
					Help:      "Number of indices admitted to the monotonic deque.",
				},
			),
		),
		DequePops: metrics.NewPromCounter(
			prometheus.NewCounter(
				prometheus.CounterOpts{
					Namespace: "slidewin",
					Subsystem: "scan",
					Name:      "deque_pops",
					Help:      "Number of indices evicted from the monotonic deque. Never exceeds pushes.",
				},
			),
		),
		ScanLatency: metrics.NewPromObserverVec(
			prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Buckets:   []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
					Namespace: "slidewin",
					Subsystem: "scan",
					Name:      "latency",
					Help:      "How long scans take in seconds.",
				},
				[]string{"mode"},
			),
		),
		WSRequests: metrics.NewPromCounter(
			prometheus.NewCounter(
				prometheus.CounterOpts{
					Namespace: "slidewin",
					Subsystem: "ws",
					Name:      "requests",
					Help:      "Number of request frames received over WebSocket.",
				},
			),
		),
	}
}
