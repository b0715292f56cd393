// Package metrics defines the Prometheus collectors of the Ekadashi engine
// and its HTTP API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var namespace = "ekadashi"

var (
	// ScansTotal counts calendar scans partitioned by outcome (ok, error).
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scanner",
		Name:      "scans_total",
		Help:      "Number of date-range scans partitioned by result",
	}, []string{"result"})

	// ScanDuration stores the processing time of every scan
	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "scanner",
		Name:      "scan_duration_seconds",
		Help:      "Time taken by a date-range scan",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	})

	// EventsEmittedTotal counts observed Ekadashis partitioned by the rule
	// that qualified them
	EventsEmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scanner",
		Name:      "events_emitted_total",
		Help:      "Number of Ekadashi events emitted partitioned by check type",
	}, []string{"check_type"})

	// DaysSupersededTotal counts qualifying days dropped for the following day
	DaysSupersededTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scanner",
		Name:      "days_superseded_total",
		Help:      "Qualifying days dropped in favour of the following qualifying day",
	})

	// DaysExcludedTotal counts dates skipped because the Sun did not rise or set
	DaysExcludedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scanner",
		Name:      "days_excluded_total",
		Help:      "Dates excluded from a scan for lack of sunrise or sunset",
	})

	// HTTPRequestsTotal counts API requests partitioned by route and status
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "http_requests_total",
		Help:      "Number of HTTP requests partitioned by route pattern and status code",
	}, []string{"route", "status"})

	// HTTPRequestDuration stores the processing time per route
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request processing time partitioned by route pattern",
	}, []string{"route"})
)
