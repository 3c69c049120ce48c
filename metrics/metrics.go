// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "petitions"

var (
	// GuardDecisions counts guard outcomes.
	// Labels: operation (create_petition, add_supporter, ...), verdict (allow, conflict, ...)
	GuardDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Guard decisions by operation and verdict",
	}, []string{"operation", "verdict"})

	// TxRetries counts transactions re-run after a serialization failure.
	TxRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "db",
		Name:      "tx_retries_total",
		Help:      "Transactions retried after a serialization failure",
	})

	// SearchResults tracks how many petitions match a search before paging.
	SearchResults = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "search",
		Name:      "matches",
		Help:      "Petitions matching a search before pagination",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
	})

	// httpRequests counts handled requests.
	// Labels: method, status
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method and status code",
	}, []string{"method", "status"})

	// httpDuration measures request latency.
	// Labels: method
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	// imageBytes counts bytes written to the image store.
	imageBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "images",
		Name:      "written_bytes_total",
		Help:      "Bytes written to the image store",
	})
)

// ObserveRequest records one handled HTTP request.
func ObserveRequest(method string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// RecordDecision counts one guard outcome.
func RecordDecision(operation, verdict string) {
	GuardDecisions.WithLabelValues(operation, verdict).Inc()
}

// AddImageBytes records a stored image's size.
func AddImageBytes(n int) {
	imageBytes.Add(float64(n))
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
