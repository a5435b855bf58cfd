package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ai_search"

var (
	// BackendRequests counts backend calls by outcome (ok, empty, error).
	BackendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "backend",
		Name:      "requests_total",
		Help:      "Search backend calls by backend and outcome.",
	}, []string{"backend", "outcome"})

	BackendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "backend",
		Name:      "request_duration_seconds",
		Help:      "Search backend call latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"backend"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Search cache lookups by result (hit, miss).",
	}, []string{"result"})

	StreamEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "stream",
		Name:      "events_total",
		Help:      "Events written to client streams by type.",
	}, []string{"type"})

	StreamTransportFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "stream",
		Name:      "transport_failures_total",
		Help:      "Writes that failed because the client stream broke.",
	})

	LedgerWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "writes_total",
		Help:      "Conversation ledger writes by operation and outcome.",
	}, []string{"operation", "outcome"})
)
