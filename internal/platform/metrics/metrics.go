// Package metrics holds the Prometheus collectors for the service.
// Collectors are registered against the default registry at init.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "matchday"

var (
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Cache lookups by cache name and result (hit, miss).",
	}, []string{"cache", "result"})

	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Requests sent to the fixtures provider by outcome.",
	}, []string{"provider", "outcome"})

	UpstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Latency of fixtures provider requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"provider"})

	CircuitState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "circuit_open",
		Help:      "1 while the named circuit breaker is open or half-open.",
	}, []string{"breaker"})

	StreamResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stream_resolutions_total",
		Help:      "Stream lookups per fixture by result (found, missing).",
	}, []string{"result"})
)

func ObserveCache(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(cache, result).Inc()
}

func ObserveUpstream(provider, outcome string, took time.Duration) {
	UpstreamRequests.WithLabelValues(provider, outcome).Inc()
	UpstreamLatency.WithLabelValues(provider).Observe(took.Seconds())
}

func ObserveStream(found bool) {
	if found {
		StreamResolutions.WithLabelValues("found").Inc()
		return
	}
	StreamResolutions.WithLabelValues("missing").Inc()
}

func SetCircuitOpen(breaker string, open bool) {
	v := 0.0
	if open {
		v = 1
	}
	CircuitState.WithLabelValues(breaker).Set(v)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
