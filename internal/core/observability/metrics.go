// Package observability holds the Prometheus collectors recorded across the
// request path. Collectors are always usable; Init exposes them on a registry.
package observability

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	representationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ldapi_representations_total",
			Help: "Rendered representations by resource, profile and media type.",
		},
		[]string{"resource", "profile", "mediatype"},
	)

	upstreamLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_latency_seconds",
			Help:    "Latency of upstream calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"upstream"},
	)

	catalogBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_builds_total",
			Help: "Catalog cache builds by origin (snapshot, source) or error.",
		},
		[]string{"origin"},
	)

	filterCacheResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filter_cache_results_total",
			Help: "Filter result cache lookups by tier and outcome.",
		},
		[]string{"tier", "outcome"},
	)

	redisOpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Duration of Redis operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"op"},
	)

	cacheOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_op_total",
			Help: "Redis operations by op and result.",
		},
		[]string{"op", "result"},
	)

	invalidationEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invalidation_events_total",
			Help: "Invalidation events by outcome (applied, duplicate, invalid, error).",
		},
		[]string{"outcome"},
	)

	kafkaConsumerErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_consumer_errors_total",
			Help: "Kafka consumer errors by kind.",
		},
		[]string{"kind"},
	)
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		httpRequestsTotal,
		httpRequestDurationSeconds,
		representationsTotal,
		upstreamLatencySeconds,
		catalogBuildsTotal,
		filterCacheResults,
		redisOpDurationSeconds,
		cacheOpsTotal,
		invalidationEvents,
		kafkaConsumerErrors,
	}
}

// Init registers every collector on reg. Re-registration is ignored so tests
// can call it once per provider.
func Init(reg prometheus.Registerer, enabled bool) {
	if !enabled || reg == nil {
		return
	}
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			panic(err)
		}
	}
}

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func IncRepresentation(resource, profile, mediaType string) {
	representationsTotal.WithLabelValues(resource, profile, mediaType).Inc()
}

func ObserveUpstreamLatency(upstream string, durationSeconds float64) {
	upstreamLatencySeconds.WithLabelValues(upstream).Observe(durationSeconds)
}

func IncCatalogBuild(origin string) {
	catalogBuildsTotal.WithLabelValues(origin).Inc()
}

func IncFilterCache(tier string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	filterCacheResults.WithLabelValues(tier, outcome).Inc()
}

func ObserveCacheOp(op string, err error, durationSeconds float64) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	cacheOpsTotal.WithLabelValues(op, result).Inc()
	redisOpDurationSeconds.WithLabelValues(op).Observe(durationSeconds)
}

func IncInvalidation(outcome string) {
	invalidationEvents.WithLabelValues(outcome).Inc()
}

func IncKafkaConsumerError(kind string) {
	kafkaConsumerErrors.WithLabelValues(kind).Inc()
}
