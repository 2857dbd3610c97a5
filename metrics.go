package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// dedicated registry, the default one drags in go runtime collectors
// configured elsewhere
var (
	registry = prometheus.NewRegistry()
	factory  = promauto.With(registry)

	requestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "siting",
		Name:      "requests_total",
		Help:      "API requests by endpoint.",
	}, []string{"endpoint"})
	matrixBuildSeconds = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: "siting",
		Name:      "matrix_build_seconds",
		Help:      "Travel time matrix build duration.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
	})
	rebuildsTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "siting",
		Name:      "rebuilds_total",
		Help:      "Matrix rebuilds triggered by cost updates.",
	})
)

func metricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
