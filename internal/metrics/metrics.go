// Package metrics declares the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IndexBuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopwiz_index_builds_total",
		Help: "Number of similarity index builds.",
	})

	IndexBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shopwiz_index_build_duration_seconds",
		Help:    "Time spent vectorising the catalog.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	})

	RecommendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shopwiz_recommend_duration_seconds",
		Help:    "Time spent ranking recommendations, index lookup included.",
		Buckets: prometheus.DefBuckets,
	})

	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopwiz_recommendation_cache_requests_total",
		Help: "Recommendation cache lookups by result.",
	}, []string{"result"})

	CatalogItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shopwiz_catalog_items",
		Help: "Items in the currently loaded catalog.",
	})
)
