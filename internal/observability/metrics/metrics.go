// Package metrics mirrors the cube engine's cache and query counters into
// Prometheus gauges/counters for the demo server's /metrics endpoint. The
// core engine itself never imports prometheus; callers pull the counters
// via Cache.Stats and push them here after every request.
package metrics

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	domain "cubeengine/internal/core/domain/cube"
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cube_cache_hits_total",
		Help: "Total number of cube query cache hits.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cube_cache_misses_total",
		Help: "Total number of cube query cache misses.",
	})
	cacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cube_cache_size",
		Help: "Current number of entries held in the cube query cache.",
	})
	queryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cube_query_duration_seconds",
			Help:    "Cube query execution duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"cube", "strategy"},
	)
)

// lastHits/lastMisses track the previous snapshot so ObserveCacheStats can
// emit only the delta as counter increments; Prometheus counters must never
// be set backward.
var (
	snapshotMu sync.Mutex
	lastHits   int
	lastMisses int
)

// ObserveCacheStats mirrors a CacheStats snapshot into the registry. It is
// safe to call concurrently after every Execute call.
func ObserveCacheStats(stats domain.CacheStats) {
	snapshotMu.Lock()
	defer snapshotMu.Unlock()
	if stats.Hits > lastHits {
		cacheHitsTotal.Add(float64(stats.Hits - lastHits))
		lastHits = stats.Hits
	}
	if stats.Misses > lastMisses {
		cacheMissesTotal.Add(float64(stats.Misses - lastMisses))
		lastMisses = stats.Misses
	}
	cacheSize.Set(float64(stats.Size))
}

// ObserveQuery records one query's execution time under its cube and
// chosen planner strategy.
func ObserveQuery(cube, strategy string, seconds float64) {
	queryDuration.WithLabelValues(cube, strategy).Observe(seconds)
}

// Handler returns the gin handler serving Prometheus's text exposition
// format at /metrics.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
