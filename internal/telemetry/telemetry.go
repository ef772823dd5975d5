// Package telemetry exposes the cache and driver counters as Prometheus
// metrics, mirroring pkg/metrics/metrics.go's gauge/counter registration
// style: package-level collectors plus an explicit update function, rather
// than a pull callback, since a compile/count run is a single bounded
// operation and not a long-lived reconciler.
package telemetry

import "github.com/prometheus/client_golang/prometheus"

// CacheStats is a point-in-time snapshot of an internal/cache.Cache,
// mirroring the fields cache.c's print_vtree_cache_stats reports, without
// that function's stdout-printing (see DESIGN.md).
type CacheStats struct {
	Count   int
	Memory  int
	Hits    int
	Misses  int
	Lookups int
}

// HitRate returns Hits/Lookups, or 0 when there have been no lookups.
func (s CacheStats) HitRate() float64 {
	if s.Lookups == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Lookups)
}

// To add new metrics:
// 1. Register new metrics in Register() below.
// 2. Update them in UpdateCacheMetrics, or, for a counter like
//    CompileNodeCount, increment it directly from the package that owns
//    the event.
var (
	cacheEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dnnfc_cache_entries",
			Help: "Live entries in a component cache",
		},
		[]string{"cache"},
	)

	cacheMemoryBytes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dnnfc_cache_memory_bytes",
			Help: "Estimated memory held by a component cache's live entries",
		},
		[]string{"cache"},
	)

	cacheHits = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dnnfc_cache_hits",
			Help: "Cumulative cache hits",
		},
		[]string{"cache"},
	)

	cacheMisses = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dnnfc_cache_misses",
			Help: "Cumulative cache misses",
		},
		[]string{"cache"},
	)

	// exported since it's not handled by UpdateCacheMetrics
	CompileNodeCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dnnfc_compile_nodes",
			Help: "Monotonic count of NNF nodes produced across all compiles in this process",
		},
	)
)

// Register registers every collector with reg. Library packages
// (internal/cache, internal/compiler) never register themselves; only the
// CLI does, mirroring the teacher's Register() being called from cmd/olm,
// not from pkg/controller.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(cacheEntries)
	reg.MustRegister(cacheMemoryBytes)
	reg.MustRegister(cacheHits)
	reg.MustRegister(cacheMisses)
	reg.MustRegister(CompileNodeCount)
}

// UpdateCacheMetrics sets the cache gauges for the cache identified by
// label (e.g. "nnf", "count") to stats's values.
func UpdateCacheMetrics(label string, stats CacheStats) {
	cacheEntries.WithLabelValues(label).Set(float64(stats.Count))
	cacheMemoryBytes.WithLabelValues(label).Set(float64(stats.Memory))
	cacheHits.WithLabelValues(label).Set(float64(stats.Hits))
	cacheMisses.WithLabelValues(label).Set(float64(stats.Misses))
}
