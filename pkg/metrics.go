package cache

// metrics.go is a thin abstraction over Prometheus so the cache can be used
// with or without metrics, following the teacher's pkg/metrics.go pattern:
// a metricsSink interface, a no-op default, and a Prometheus-backed
// implementation enabled via WithMetrics. There is no per-shard dimension
// here — a Cache is a single arena, not a sharded collection — so the
// metrics carry no labels.
//
// ┌────────────────────────────┬───────┐
// │ Metric                     │ Type  │
// ├────────────────────────────┼───────┤
// │ arena_cache_hits_total     │ Ctr   │
// │ arena_cache_misses_total   │ Ctr   │
// │ arena_cache_rotations_total│ Ctr   │
// │ arena_cache_resizes_total  │ Ctr   │
// │ arena_cache_motion_bytes   │ Ctr   │
// │ arena_cache_bytes          │ Gge   │
// └────────────────────────────┴───────┘
//
// © 2025 arena-cache authors. MIT License.

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metricsSink is an internal interface abstracting the concrete backend
// (Prometheus vs noop). Not exposed outside the package.
type metricsSink interface {
	incHit()
	incMiss()
	incRotation()
	incResize()
	addMotion(delta uint64)
	setArenaBytes(v uint32)
}

type noopMetrics struct{}

func (noopMetrics) incHit()              {}
func (noopMetrics) incMiss()             {}
func (noopMetrics) incRotation()         {}
func (noopMetrics) incResize()           {}
func (noopMetrics) addMotion(uint64)     {}
func (noopMetrics) setArenaBytes(uint32) {}

type promMetrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	rotations prometheus.Counter
	resizes   prometheus.Counter
	motion    prometheus.Counter
	bytes     prometheus.Gauge
}

func newPromMetrics(reg *prometheus.Registry) *promMetrics {
	pm := &promMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arena_cache", Name: "hits_total", Help: "Number of cache hits.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arena_cache", Name: "misses_total", Help: "Number of cache misses.",
		}),
		rotations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arena_cache", Name: "rotations_total", Help: "Number of plain (non-resizing) arena rotations.",
		}),
		resizes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arena_cache", Name: "resizes_total", Help: "Number of cycle-controller-driven resizes.",
		}),
		motion: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arena_cache", Name: "motion_bytes", Help: "Cumulative bytes written to the arena over the cache's lifetime.",
		}),
		bytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "arena_cache", Name: "bytes", Help: "Current arena size in bytes.",
		}),
	}
	reg.MustRegister(pm.hits, pm.misses, pm.rotations, pm.resizes, pm.motion, pm.bytes)
	return pm
}

func (m *promMetrics) incHit()      { m.hits.Inc() }
func (m *promMetrics) incMiss()     { m.misses.Inc() }
func (m *promMetrics) incRotation() { m.rotations.Inc() }
func (m *promMetrics) incResize()   { m.resizes.Inc() }
func (m *promMetrics) addMotion(delta uint64) {
	m.motion.Add(float64(delta))
}
func (m *promMetrics) setArenaBytes(v uint32) { m.bytes.Set(float64(v)) }

func newMetricsSink(reg *prometheus.Registry) metricsSink {
	if reg == nil {
		return noopMetrics{}
	}
	return newPromMetrics(reg)
}
