// Package metrics exposes each shard's dashboard-facing snapshot and the
// process-wide Prometheus registry the (externally owned) HTTP dashboard
// would scrape.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Snapshot is a read-only point-in-time view of one shard's health,
// published by the executor between work items.
type Snapshot struct {
	ShardID           int
	KeyCount          int64
	ApproxMemoryBytes int64
	CommandsProcessed int64
	LastAOFOffset     int64
	Alive             bool
}

// Publisher holds the latest Snapshot for one shard behind a lock-free
// pointer swap, so the dashboard never contends with the executor.
type Publisher struct {
	current atomic.Pointer[Snapshot]
}

func (p *Publisher) Publish(s Snapshot) {
	p.current.Store(&s)
}

// Load returns the most recently published snapshot, or nil if none has
// been published yet.
func (p *Publisher) Load() *Snapshot {
	return p.current.Load()
}

// Registry bundles the Prometheus collectors updated alongside each
// Snapshot publish. Server exposes its Gatherer at /metrics; a dashboard
// UI is not part of this module.
type Registry struct {
	Registerer        prometheus.Registerer
	Gatherer          prometheus.Gatherer
	CommandsProcessed *prometheus.CounterVec
	KeyCount          *prometheus.GaugeVec
	MemoryBytes       *prometheus.GaugeVec
	AOFOffset         *prometheus.GaugeVec
}

func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		Registerer: reg,
		Gatherer:   reg,
		CommandsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ferrumdb",
			Name:      "commands_processed_total",
			Help:      "Commands executed by a shard since startup, excluding AOF replay.",
		}, []string{"shard"}),
		KeyCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ferrumdb",
			Name:      "keys",
			Help:      "Live key count per shard.",
		}, []string{"shard"}),
		MemoryBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ferrumdb",
			Name:      "approx_memory_bytes",
			Help:      "Approximate key/value memory usage per shard.",
		}, []string{"shard"}),
		AOFOffset: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ferrumdb",
			Name:      "aof_offset_bytes",
			Help:      "Current AOF file size per shard.",
		}, []string{"shard"}),
	}
	reg.MustRegister(r.CommandsProcessed, r.KeyCount, r.MemoryBytes, r.AOFOffset)
	return r
}

// Observe updates the Prometheus collectors from a freshly published
// Snapshot. delta is the number of commands processed since the previous
// observation, since CommandsProcessed is a monotonic counter.
func (r *Registry) Observe(shardLabel string, s Snapshot, delta int64) {
	if delta > 0 {
		r.CommandsProcessed.WithLabelValues(shardLabel).Add(float64(delta))
	}
	r.KeyCount.WithLabelValues(shardLabel).Set(float64(s.KeyCount))
	r.MemoryBytes.WithLabelValues(shardLabel).Set(float64(s.ApproxMemoryBytes))
	r.AOFOffset.WithLabelValues(shardLabel).Set(float64(s.LastAOFOffset))
}
