// Package status holds in-process metrics written by orbs and services
package status

import (
	"fmt"
	"sync/atomic"
)

// Registry is the central metrics facade
// Writers cache pointers once; hot loops touch atomics only
type Registry struct {
	Counters *MetricMap[atomic.Int64]
	Gauges   *MetricMap[AtomicFloat]
	Labels   *MetricMap[AtomicString]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Counters: NewMetricMap[atomic.Int64](),
		Gauges:   NewMetricMap[AtomicFloat](),
		Labels:   NewMetricMap[AtomicString](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Counters.Count() + r.Gauges.Count() + r.Labels.Count()
}

// Key joins a scope and a metric name
func Key(scope, name string) string {
	return fmt.Sprintf("%s.%s", scope, name)
}

// Snapshot copies current values into plain maps
func (r *Registry) Snapshot() (counters map[string]int64, gauges map[string]float64) {
	counters = make(map[string]int64, r.Counters.Count())
	gauges = make(map[string]float64, r.Gauges.Count())
	r.Counters.Range(func(k string, v *atomic.Int64) { counters[k] = v.Load() })
	r.Gauges.Range(func(k string, v *AtomicFloat) { gauges[k] = v.Get() })
	return counters, gauges
}
