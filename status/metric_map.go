package status

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

// MetricMap holds named metrics of one kind, keyed "scope.name"
// Lookups take a lock; writers keep the returned pointer and update it lock-free
type MetricMap[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
}

func NewMetricMap[T any]() *MetricMap[T] {
	return &MetricMap[T]{items: make(map[string]*T)}
}

// Get returns the metric for key, registering a zero value on first use
func (m *MetricMap[T]) Get(key string) *T {
	m.mu.RLock()
	ptr, ok := m.items[key]
	m.mu.RUnlock()
	if ok {
		return ptr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another writer may have registered it meanwhile
	if ptr, ok := m.items[key]; ok {
		return ptr
	}
	ptr = new(T)
	m.items[key] = ptr
	return ptr
}

func (m *MetricMap[T]) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.items[key]
	return ok
}

// Range visits every metric in key order
func (m *MetricMap[T]) Range(fn func(key string, ptr *T)) {
	m.RangeScope("", fn)
}

// RangeScope visits metrics under scope in key order, passing names with the scope stripped
// An empty scope visits everything with full keys
func (m *MetricMap[T]) RangeScope(scope string, fn func(name string, ptr *T)) {
	prefix := ""
	if scope != "" {
		prefix = scope + "."
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, k := range slices.Sorted(maps.Keys(m.items)) {
		if name, ok := strings.CutPrefix(k, prefix); ok {
			fn(name, m.items[k])
		}
	}
}

func (m *MetricMap[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
