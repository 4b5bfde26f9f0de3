package service

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
)

var (
	ErrDuplicate         = errors.New("service already registered")
	ErrNotFound          = errors.New("service not found")
	ErrUnknownDependency = errors.New("dependency not registered")
	ErrCircular          = errors.New("circular dependency detected in services")
)

// Hub is the runtime container for service instances
// Manages lifecycle in dependency order and provides typed access
type Hub struct {
	mu       sync.RWMutex
	logger   zerolog.Logger
	services map[string]Service
	sorted   []string // Topological order, computed on InitAll
	started  []string // Services that completed Start(), for rollback
}

// NewHub creates an empty service hub
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		logger:   logger.With().Str("component", "hub").Logger(),
		services: make(map[string]Service),
	}
}

// Register adds a service instance to the hub
func (h *Hub) Register(svc Service) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := svc.Name()
	if _, exists := h.services[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}

	h.services[name] = svc
	h.sorted = nil
	return nil
}

// Get retrieves a service by name
func (h *Hub) Get(name string) (Service, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	svc, ok := h.services[name]
	return svc, ok
}

// Lookup retrieves a service and asserts it to T
func Lookup[T any](h *Hub, name string) (T, error) {
	var zero T
	svc, ok := h.Get(name)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	typed, ok := svc.(T)
	if !ok {
		return zero, fmt.Errorf("service %s: type mismatch, got %T", name, svc)
	}
	return typed, nil
}

// MustGet retrieves a service and casts to type T
// Panics if service not found or type mismatch
func MustGet[T any](h *Hub, name string) T {
	typed, err := Lookup[T](h, name)
	if err != nil {
		panic(err.Error())
	}
	return typed
}

// InitAll resolves dependencies and calls Init on all services with args
// On failure, calls Stop on already-initialized services in reverse order
func (h *Hub) InitAll(args ...any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sorted == nil {
		order, err := h.topologicalSort()
		if err != nil {
			return err
		}
		h.sorted = order
	}

	var initialized []string
	for _, name := range h.sorted {
		if err := h.services[name].Init(args...); err != nil {
			for i := len(initialized) - 1; i >= 0; i-- {
				h.services[initialized[i]].Stop()
			}
			return fmt.Errorf("service %s init failed: %w", name, err)
		}
		initialized = append(initialized, name)
		h.logger.Debug().Str("service", name).Msg("initialized")
	}

	return nil
}

// StartAll calls Start on all services in topological order
// On failure, calls Stop on already-started services in reverse order
func (h *Hub) StartAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.started = nil

	for _, name := range h.sorted {
		if err := h.services[name].Start(); err != nil {
			for i := len(h.started) - 1; i >= 0; i-- {
				h.services[h.started[i]].Stop()
			}
			h.started = nil
			return fmt.Errorf("service %s start failed: %w", name, err)
		}
		h.started = append(h.started, name)
		h.logger.Debug().Str("service", name).Msg("started")
	}

	return nil
}

// StopAll calls Stop on all started services in reverse topological order
// Every service gets Stop called; errors are logged and joined
func (h *Hub) StopAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var errs []error
	for i := len(h.started) - 1; i >= 0; i-- {
		name := h.started[i]
		if err := h.services[name].Stop(); err != nil {
			h.logger.Error().Err(err).Str("service", name).Msg("stop failed")
			errs = append(errs, fmt.Errorf("service %s: %w", name, err))
		}
	}
	h.started = nil
	return errors.Join(errs...)
}

// Order returns the resolved init order, empty before InitAll
func (h *Hub) Order() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.sorted)
}

// topologicalSort computes initialization order using Kahn's algorithm
// Ties resolve alphabetically so the order is stable across runs
func (h *Hub) topologicalSort() ([]string, error) {
	inDegree := make(map[string]int)
	dependents := make(map[string][]string) // dep -> services that depend on it

	names := make([]string, 0, len(h.services))
	for name := range h.services {
		inDegree[name] = 0
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		for _, dep := range h.services[name].Dependencies() {
			if _, exists := h.services[dep]; !exists {
				return nil, fmt.Errorf("%w: %s requires %s", ErrUnknownDependency, name, dep)
			}
			inDegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var queue []string
	for _, name := range names {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	var result []string
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		result = append(result, name)

		for _, dependent := range dependents[name] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(result) != len(h.services) {
		return nil, ErrCircular
	}

	return result, nil
}

// Names returns all registered service names, sorted
func (h *Hub) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.services))
	for name := range h.services {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
