package bt

import (
	"fmt"
	"sync"
)

// Factories turn loader params into runnable pieces. They are registered
// under a name so config files can reference domain catalogs without the
// loader knowing anything about the domain.
type (
	LeafFactory   func(params Params) (LeafFunc, error)
	PredFactory   func(params Params) (Predicate, error)
	HookFactory   func(params Params) (Hook, error)
	SensorFactory func(params Params) (Sensor, error)
)

// Registry maps names to factories for the four pluggable kinds: leaves,
// predicates, decorator hooks and sensors.
type Registry struct {
	mu      sync.RWMutex
	leaves  map[string]LeafFactory
	preds   map[string]PredFactory
	hooks   map[string]HookFactory
	sensors map[string]SensorFactory
}

func NewRegistry() *Registry {
	return &Registry{
		leaves:  make(map[string]LeafFactory),
		preds:   make(map[string]PredFactory),
		hooks:   make(map[string]HookFactory),
		sensors: make(map[string]SensorFactory),
	}
}

func (r *Registry) RegisterLeaf(name string, factory LeafFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaves[name] = factory
}

func (r *Registry) RegisterPred(name string, factory PredFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.preds[name] = factory
}

func (r *Registry) RegisterHook(name string, factory HookFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[name] = factory
}

func (r *Registry) RegisterSensor(name string, factory SensorFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sensors[name] = factory
}

// NewLeaf instantiates a registered leaf function.
func (r *Registry) NewLeaf(name string, params Params) (LeafFunc, error) {
	r.mu.RLock()
	factory, ok := r.leaves[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown leaf: %s", name)
	}
	return factory(params)
}

// NewPred instantiates a registered predicate.
func (r *Registry) NewPred(name string, params Params) (Predicate, error) {
	r.mu.RLock()
	factory, ok := r.preds[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown predicate: %s", name)
	}
	return factory(params)
}

// NewHook instantiates a registered decorator hook.
func (r *Registry) NewHook(name string, params Params) (Hook, error) {
	r.mu.RLock()
	factory, ok := r.hooks[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown hook: %s", name)
	}
	return factory(params)
}

// NewSensor instantiates a registered sensor.
func (r *Registry) NewSensor(name string, params Params) (Sensor, error) {
	r.mu.RLock()
	factory, ok := r.sensors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown sensor: %s", name)
	}
	return factory(params)
}
