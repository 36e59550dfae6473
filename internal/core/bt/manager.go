package bt

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/turnpilot/turnpilot/internal/core/observability/log"
	"github.com/turnpilot/turnpilot/pkg/concurrent"
	"github.com/turnpilot/turnpilot/pkg/sequence"
)

// binding pairs a driver with the world handle it plays against.
type binding struct {
	driver *Driver
	world  any
}

// Manager runs a collection of drivers in lockstep. Turns of different
// drivers run concurrently; each tree still ticks on a single goroutine.
type Manager struct {
	mu       sync.RWMutex
	bindings map[string]binding
	log      log.Log
}

func NewManager() *Manager {
	return &Manager{
		bindings: make(map[string]binding),
		log:      log.Provide().Named("manager"),
	}
}

// Add registers a driver together with its world handle. Driver ids must be
// unique within a manager.
func (m *Manager) Add(d *Driver, world any) error {
	if d == nil {
		return errors.New("driver is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.bindings[d.ID()]; exists {
		return fmt.Errorf("driver %s already added", d.ID())
	}
	m.bindings[d.ID()] = binding{driver: d, world: world}
	return nil
}

// Remove drops a driver and reports whether it was present.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.bindings[id]; !exists {
		return false
	}
	delete(m.bindings, id)
	return true
}

// Get returns a registered driver.
func (m *Manager) Get(id string) (*Driver, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bindings[id]
	return b.driver, ok
}

// IDs returns the registered driver ids, sorted.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.bindings))
	for id := range m.bindings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered drivers.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bindings)
}

// PlayAll plays one turn on every driver, one goroutine per driver, and
// returns the statuses by driver id. All turns run to completion; the first
// error, if any, is returned alongside the statuses that were produced.
func (m *Manager) PlayAll(ctx context.Context) (map[string]Status, error) {
	m.mu.RLock()
	bindings := sequence.FromMap(m.bindings).Collect()
	m.mu.RUnlock()

	var (
		resMu    sync.Mutex
		statuses = make(map[string]Status, len(bindings))
	)
	err := concurrent.Concurrent(sequence.From(bindings), func(b binding) error {
		status, err := b.driver.PlayTurn(ctx, b.world)
		if err != nil {
			return fmt.Errorf("driver %s: %w", b.driver.ID(), err)
		}
		resMu.Lock()
		statuses[b.driver.ID()] = status
		resMu.Unlock()
		return nil
	})
	if err != nil {
		m.log.Error("turn fan-out failed", log.Error(err))
		return statuses, err
	}
	return statuses, nil
}
