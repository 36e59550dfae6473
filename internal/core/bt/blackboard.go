package bt

import (
	"sort"
	"sync"

	"github.com/turnpilot/turnpilot/pkg/encoding"
)

// Blackboard is the shared key/value store carried by every turn. Sensors
// write into it before the tree ticks, leaves read and write it during the
// tick, and watchers may read it from other goroutines, hence the lock.
type Blackboard struct {
	mu      sync.RWMutex
	data    map[string]any
	version int64
}

func NewBlackboard() *Blackboard {
	return &Blackboard{data: make(map[string]any)}
}

// Set stores a value and bumps the version.
func (b *Blackboard) Set(key string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = value
	b.version++
}

// Get retrieves a value.
func (b *Blackboard) Get(key string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	value, ok := b.data[key]
	return value, ok
}

// GetString retrieves a string value.
func (b *Blackboard) GetString(key string) (string, bool) {
	value, ok := b.Get(key)
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}

// GetInt retrieves an integer value. Whole floats count, so values that went
// through JSON still come back.
func (b *Blackboard) GetInt(key string) (int, bool) {
	value, ok := b.Get(key)
	if !ok {
		return 0, false
	}
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}

// GetFloat retrieves a float value.
func (b *Blackboard) GetFloat(key string) (float64, bool) {
	value, ok := b.Get(key)
	if !ok {
		return 0, false
	}
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// GetBool retrieves a boolean value.
func (b *Blackboard) GetBool(key string) (bool, bool) {
	value, ok := b.Get(key)
	if !ok {
		return false, false
	}
	v, ok := value.(bool)
	return v, ok
}

// Has reports whether a key exists.
func (b *Blackboard) Has(key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.data[key]
	return ok
}

// Delete removes a key and bumps the version when it existed.
func (b *Blackboard) Delete(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.data[key]; ok {
		delete(b.data, key)
		b.version++
	}
}

// Keys returns all keys, sorted for deterministic iteration.
func (b *Blackboard) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]string, 0, len(b.data))
	for key := range b.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored keys.
func (b *Blackboard) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

// Clear removes all data and bumps the version.
func (b *Blackboard) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = make(map[string]any)
	b.version++
}

// Version returns the current modification count.
func (b *Blackboard) Version() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// Snapshot returns a shallow copy of the data for watchers.
func (b *Blackboard) Snapshot() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	snapshot := make(map[string]any, len(b.data))
	for key, value := range b.data {
		snapshot[key] = value
	}
	return snapshot
}

// Clone creates an independent copy of the blackboard.
func (b *Blackboard) Clone() *Blackboard {
	b.mu.RLock()
	defer b.mu.RUnlock()
	clone := &Blackboard{
		data:    make(map[string]any, len(b.data)),
		version: b.version,
	}
	for key, value := range b.data {
		clone.data[key] = value
	}
	return clone
}

// MarshalBinary serializes the blackboard with gob. Values must be
// gob-encodable; the basic types sensors and leaves store always are.
func (b *Blackboard) MarshalBinary() ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return encoding.EncodeGob(blackboardState{Data: b.data, Version: b.version})
}

// UnmarshalBinary replaces the blackboard contents from gob data.
func (b *Blackboard) UnmarshalBinary(data []byte) error {
	var state blackboardState
	if err := encoding.DecodeGob(data, &state); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if state.Data == nil {
		state.Data = make(map[string]any)
	}
	b.data = state.Data
	b.version = state.Version
	return nil
}

type blackboardState struct {
	Data    map[string]any
	Version int64
}
