package bt

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turnpilot/turnpilot/pkg/encoding"
)

// DefaultJournalCap bounds a journal when the caller does not choose a size.
const DefaultJournalCap = 256

// Decision is one journaled turn outcome.
type Decision struct {
	ID       uuid.UUID     `json:"id"`
	Turn     int           `json:"turn"`
	Node     string        `json:"node"`
	Status   Status        `json:"status"`
	Duration time.Duration `json:"duration"`
	At       time.Time     `json:"at"`
}

// Journal keeps a capacity-bounded history of decisions, oldest dropped
// first. It records outcomes only; tree execution state never lands here.
type Journal struct {
	mu   sync.RWMutex
	buf  []Decision
	head int
	size int
}

// NewJournal creates a journal holding up to capacity decisions. A capacity
// of zero or less falls back to DefaultJournalCap.
func NewJournal(capacity int) *Journal {
	if capacity <= 0 {
		capacity = DefaultJournalCap
	}
	return &Journal{buf: make([]Decision, capacity)}
}

// Append records a decision, evicting the oldest one when full.
func (j *Journal) Append(rec Decision) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.push(rec)
}

func (j *Journal) push(rec Decision) {
	if j.size < len(j.buf) {
		j.buf[(j.head+j.size)%len(j.buf)] = rec
		j.size++
		return
	}
	j.buf[j.head] = rec
	j.head = (j.head + 1) % len(j.buf)
}

// History returns a copy of the retained decisions, oldest first.
func (j *Journal) History() []Decision {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]Decision, j.size)
	for i := 0; i < j.size; i++ {
		out[i] = j.buf[(j.head+i)%len(j.buf)]
	}
	return out
}

// Recent returns up to n of the newest decisions, newest first.
func (j *Journal) Recent(n int) []Decision {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if n > j.size {
		n = j.size
	}
	out := make([]Decision, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, j.buf[(j.head+j.size-1-i)%len(j.buf)])
	}
	return out
}

// Len returns the number of retained decisions.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.size
}

// Cap returns the journal capacity.
func (j *Journal) Cap() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.buf)
}

// Reset drops all retained decisions, keeping the capacity.
func (j *Journal) Reset() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.head = 0
	j.size = 0
}

// Save serializes the retained decisions with gob.
func (j *Journal) Save() ([]byte, error) {
	j.mu.RLock()
	state := journalState{Cap: len(j.buf), Recs: make([]Decision, j.size)}
	for i := 0; i < j.size; i++ {
		state.Recs[i] = j.buf[(j.head+i)%len(j.buf)]
	}
	j.mu.RUnlock()

	return encoding.EncodeGob(state)
}

// Load replaces the journal contents from gob data.
func (j *Journal) Load(data []byte) error {
	var state journalState
	if err := encoding.DecodeGob(data, &state); err != nil {
		return err
	}
	if state.Cap <= 0 {
		state.Cap = DefaultJournalCap
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.buf = make([]Decision, state.Cap)
	j.head = 0
	j.size = 0
	for _, rec := range state.Recs {
		j.push(rec)
	}
	return nil
}

type journalState struct {
	Cap  int
	Recs []Decision
}
