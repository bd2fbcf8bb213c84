package journal

import (
	"context"
	"sync"
)

var _ Recorder = &InMemory{}

// InMemory is a Recorder keeping entries in memory.
//
// Useful for tests assertion, this implementation is thread-safe.
type InMemory struct {
	mx      sync.RWMutex
	entries []Entry
}

// NewInMemory returns an empty in-memory recorder.
func NewInMemory() *InMemory {
	return new(InMemory)
}

// Record appends the entry to the internal list.
func (r *InMemory) Record(_ context.Context, entry Entry) error {
	r.mx.Lock()
	defer r.mx.Unlock()

	r.entries = append(r.entries, entry)

	return nil
}

// Recorded returns the list of entries recorded so far, in recording
// order.
func (r *InMemory) Recorded() []Entry {
	r.mx.RLock()
	defer r.mx.RUnlock()

	return r.entries
}

// Flush returns the recorded entries and resets the internal list.
func (r *InMemory) Flush() []Entry {
	r.mx.Lock()
	defer r.mx.Unlock()

	entries := r.entries
	r.entries = nil

	return entries
}
