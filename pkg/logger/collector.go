package logger

import (
	"sync"
	"time"
)

// ErrorEntry is one captured error-level log line.
type ErrorEntry struct {
	Time    time.Time              `json:"time"`
	Message string                 `json:"message"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
	Caller  string                 `json:"caller"`
}

// ErrorBuffer is a fixed-capacity ring of the most recent error entries,
// served by the dashboard's errors endpoint. Old entries are overwritten
// once the ring is full.
type ErrorBuffer struct {
	mu      sync.RWMutex
	entries []ErrorEntry
	next    int
	full    bool
}

// NewErrorBuffer creates a ring holding up to capacity entries.
func NewErrorBuffer(capacity int) *ErrorBuffer {
	if capacity <= 0 {
		capacity = 100
	}
	return &ErrorBuffer{entries: make([]ErrorEntry, capacity)}
}

// Add records an entry, evicting the oldest when full.
func (b *ErrorBuffer) Add(entry ErrorEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[b.next] = entry
	b.next++
	if b.next == len(b.entries) {
		b.next = 0
		b.full = true
	}
}

// Recent returns the captured entries, newest first.
func (b *ErrorBuffer) Recent() []ErrorEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	size := b.next
	if b.full {
		size = len(b.entries)
	}
	out := make([]ErrorEntry, 0, size)
	for i := 0; i < size; i++ {
		idx := b.next - 1 - i
		if idx < 0 {
			idx += len(b.entries)
		}
		out = append(out, b.entries[idx])
	}
	return out
}
