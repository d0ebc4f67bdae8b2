package logging

import (
	"sync"
	"time"
)

// LogEntry is one captured log record, kept in memory so the status API
// can serve a recent tail without touching the log file.
type LogEntry struct {
	Timestamp  time.Time      `json:"timestamp"`
	Level      string         `json:"level"`
	Module     string         `json:"module"`
	Message    string         `json:"message"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// RingBuffer keeps the most recent log entries, overwriting the oldest
// once full. Safe for concurrent use.
type RingBuffer struct {
	entries []LogEntry
	size    int
	head    int
	count   int
	mu      sync.RWMutex
}

// NewRingBuffer creates a ring buffer holding up to size entries.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{
		entries: make([]LogEntry, size),
		size:    size,
	}
}

// Write appends an entry, evicting the oldest one when the buffer is full.
func (rb *RingBuffer) Write(entry LogEntry) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.entries[rb.head] = entry
	rb.head = (rb.head + 1) % rb.size

	if rb.count < rb.size {
		rb.count++
	}
}

// ReadAll returns every buffered entry, oldest first.
func (rb *RingBuffer) ReadAll() []LogEntry {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.readLocked(rb.count)
}

// Tail returns the newest n entries, oldest first. n larger than the
// buffered count returns everything.
func (rb *RingBuffer) Tail(n int) []LogEntry {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	if n > rb.count {
		n = rb.count
	}
	return rb.readLocked(n)
}

// readLocked copies the newest n entries in chronological order. Caller
// holds at least the read lock.
func (rb *RingBuffer) readLocked(n int) []LogEntry {
	if n <= 0 {
		return nil
	}

	result := make([]LogEntry, n)
	// head points at the slot the next write will take, so the newest
	// entry sits just before it.
	start := rb.head - n
	if start < 0 {
		start += rb.size
	}
	for i := range result {
		result[i] = rb.entries[(start+i)%rb.size]
	}
	return result
}

// Count returns the number of buffered entries.
func (rb *RingBuffer) Count() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.count
}
