// Package history provides the bounded per-instrument price buffers shared
// between the feed client and the alert workers.
package history

import "sync"

// Store keeps the most recent prices per instrument in fixed-capacity
// circular buffers. The single feed goroutine writes; any number of alert
// workers snapshot concurrently. All access goes through one RWMutex so a
// reader can never observe a buffer mid-append.
type Store struct {
	mu       sync.RWMutex
	capacity int
	buffers  map[string]*buffer
}

type buffer struct {
	prices []float64
	head   int // next write position
	full   bool
}

// New creates a Store with one empty buffer per supported symbol.
// Buffers live for the process lifetime; they are never removed.
func New(symbols []string, capacity int) *Store {
	if capacity < 2 {
		capacity = 2
	}
	buffers := make(map[string]*buffer, len(symbols))
	for _, s := range symbols {
		buffers[s] = &buffer{prices: make([]float64, capacity)}
	}
	return &Store{capacity: capacity, buffers: buffers}
}

// RecordTick appends a price for symbol, evicting the oldest entry once the
// buffer is at capacity. Unknown symbols are a no-op.
func (s *Store) RecordTick(symbol string, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buffers[symbol]
	if !ok {
		return
	}
	b.prices[b.head] = price
	b.head++
	if b.head == len(b.prices) {
		b.head = 0
		b.full = true
	}
}

// Snapshot returns a copy of the stored prices in arrival order (oldest
// first). Unknown symbols yield an empty slice. The copy is safe to read
// while the feed keeps appending.
func (s *Store) Snapshot(symbol string) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.buffers[symbol]
	if !ok {
		return nil
	}
	if !b.full {
		out := make([]float64, b.head)
		copy(out, b.prices[:b.head])
		return out
	}
	out := make([]float64, len(b.prices))
	n := copy(out, b.prices[b.head:])
	copy(out[n:], b.prices[:b.head])
	return out
}

// Len returns the number of prices currently stored for symbol.
func (s *Store) Len(symbol string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.buffers[symbol]
	if !ok {
		return 0
	}
	if b.full {
		return len(b.prices)
	}
	return b.head
}

// Cap returns the configured buffer capacity.
func (s *Store) Cap() int {
	return s.capacity
}
