package sim

import (
	"sync"

	"github.com/percy-raskova/babylon-sub001/internal/world"
)

// History is the bounded snapshot retention buffer. It keeps the most recent
// depth snapshots; older ones are evicted unless explicitly pinned for
// replay or analysis.
type History struct {
	mu      sync.Mutex
	depth   int
	entries []*world.State
	pinned  map[uint64]*world.State
}

// NewHistory returns a buffer retaining depth snapshots. depth < 1 is
// treated as 1.
func NewHistory(depth int) *History {
	if depth < 1 {
		depth = 1
	}
	return &History{depth: depth, pinned: make(map[uint64]*world.State)}
}

// Push appends a committed snapshot and evicts beyond capacity. Pinned
// snapshots survive eviction.
func (h *History) Push(st *world.State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, st)
	if len(h.entries) > h.depth {
		h.entries = h.entries[len(h.entries)-h.depth:]
	}
}

// Get returns the snapshot for a tick if still retained or pinned.
func (h *History) Get(tick uint64) (*world.State, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if st, ok := h.pinned[tick]; ok {
		return st, true
	}
	for i := len(h.entries) - 1; i >= 0; i-- {
		if h.entries[i].Tick == tick {
			return h.entries[i], true
		}
	}
	return nil, false
}

// Pin protects a retained tick from eviction. Returns false if the tick has
// already been evicted.
func (h *History) Pin(tick uint64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.pinned[tick]; ok {
		return true
	}
	for i := len(h.entries) - 1; i >= 0; i-- {
		if h.entries[i].Tick == tick {
			h.pinned[tick] = h.entries[i]
			return true
		}
	}
	return false
}

// Unpin releases a pinned tick.
func (h *History) Unpin(tick uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.pinned, tick)
}

// Len returns how many snapshots are currently retained in the ring.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
