package sim

import (
	"testing"

	"github.com/percy-raskova/babylon-sub001/internal/world"
)

func snapshot(tick uint64) *world.State {
	st := world.New()
	st.Tick = tick
	return st
}

func TestHistoryEvictsBeyondDepth(t *testing.T) {
	h := NewHistory(3)
	for tick := uint64(1); tick <= 5; tick++ {
		h.Push(snapshot(tick))
	}

	if h.Len() != 3 {
		t.Fatalf("retained %d snapshots, want 3", h.Len())
	}
	if _, ok := h.Get(1); ok {
		t.Fatal("evicted tick still retrievable")
	}
	for tick := uint64(3); tick <= 5; tick++ {
		st, ok := h.Get(tick)
		if !ok || st.Tick != tick {
			t.Fatalf("tick %d missing from the ring", tick)
		}
	}
}

func TestPinSurvivesEviction(t *testing.T) {
	h := NewHistory(2)
	h.Push(snapshot(1))
	if !h.Pin(1) {
		t.Fatal("pinning a retained tick failed")
	}

	for tick := uint64(2); tick <= 10; tick++ {
		h.Push(snapshot(tick))
	}

	st, ok := h.Get(1)
	if !ok || st.Tick != 1 {
		t.Fatal("pinned snapshot was evicted")
	}

	h.Unpin(1)
	if _, ok := h.Get(1); ok {
		t.Fatal("unpinned snapshot still retrievable after eviction")
	}
}

func TestPinFailsForEvictedTick(t *testing.T) {
	h := NewHistory(1)
	h.Push(snapshot(1))
	h.Push(snapshot(2))
	if h.Pin(1) {
		t.Fatal("pinning an evicted tick must fail")
	}
}

func TestDepthFloor(t *testing.T) {
	h := NewHistory(0)
	h.Push(snapshot(1))
	h.Push(snapshot(2))
	if h.Len() != 1 {
		t.Fatalf("depth floor broken, retained %d", h.Len())
	}
}
