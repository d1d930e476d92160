package event

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/percy-raskova/babylon-sub001/internal/world"
)

// Observer is a read-only subscriber. OnTick runs only after the full system
// pipeline for a tick has committed; before and after are immutable
// snapshots. Observers keep whatever derived state they like but never write
// to the world; an observer that wants to change the world must express
// that as input to a later tick, not as mutation.
//
// OnTick must tolerate malformed or unexpected payloads: a metrics or
// narrative failure never aborts the simulation.
type Observer interface {
	// Tag is the stable registry key this observer is looked up by.
	Tag() string
	OnTick(before, after *world.State, events []Event)
}

// Bus holds the typed observer registry and flushes committed ticks to it.
// Registration order is notification order. Observers are looked up by
// declared tag, never by runtime type inspection.
type Bus struct {
	order      []Observer
	byTag      map[string]Observer
	Sequential bool // run observers inline instead of in parallel (tests)
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{byTag: make(map[string]Observer)}
}

// Register adds an observer. Duplicate tags are an error: tags are the
// lookup identity.
func (b *Bus) Register(o Observer) error {
	if _, dup := b.byTag[o.Tag()]; dup {
		return fmt.Errorf("observer tag %q already registered", o.Tag())
	}
	b.byTag[o.Tag()] = o
	b.order = append(b.order, o)
	return nil
}

// Lookup returns the observer registered under tag, or nil.
func (b *Bus) Lookup(tag string) Observer {
	return b.byTag[tag]
}

// Tags returns registered tags in registration order.
func (b *Bus) Tags() []string {
	tags := make([]string, len(b.order))
	for i, o := range b.order {
		tags[i] = o.Tag()
	}
	return tags
}

// Flush notifies every observer of a committed tick. Observers are mutually
// independent and read-only, so they run concurrently; Flush returns only
// when all have finished, preserving the total order of tick boundaries.
// A panicking observer is isolated and logged; it never reaches the loop.
func (b *Bus) Flush(before, after *world.State, events []Event) {
	if b.Sequential {
		for _, o := range b.order {
			b.notify(o, before, after, events)
		}
		return
	}

	var wg sync.WaitGroup
	for _, o := range b.order {
		wg.Add(1)
		go func(o Observer) {
			defer wg.Done()
			b.notify(o, before, after, events)
		}(o)
	}
	wg.Wait()
}

func (b *Bus) notify(o Observer, before, after *world.State, events []Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("observer panicked",
				"code", CodeObserverPanic,
				"observer", o.Tag(),
				"tick", after.Tick,
				"panic", r,
			)
		}
	}()
	o.OnTick(before, after, events)
}
