package observer

import (
	"fmt"
	"sync"

	"github.com/percy-raskova/babylon-sub001/internal/event"
	"github.com/percy-raskova/babylon-sub001/internal/world"
)

// NarrativeTag is the registry tag of the narrative trigger.
const NarrativeTag = "narrative"

// maxBeats bounds the queue; older beats are dropped once consumers fall
// behind, the same way the engine trims its own event history.
const maxBeats = 1000

// Beat is a narrative-worthy occurrence queued for a downstream text
// generator. The generator is an external collaborator; the engine only
// curates what is worth telling.
type Beat struct {
	Tick     uint64 `json:"tick"`
	Kind     string `json:"kind"`
	Subject  string `json:"subject"`
	Headline string `json:"headline"`
}

// Narrative watches the event stream and queues beats for ruptures,
// struggles, bifurcations, decompositions, and the terminal outcome.
// Malformed payloads are skipped, never fatal.
type Narrative struct {
	mu    sync.Mutex
	beats []Beat
}

// NewNarrative returns an empty narrative trigger.
func NewNarrative() *Narrative {
	return &Narrative{}
}

func (n *Narrative) Tag() string { return NarrativeTag }

func (n *Narrative) OnTick(before, after *world.State, events []event.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ev := range events {
		beat, ok := beatFor(ev)
		if !ok {
			continue
		}
		n.beats = append(n.beats, beat)
	}
	if len(n.beats) > maxBeats {
		n.beats = n.beats[len(n.beats)-maxBeats:]
	}
}

// Drain returns all queued beats and clears the queue.
func (n *Narrative) Drain() []Beat {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.beats
	n.beats = nil
	return out
}

// Pending returns the queue depth.
func (n *Narrative) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.beats)
}

func beatFor(ev event.Event) (Beat, bool) {
	switch ev.Kind {
	case event.KindRupture:
		p, ok := ev.Payload.(event.ContradictionPayload)
		if !ok {
			return Beat{}, false
		}
		return Beat{
			Tick:     ev.Tick,
			Kind:     ev.Kind.String(),
			Subject:  p.Contradiction,
			Headline: fmt.Sprintf("contradiction %s ruptures at intensity %.2f", p.Contradiction, p.Intensity),
		}, true
	case event.KindStruggle:
		p, ok := ev.Payload.(event.StrugglePayload)
		if !ok {
			return Beat{}, false
		}
		verb := "is crushed"
		if p.Won {
			verb = "prevails"
		}
		return Beat{
			Tick:     ev.Tick,
			Kind:     ev.Kind.String(),
			Subject:  p.Class,
			Headline: fmt.Sprintf("%s rises in %s and %s", p.Class, p.Action, verb),
		}, true
	case event.KindBifurcation:
		p, ok := ev.Payload.(event.BifurcationPayload)
		if !ok {
			return Beat{}, false
		}
		return Beat{
			Tick:     ev.Tick,
			Kind:     ev.Kind.String(),
			Subject:  p.Class,
			Headline: fmt.Sprintf("%s crosses into the %s current", p.Class, p.Alignment),
		}, true
	case event.KindDecomposition:
		p, ok := ev.Payload.(event.DecompositionPayload)
		if !ok {
			return Beat{}, false
		}
		return Beat{
			Tick:     ev.Tick,
			Kind:     ev.Kind.String(),
			Subject:  p.Class,
			Headline: fmt.Sprintf("%s decomposes, absorbed by %s", p.Class, p.Absorbed),
		}, true
	case event.KindTerminal:
		p, ok := ev.Payload.(event.TerminalPayload)
		if !ok {
			return Beat{}, false
		}
		return Beat{
			Tick:     ev.Tick,
			Kind:     ev.Kind.String(),
			Subject:  p.Outcome,
			Headline: fmt.Sprintf("the run ends in %s", p.Outcome),
		}, true
	default:
		return Beat{}, false
	}
}
