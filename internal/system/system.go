// Package system implements the ordered state-transition stages executed
// within a tick. A system consumes the committed output of the previous
// stage and produces a fresh snapshot plus events; systems never communicate
// directly, only through world fields and the event log.
//
// The documented pipeline order is a designed invariant:
//
//	extraction → solidarity → drift → survival → contradiction →
//	territory → metabolism → decomposition → struggle
//
// Later stages read earlier stages' committed output within the same tick
// (survival reads post-drift consciousness, territory reads survival's
// revolt probabilities, struggle reads everything). Reordering changes the
// model, not just the code.
package system

import (
	"github.com/percy-raskova/babylon-sub001/internal/config"
	"github.com/percy-raskova/babylon-sub001/internal/entropy"
	"github.com/percy-raskova/babylon-sub001/internal/event"
	"github.com/percy-raskova/babylon-sub001/internal/world"
)

// System is one pipeline stage. Apply reads st, clones it, and returns the
// mutated clone; st itself is never written. Events go to rec. The error
// return is reserved for unrecoverable configuration problems; policy
// violations are clamped and reported as diagnostic events instead.
type System interface {
	Name() string
	Apply(st *world.State, cfg *config.Config, rng *entropy.Stream, rec *event.Recorder) (*world.State, error)
}

// Pipeline returns the systems in their fixed execution order.
func Pipeline() []System {
	return []System{
		Extraction{},
		Solidarity{},
		Drift{},
		Survival{},
		ContradictionEvolution{},
		TerritoryHeat{},
		Metabolism{},
		Decomposition{},
		Struggle{},
	}
}
