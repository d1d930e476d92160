package observer

import (
	"sync"

	"github.com/percy-raskova/babylon-sub001/internal/config"
	"github.com/percy-raskova/babylon-sub001/internal/event"
	"github.com/percy-raskova/babylon-sub001/internal/formula"
	"github.com/percy-raskova/babylon-sub001/internal/world"
)

// EndgameTag is the registry tag the simulation loop uses to locate the
// detector.
const EndgameTag = "endgame"

// Outcome tags the terminal state of a run.
type Outcome string

const (
	OutcomeNone          Outcome = ""
	OutcomeVictory       Outcome = "revolutionary_victory"
	OutcomeCollapse      Outcome = "ecological_collapse"
	OutcomeConsolidation Outcome = "fascist_consolidation"
)

// TerminalClassifier is the capability the simulation loop looks up by tag.
// Evaluate is called once per tick with the committed snapshot; it reports
// a terminal payload exactly once per run.
type TerminalClassifier interface {
	Evaluate(after *world.State) (event.TerminalPayload, bool)
}

// Endgame classifies terminal states. The three predicates are evaluated in
// fixed priority order (revolutionary victory, ecological collapse, fascist
// consolidation), so exactly one outcome is ever reported even if several
// predicates became true on the same tick. Window counters advance every
// tick regardless of priority, so a lower-priority window is not reset by a
// higher-priority near-miss.
type Endgame struct {
	cfg config.Endgame

	mu          sync.Mutex
	collapseRun int
	fascismRun  int
	fired       bool
	outcome     Outcome
	firedTick   uint64
}

// NewEndgame returns a detector for the given thresholds. The config is
// assumed validated.
func NewEndgame(cfg config.Endgame) *Endgame {
	return &Endgame{cfg: cfg}
}

func (d *Endgame) Tag() string { return EndgameTag }

// OnTick satisfies the observer contract. Classification happens in
// Evaluate, which the loop invokes synchronously before the flush so the
// terminal event lands in the same tick's log.
func (d *Endgame) OnTick(before, after *world.State, events []event.Event) {}

// Evaluate updates the consecutive-tick windows and classifies the snapshot.
// After the first terminal report it always returns false.
func (d *Endgame) Evaluate(after *world.State) (event.TerminalPayload, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.fired {
		return event.TerminalPayload{}, false
	}

	// Advance both windows first; predicate priority must not starve them.
	if after.Aggregates.Overshoot >= d.cfg.CollapseThreshold {
		d.collapseRun++
	} else {
		d.collapseRun = 0
	}
	if d.consolidationRatio(after) >= d.cfg.FascismThreshold {
		d.fascismRun++
	} else {
		d.fascismRun = 0
	}

	switch {
	case after.Aggregates.LiberationIndex > d.cfg.VictoryThreshold:
		d.outcome = OutcomeVictory
	case d.collapseRun >= d.cfg.CollapseWindow:
		d.outcome = OutcomeCollapse
	case d.fascismRun >= d.cfg.FascismWindow:
		d.outcome = OutcomeConsolidation
	default:
		return event.TerminalPayload{}, false
	}

	d.fired = true
	d.firedTick = after.Tick
	return event.TerminalPayload{
		Outcome: string(d.outcome),
		Digest:  after.Digest(),
	}, true
}

// consolidationRatio is repressive capacity over organized resistance,
// population-weighted. Zero resistance with live repression reads as a
// maximal ratio rather than a division blowup.
func (d *Endgame) consolidationRatio(after *world.State) float64 {
	var resistance float64
	for _, id := range after.ClassIDs() {
		c := after.Classes[id]
		resistance += c.Population * c.Organization * formula.Clamp01(c.Consciousness)
	}
	repression := after.Aggregates.RepressionIndex * after.TotalPopulation()
	if repression <= 0 {
		return 0
	}
	ratio := formula.GuardedDiv(repression, resistance)
	if ratio == formula.DivSentinel {
		return d.cfg.FascismThreshold
	}
	return ratio
}

// Outcome returns the classified outcome and the tick it fired, or
// OutcomeNone while the run is still open.
func (d *Endgame) Outcome() (Outcome, uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.outcome, d.firedTick
}
