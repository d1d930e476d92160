package persistence

import (
	"log/slog"

	"github.com/percy-raskova/babylon-sub001/internal/event"
	"github.com/percy-raskova/babylon-sub001/internal/world"
)

// RecorderTag is the registry tag of the persistence recorder.
const RecorderTag = "persistence"

// Recorder is the observer that persists committed ticks: every tick's
// events, a snapshot every snapshotEvery ticks, and the terminal outcome.
// Write failures are logged and skipped; persistence must never abort the
// simulation.
type Recorder struct {
	db            *DB
	runID         string
	snapshotEvery uint64
}

// NewRecorder builds a recorder for one run. snapshotEvery of 0 disables
// periodic snapshots; the terminal snapshot is always written.
func NewRecorder(db *DB, runID string, snapshotEvery uint64) *Recorder {
	return &Recorder{db: db, runID: runID, snapshotEvery: snapshotEvery}
}

func (r *Recorder) Tag() string { return RecorderTag }

func (r *Recorder) OnTick(before, after *world.State, events []event.Event) {
	if err := r.db.SaveEvents(r.runID, events); err != nil {
		slog.Error("persist events failed", "run_id", r.runID, "tick", after.Tick, "error", err)
	}

	terminal := false
	for _, ev := range events {
		if ev.Kind != event.KindTerminal {
			continue
		}
		terminal = true
		if p, ok := ev.Payload.(event.TerminalPayload); ok {
			if err := r.db.SaveOutcome(r.runID, p.Outcome, ev.Tick, p.Digest); err != nil {
				slog.Error("persist outcome failed", "run_id", r.runID, "error", err)
			}
		}
	}

	if terminal || (r.snapshotEvery > 0 && after.Tick%r.snapshotEvery == 0) {
		if err := r.db.SaveSnapshot(r.runID, after); err != nil {
			slog.Error("persist snapshot failed", "run_id", r.runID, "tick", after.Tick, "error", err)
		}
	}
}
