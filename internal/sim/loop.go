// Package sim orchestrates ticks: it runs the system pipeline in its fixed
// order, commits the resulting snapshot, flushes the tick's events to the
// observer bus, and stops on the terminal signal. A tick is atomic and
// uninterruptible; cancellation is honored only between ticks, so shutdown
// can never tear state.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/percy-raskova/babylon-sub001/internal/config"
	"github.com/percy-raskova/babylon-sub001/internal/entropy"
	"github.com/percy-raskova/babylon-sub001/internal/event"
	"github.com/percy-raskova/babylon-sub001/internal/observer"
	"github.com/percy-raskova/babylon-sub001/internal/system"
	"github.com/percy-raskova/babylon-sub001/internal/world"
)

// Loop owns the world state while a tick is in flight. Observers only ever
// receive committed snapshots through the bus.
type Loop struct {
	cfg     *config.Config
	systems []system.System
	bus     *event.Bus
	history *History
	rng     *entropy.Stream
	runID   string

	current  atomic.Pointer[world.State]
	terminal atomic.Pointer[event.TerminalPayload]
}

// New builds a loop from a validated config, an initial hydrated snapshot,
// and a seed. The caller registers observers on bus before running.
func New(cfg *config.Config, initial *world.State, seed int64, bus *event.Bus) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if initial == nil {
		return nil, fmt.Errorf("%w: nil initial world state", config.ErrConfig)
	}

	l := &Loop{
		cfg:     cfg,
		systems: system.Pipeline(),
		bus:     bus,
		history: NewHistory(cfg.History.Depth),
		rng:     entropy.New(seed),
		runID:   uuid.NewString(),
	}
	l.current.Store(initial)
	l.history.Push(initial)
	return l, nil
}

// RunID identifies this run in persisted rows and the terminal payload.
func (l *Loop) RunID() string { return l.runID }

// Current returns the latest committed snapshot. Safe to call from any
// goroutine; snapshots are immutable once committed.
func (l *Loop) Current() *world.State { return l.current.Load() }

// History exposes the retention buffer for replay and inspection.
func (l *Loop) History() *History { return l.history }

// Terminal returns the terminal payload once the endgame has fired.
func (l *Loop) Terminal() *event.TerminalPayload { return l.terminal.Load() }

// Step advances exactly one tick. It returns true when the terminal event
// fired this tick. Errors are unrecoverable configuration failures; every
// per-tick fault has already been clamped into a diagnostic event by the
// responsible system.
func (l *Loop) Step() (bool, error) {
	before := l.Current()
	working := before.Clone()
	working.Tick = before.Tick + 1
	working.Aggregates.Diagnostics = 0

	rec := event.NewRecorder(working.Tick)

	for _, sys := range l.systems {
		next, err := sys.Apply(working, l.cfg, l.rng, rec)
		if err != nil {
			return false, fmt.Errorf("system %s at tick %d: %w", sys.Name(), working.Tick, err)
		}
		working = next
	}

	for _, ev := range rec.Events() {
		if ev.Kind == event.KindDiagnostic {
			working.Aggregates.Diagnostics++
		}
	}

	// The endgame detector is located through the typed registry and asked
	// synchronously, so its terminal event is stamped with this tick and
	// flushed with this tick's log.
	fired := false
	if tc, ok := l.bus.Lookup(observer.EndgameTag).(observer.TerminalClassifier); ok {
		if payload, hit := tc.Evaluate(working); hit {
			payload.RunID = l.runID
			rec.Emit(event.KindTerminal, payload)
			l.terminal.Store(&payload)
			fired = true
		}
	}

	// Commit, then notify. Nothing before this line is visible outside the
	// loop; nothing after it can change the snapshot.
	l.current.Store(working)
	l.history.Push(working)
	l.bus.Flush(before, working, rec.Events())

	return fired, nil
}

// Run advances until maxTicks is reached, the terminal event fires, or ctx
// is cancelled. Cancellation is checked only between ticks. maxTicks of 0
// means no tick limit.
func (l *Loop) Run(ctx context.Context, maxTicks uint64) (*world.State, error) {
	slog.Info("simulation started",
		"run_id", l.runID,
		"seed", l.rng.Seed(),
		"max_ticks", maxTicks,
		"observers", l.bus.Tags(),
	)

	for tick := uint64(0); maxTicks == 0 || tick < maxTicks; tick++ {
		select {
		case <-ctx.Done():
			slog.Info("simulation stopped", "run_id", l.runID, "tick", l.Current().Tick, "reason", "cancelled")
			return l.Current(), nil
		default:
		}

		fired, err := l.Step()
		if err != nil {
			return l.Current(), err
		}
		if fired {
			term := l.Terminal()
			slog.Info("simulation reached endgame",
				"run_id", l.runID,
				"tick", l.Current().Tick,
				"outcome", term.Outcome,
				"digest", term.Digest,
			)
			return l.Current(), nil
		}
	}

	slog.Info("simulation reached tick limit", "run_id", l.runID, "tick", l.Current().Tick)
	return l.Current(), nil
}
