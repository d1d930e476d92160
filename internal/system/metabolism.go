package system

import (
	"fmt"

	"github.com/percy-raskova/babylon-sub001/internal/config"
	"github.com/percy-raskova/babylon-sub001/internal/entropy"
	"github.com/percy-raskova/babylon-sub001/internal/event"
	"github.com/percy-raskova/babylon-sub001/internal/formula"
	"github.com/percy-raskova/babylon-sub001/internal/world"
)

// overshootCap bounds the stored ratio so a guarded-division sentinel never
// leaks into snapshots or digests.
const overshootCap = 100.0

// Metabolism computes per-territory resource draw against regenerative
// capacity. Territories drawing above regeneration degrade their
// biocapacity and report an overshoot event; the global draw/regeneration
// ratio feeds the ecological-collapse predicate.
type Metabolism struct{}

func (Metabolism) Name() string { return "metabolism" }

func (Metabolism) Apply(st *world.State, cfg *config.Config, rng *entropy.Stream, rec *event.Recorder) (*world.State, error) {
	next := st.Clone()

	var totalDraw, totalRegen float64
	for _, id := range next.TerritoryIDs() {
		t := next.Territories[id]

		t.Draw = cfg.Metabolism.DrawPerCapita * t.Population
		regen := cfg.Metabolism.RegenRate * t.Biocapacity

		ratio := formula.Overshoot(t.Draw, regen)
		if ratio == formula.DivSentinel {
			rec.Diagnostic(event.CodeNumericDomain, "metabolism", string(t.ID),
				fmt.Sprintf("non-positive regeneration %v, overshoot capped", regen))
			ratio = overshootCap
		}
		if ratio > overshootCap {
			ratio = overshootCap
		}
		t.Overshoot = ratio

		totalDraw += t.Draw
		totalRegen += regen

		if ratio > 1 {
			// Drawdown: biocapacity erodes in proportion to the excess.
			t.Biocapacity -= cfg.Metabolism.DegradeRate * t.Biocapacity * (ratio - 1)
			if t.Biocapacity < 0 {
				t.Biocapacity = 0
			}
			rec.Emit(event.KindOvershoot, event.OvershootPayload{
				Territory: string(t.ID),
				Ratio:     ratio,
			})
		}
	}

	global := 0.0
	if totalDraw > 0 {
		global = formula.Overshoot(totalDraw, totalRegen)
		if global == formula.DivSentinel || global > overshootCap {
			global = overshootCap
		}
	}
	next.Aggregates.Overshoot = global
	return next, nil
}
