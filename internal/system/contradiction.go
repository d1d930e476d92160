package system

import (
	"github.com/percy-raskova/babylon-sub001/internal/config"
	"github.com/percy-raskova/babylon-sub001/internal/entropy"
	"github.com/percy-raskova/babylon-sub001/internal/event"
	"github.com/percy-raskova/babylon-sub001/internal/formula"
	"github.com/percy-raskova/babylon-sub001/internal/world"
)

// ContradictionEvolution advances the dialectical state machine. Intensity
// relaxes toward the material tension between the poles; stages advance one
// step per tick when thresholds are crossed and never regress:
//
//	LATENT → ACTIVE → CRITICAL → {RESOLVED, RUPTURED}
//
// RESOLVED is reachable only through an explicit resolution action supplied
// by the struggle stage; this stage handles everything up to rupture.
// Rupture fires once intensity has held above the ceiling for the configured
// number of consecutive ticks.
type ContradictionEvolution struct{}

func (ContradictionEvolution) Name() string { return "contradiction" }

func (ContradictionEvolution) Apply(st *world.State, cfg *config.Config, rng *entropy.Stream, rec *event.Recorder) (*world.State, error) {
	next := st.Clone()

	for _, id := range next.ContradictionIDs() {
		con := next.Contradictions[id]
		if con.Stage.Terminal() {
			continue
		}

		tension := poleTension(next, con)
		con.Intensity = formula.Clamp01(con.Intensity + cfg.Contradiction.GrowthRate*(tension-con.Intensity))

		switch con.Stage {
		case world.StageLatent:
			if con.Intensity >= cfg.Contradiction.ActiveThreshold {
				transition(con, world.StageActive, next.Tick, rec)
			}
		case world.StageActive:
			if con.Intensity >= cfg.Contradiction.CriticalThreshold {
				transition(con, world.StageCritical, next.Tick, rec)
			}
		case world.StageCritical:
			if con.Intensity > cfg.Contradiction.RuptureCeiling {
				con.TicksAtCeiling++
			} else {
				con.TicksAtCeiling = 0
			}
			if con.TicksAtCeiling >= cfg.Contradiction.RuptureWindow {
				transition(con, world.StageRuptured, next.Tick, rec)
				rec.Emit(event.KindRupture, event.ContradictionPayload{
					Contradiction: string(con.ID),
					From:          world.StageCritical.String(),
					To:            world.StageRuptured.String(),
					Intensity:     con.Intensity,
				})
			}
		}
	}
	return next, nil
}

func transition(con *world.Contradiction, to world.ContradictionStage, tick uint64, rec *event.Recorder) {
	from := con.Stage
	con.Stage = to
	con.TransitionTick = tick
	rec.Emit(event.KindContradictionStage, event.ContradictionPayload{
		Contradiction: string(con.ID),
		From:          from.String(),
		To:            to.String(),
		Intensity:     con.Intensity,
	})
}

// Tension composition weights: the wealth gap between the poles carries the
// most, active extraction between them next, territorial heat last.
const (
	tensionGapWeight  = 0.5
	tensionFlowWeight = 0.3
	tensionHeatWeight = 0.2
)

// poleTension measures the material tension between a contradiction's poles
// in [0,1]. Missing poles yield zero tension; the decomposition stage will
// report the orphan.
func poleTension(st *world.State, con *world.Contradiction) float64 {
	a, okA := st.Classes[con.PoleA]
	b, okB := st.Classes[con.PoleB]
	if !okA || !okB {
		return 0
	}

	perCapA := a.Wealth / maxf(a.Population, 1)
	perCapB := b.Wealth / maxf(b.Population, 1)
	gap := formula.Clamp01(abs(perCapA-perCapB) / maxf(perCapA+perCapB, 1e-9))

	var flow, exposed float64
	for _, rid := range st.Touching(string(a.ID)) {
		r := st.Relations[rid]
		if r.Kind != world.RelExtraction && r.Kind != world.RelTenancy {
			continue
		}
		if (r.Source == string(a.ID) && r.Target == string(b.ID)) ||
			(r.Source == string(b.ID) && r.Target == string(a.ID)) {
			flow += r.Flow
			exposed += maxf(a.Wealth, b.Wealth)
		}
	}
	flowNorm := 0.0
	if exposed > 0 {
		flowNorm = formula.Clamp01(flow / exposed * 10)
	}

	heat := 0.0
	n := 0
	for _, home := range []world.TerritoryID{a.Home, b.Home} {
		if t, ok := st.Territories[home]; ok {
			heat += t.Heat
			n++
		}
	}
	if n > 0 {
		heat /= float64(n)
	}

	return formula.Clamp01(tensionGapWeight*gap + tensionFlowWeight*flowNorm + tensionHeatWeight*heat)
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
