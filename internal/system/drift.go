package system

import (
	"github.com/percy-raskova/babylon-sub001/internal/config"
	"github.com/percy-raskova/babylon-sub001/internal/entropy"
	"github.com/percy-raskova/babylon-sub001/internal/event"
	"github.com/percy-raskova/babylon-sub001/internal/formula"
	"github.com/percy-raskova/babylon-sub001/internal/world"
)

// Agitation signal weights. The burden of being extracted dominates; heat
// and live contradictions agitate; benefiting from extraction sedates.
const (
	agitationHeatWeight          = 0.5
	agitationContradictionWeight = 0.5
)

// Drift applies per-tick consciousness drift and runs the bifurcation
// machine. Drift magnitude is capped by the configured ceiling; accumulated
// drift past the hysteresis band routes the class into one of the two
// attractors, after which drift toward the attractor is amplified by the
// path gain. Routing is permanent: the machine has memory.
type Drift struct{}

func (Drift) Name() string { return "drift" }

func (Drift) Apply(st *world.State, cfg *config.Config, rng *entropy.Stream, rec *event.Recorder) (*world.State, error) {
	next := st.Clone()

	for _, id := range next.ClassIDs() {
		c := next.Classes[id]

		agitation := agitationSignal(next, c)
		drift := formula.ConsciousnessDrift(agitation, cfg.Consciousness.Sensitivity, cfg.Consciousness.DriftCeiling)

		// Path dependence: a routed class amplifies drift toward its
		// attractor. Drift against the attractor is not amplified.
		switch {
		case c.Alignment == world.AlignLiberation && drift > 0:
			drift *= c.PathGain
		case c.Alignment == world.AlignRepression && drift < 0:
			drift *= c.PathGain
		}

		c.Consciousness = formula.Clamp(c.Consciousness+drift, -1, 1)

		if c.Alignment == world.AlignUnaligned {
			c.DriftAccum += abs(drift)
			if c.DriftAccum > cfg.Consciousness.HysteresisBand {
				route(c, cfg, rec)
			}
		}
	}
	return next, nil
}

// agitationSignal is signed: positive pushes toward liberation, negative
// toward acquiescence and repression affiliation.
func agitationSignal(st *world.State, c *world.Class) float64 {
	var suffered, captured float64
	for _, rid := range st.Touching(string(c.ID)) {
		r := st.Relations[rid]
		if r.Kind != world.RelExtraction && r.Kind != world.RelTenancy {
			continue
		}
		if r.Target == string(c.ID) {
			suffered += r.Flow
		}
		if r.Source == string(c.ID) {
			captured += r.Flow
		}
	}
	wealth := c.Wealth
	if wealth < 1 {
		wealth = 1
	}
	burden := formula.Clamp01(suffered / wealth)
	comfort := formula.Clamp01(captured / wealth)

	heat := 0.0
	if t, ok := st.Territories[c.Home]; ok {
		heat = t.Heat
	}

	tension := 0.0
	live := 0
	for _, cid := range st.ContradictionIDs() {
		con := st.Contradictions[cid]
		if con.Stage.Terminal() || (con.PoleA != c.ID && con.PoleB != c.ID) {
			continue
		}
		tension += con.Intensity
		live++
	}
	if live > 0 {
		tension /= float64(live)
	}

	return formula.Clamp(burden+agitationHeatWeight*heat+agitationContradictionWeight*tension-comfort, -1, 1)
}

// route classifies the class into an attractor by the sign of its
// consciousness at the moment the band is crossed. A class sitting exactly
// at zero keeps accumulating.
func route(c *world.Class, cfg *config.Config, rec *event.Recorder) {
	switch {
	case c.Consciousness > 0:
		c.Alignment = world.AlignLiberation
	case c.Consciousness < 0:
		c.Alignment = world.AlignRepression
	default:
		return
	}
	c.PathGain = cfg.Consciousness.PathGain
	rec.Emit(event.KindBifurcation, event.BifurcationPayload{
		Class:     string(c.ID),
		Alignment: c.Alignment.String(),
		Drift:     c.DriftAccum,
	})
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
