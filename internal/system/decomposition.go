package system

import (
	"fmt"

	"github.com/percy-raskova/babylon-sub001/internal/config"
	"github.com/percy-raskova/babylon-sub001/internal/entropy"
	"github.com/percy-raskova/babylon-sub001/internal/event"
	"github.com/percy-raskova/babylon-sub001/internal/formula"
	"github.com/percy-raskova/babylon-sub001/internal/world"
)

// Decomposition runs the per-tick integrity and control-ratio checks:
// orphan edges are dropped with a diagnostic, classes that can no longer
// reproduce themselves decompose into the territory's informal proletariat,
// and organization erodes wherever repressive capacity dominates it beyond
// the configured control ratio.
type Decomposition struct{}

func (Decomposition) Name() string { return "decomposition" }

func (Decomposition) Apply(st *world.State, cfg *config.Config, rng *entropy.Stream, rec *event.Recorder) (*world.State, error) {
	next := st.Clone()

	decompose(next, cfg, rec)

	// Repair pass: relations referencing removed classes are invariant
	// violations, dropped and reported, never silently ignored.
	for _, id := range next.Normalize() {
		rec.Diagnostic(event.CodeOrphanEdge, "decomposition", string(id),
			"relation referenced a removed node and was dropped")
	}

	controlRatioCheck(next, cfg)
	return next, nil
}

// decompose removes classes below the subsistence floor and folds their
// population and residual wealth into the informal proletariat of their
// home territory, creating that class if the territory lacks one.
func decompose(next *world.State, cfg *config.Config, rec *event.Recorder) {
	for _, id := range next.ClassIDs() {
		c := next.Classes[id]
		if c.Role == world.RoleInformalProletariat || c.Role == world.RoleStateApparatus {
			continue
		}
		perCapita := c.Wealth / maxf(c.Population, 1)
		if perCapita >= cfg.Decomposition.SubsistencePerCapita {
			continue
		}

		sink := informalSink(next, c.Home)
		if sink == nil {
			sink = &world.Class{
				ID:         world.ClassID(fmt.Sprintf("class:%s:informal", c.Home)),
				Name:       "informal proletariat",
				Role:       world.RoleInformalProletariat,
				Home:       c.Home,
				PathGain:   1,
				Population: 0,
			}
			next.Classes[sink.ID] = sink
		}
		sink.Population += c.Population
		sink.Wealth += c.Wealth
		// Consciousness carries over population-weighted; organization is
		// what decomposition destroys.
		if sink.Population > 0 {
			sink.Consciousness = formula.Clamp(
				(sink.Consciousness*(sink.Population-c.Population)+c.Consciousness*c.Population)/sink.Population,
				-1, 1)
		}

		delete(next.Classes, id)
		rec.Emit(event.KindDecomposition, event.DecompositionPayload{
			Class:    string(id),
			Reason:   "below subsistence floor",
			Absorbed: string(sink.ID),
			Wealth:   c.Wealth,
		})
	}
}

func informalSink(st *world.State, home world.TerritoryID) *world.Class {
	for _, id := range st.ClassIDs() {
		c := st.Classes[id]
		if c.Role == world.RoleInformalProletariat && c.Home == home {
			return c
		}
	}
	return nil
}

// controlRatioCheck erodes organization where repression dominates it past
// the configured limit. Demoralization, not elimination: organization decays
// geometrically while the ratio holds.
func controlRatioCheck(next *world.State, cfg *config.Config) {
	for _, id := range next.ClassIDs() {
		c := next.Classes[id]
		if c.Organization <= 0 {
			continue
		}
		var faced float64
		for _, rid := range next.Touching(string(c.ID)) {
			r := next.Relations[rid]
			if r.Kind == world.RelRepression && r.Target == string(c.ID) {
				faced += r.Strength
			}
		}
		if faced/c.Organization > cfg.Decomposition.ControlRatioLimit {
			c.Organization = formula.Clamp01(c.Organization * 0.95)
		}
	}
}
