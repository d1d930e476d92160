package system

import (
	"fmt"

	"github.com/percy-raskova/babylon-sub001/internal/config"
	"github.com/percy-raskova/babylon-sub001/internal/entropy"
	"github.com/percy-raskova/babylon-sub001/internal/event"
	"github.com/percy-raskova/babylon-sub001/internal/formula"
	"github.com/percy-raskova/babylon-sub001/internal/world"
)

// Solidarity diffuses consciousness along solidarity edges, decays edge
// strength geometrically, prunes edges at or below the minimum-strength
// threshold, and forms new edges between conscious classes that share an
// extractor.
type Solidarity struct{}

func (Solidarity) Name() string { return "solidarity" }

func (Solidarity) Apply(st *world.State, cfg *config.Config, rng *entropy.Stream, rec *event.Recorder) (*world.State, error) {
	next := st.Clone()

	// Diffusion reads the pre-diffusion snapshot so edge order cannot bias
	// the result: all deltas are computed against st, then applied at once.
	deltas := make(map[world.ClassID]float64)
	for _, r := range st.RelationsOfKind(world.RelSolidarity) {
		a, okA := st.Classes[world.ClassID(r.Source)]
		b, okB := st.Classes[world.ClassID(r.Target)]
		if !okA || !okB {
			continue
		}
		rate := cfg.Solidarity.TransmissionRate
		deltas[a.ID] += formula.SolidarityDiffusion(a.Consciousness, b.Consciousness, r.Strength, rate)
		deltas[b.ID] += formula.SolidarityDiffusion(b.Consciousness, a.Consciousness, r.Strength, rate)
	}
	for id, d := range deltas {
		c := next.Classes[id]
		c.Consciousness = formula.Clamp(c.Consciousness+d, -1, 1)
	}

	// Geometric decay, then prune. An edge that decays to the threshold or
	// below is gone by the next tick.
	for _, id := range next.RelationIDs() {
		r := next.Relations[id]
		if r.Kind != world.RelSolidarity {
			continue
		}
		r.Strength = formula.EdgeDecay(r.Strength, cfg.Solidarity.DecayFactor)
		if r.Strength <= cfg.Solidarity.PruneThreshold {
			next.RemoveRelation(id)
			rec.Emit(event.KindSolidarityPruned, event.EdgePayload{
				Relation: string(id),
				Source:   r.Source,
				Target:   r.Target,
				Strength: r.Strength,
			})
		}
	}

	formEdges(next, cfg, rec)
	return next, nil
}

// formEdges links pairs of classes that both clear the consciousness
// threshold, share an extractor, and are not yet linked.
func formEdges(next *world.State, cfg *config.Config, rec *event.Recorder) {
	ids := next.ClassIDs()
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := next.Classes[ids[i]], next.Classes[ids[j]]
			if a.Consciousness < cfg.Solidarity.FormThreshold || b.Consciousness < cfg.Solidarity.FormThreshold {
				continue
			}
			if next.HasRelationBetween(world.RelSolidarity, string(a.ID), string(b.ID)) {
				continue
			}
			if !shareExtractor(next, a.ID, b.ID) {
				continue
			}
			r := &world.Relation{
				ID:       world.RelationID(fmt.Sprintf("sol:%s:%s", a.ID, b.ID)),
				Kind:     world.RelSolidarity,
				Source:   string(a.ID),
				Target:   string(b.ID),
				Strength: cfg.Solidarity.SeedStrength,
			}
			next.AddRelation(r)
			rec.Emit(event.KindSolidarityFormed, event.EdgePayload{
				Relation: string(r.ID),
				Source:   r.Source,
				Target:   r.Target,
				Strength: r.Strength,
			})
		}
	}
}

// shareExtractor reports whether the same class extracts from both a and b.
func shareExtractor(st *world.State, a, b world.ClassID) bool {
	extractorsOf := func(id world.ClassID) map[string]bool {
		out := make(map[string]bool)
		for _, rid := range st.Touching(string(id)) {
			r := st.Relations[rid]
			if (r.Kind == world.RelExtraction || r.Kind == world.RelTenancy) && r.Target == string(id) {
				out[r.Source] = true
			}
		}
		return out
	}
	ea := extractorsOf(a)
	for e := range extractorsOf(b) {
		if ea[e] {
			return true
		}
	}
	return false
}
