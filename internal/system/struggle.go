package system

import (
	"fmt"

	"github.com/percy-raskova/babylon-sub001/internal/config"
	"github.com/percy-raskova/babylon-sub001/internal/entropy"
	"github.com/percy-raskova/babylon-sub001/internal/event"
	"github.com/percy-raskova/babylon-sub001/internal/formula"
	"github.com/percy-raskova/babylon-sub001/internal/world"
)

// Struggle is the event-expansion stage and the sole supplier of explicit
// resolution actions (reform, suppression, revolution). It fires revolts
// from the survival calculus, settles them against repressive capacity,
// resolves critical contradictions, and recomputes the tick's liberation
// and repression indexes for the endgame detector. Resolution re-seeds
// fresh latent contradictions between the same poles.
type Struggle struct{}

func (Struggle) Name() string { return "struggle" }

func (Struggle) Apply(st *world.State, cfg *config.Config, rng *entropy.Stream, rec *event.Recorder) (*world.State, error) {
	next := st.Clone()

	for _, id := range next.ClassIDs() {
		c, ok := next.Classes[id]
		if !ok {
			continue
		}
		if c.RevoltP < cfg.Struggle.RevoltThreshold {
			continue
		}
		if rng.Float() >= c.RevoltP {
			continue
		}
		settleRevolt(next, c, cfg, rng, rec)
	}

	// Reform: the ruling pole concedes on a critical contradiction before it
	// ruptures. Drawn per contradiction so reform remains rare and seeded.
	for _, id := range next.ContradictionIDs() {
		con := next.Contradictions[id]
		if con.Stage != world.StageCritical {
			continue
		}
		if rng.Float() < cfg.Struggle.ReformChance {
			resolve(next, con, "reform", cfg, rec)
		}
	}

	updateIndexes(next)
	return next, nil
}

// settleRevolt pits organized class power against the repression directed at
// the class. Victory reclaims the tribute flows and resolves the class's
// critical contradictions as revolution; defeat is met with suppression.
func settleRevolt(next *world.State, c *world.Class, cfg *config.Config, rng *entropy.Stream, rec *event.Recorder) {
	power := c.Organization * formula.Clamp01(c.Consciousness) * c.Population

	var opposing float64
	for _, rid := range next.Touching(string(c.ID)) {
		r := next.Relations[rid]
		if r.Kind == world.RelRepression && r.Target == string(c.ID) {
			if rep, ok := next.Classes[world.ClassID(r.Source)]; ok {
				opposing += r.Strength * rep.Repression * rep.Population
			}
		}
	}

	won := power > opposing
	rec.Emit(event.KindStruggle, event.StrugglePayload{
		Class:  string(c.ID),
		Action: "revolt",
		Won:    won,
		Power:  power,
	})

	if won {
		// Reclaim: inbound extraction edges weaken and this tick's tribute
		// flows back.
		for _, rid := range next.Touching(string(c.ID)) {
			r := next.Relations[rid]
			if (r.Kind == world.RelExtraction || r.Kind == world.RelTenancy) && r.Target == string(c.ID) {
				if src, ok := next.Classes[world.ClassID(r.Source)]; ok && r.Flow > 0 {
					reclaimed := minf(r.Flow, src.Wealth)
					src.Wealth -= reclaimed
					c.Wealth += reclaimed
				}
				r.Strength = formula.Clamp01(r.Strength * 0.5)
			}
		}
		c.Organization = formula.Clamp01(c.Organization + cfg.Struggle.OrganizationGain)

		for _, cid := range next.ContradictionIDs() {
			con := next.Contradictions[cid]
			if con.Stage == world.StageCritical && (con.PoleA == c.ID || con.PoleB == c.ID) {
				resolve(next, con, "revolution", cfg, rec)
			}
		}
		return
	}

	// Suppression: organization broken, repressive capacity hardens.
	c.Organization = formula.Clamp01(c.Organization * (1 - cfg.Struggle.RepressionBacklash))
	rec.Emit(event.KindStruggle, event.StrugglePayload{
		Class:  string(c.ID),
		Action: "suppression",
		Won:    false,
		Power:  opposing,
	})
	for _, rid := range next.Touching(string(c.ID)) {
		r := next.Relations[rid]
		if r.Kind == world.RelRepression && r.Target == string(c.ID) {
			if rep, ok := next.Classes[world.ClassID(r.Source)]; ok {
				rep.Repression = formula.Clamp01(rep.Repression + cfg.Struggle.RepressionBacklash)
			}
		}
	}
	for _, cid := range next.ContradictionIDs() {
		con := next.Contradictions[cid]
		if con.Stage == world.StageCritical && (con.PoleA == c.ID || con.PoleB == c.ID) {
			resolve(next, con, "suppression", cfg, rec)
		}
	}
}

// resolve applies an explicit resolution action to a critical contradiction
// and re-seeds the configured number of fresh latent contradictions between
// the same poles.
func resolve(next *world.State, con *world.Contradiction, action string, cfg *config.Config, rec *event.Recorder) {
	con.Stage = world.StageResolved
	con.TransitionTick = next.Tick
	con.TicksAtCeiling = 0

	if action == "reform" {
		// Concession: extraction between the poles eases off.
		for _, rid := range next.Touching(string(con.PoleA)) {
			r := next.Relations[rid]
			if r.Kind != world.RelExtraction && r.Kind != world.RelTenancy {
				continue
			}
			if (r.Source == string(con.PoleA) && r.Target == string(con.PoleB)) ||
				(r.Source == string(con.PoleB) && r.Target == string(con.PoleA)) {
				r.Strength = formula.Clamp01(r.Strength * 0.8)
			}
		}
	}

	var seeded []string
	for i := 0; i < cfg.Contradiction.ResolutionSeeds; i++ {
		id := world.ContradictionID(fmt.Sprintf("%s:r%d.%d", con.ID, next.Tick, i))
		if _, exists := next.Contradictions[id]; exists {
			continue
		}
		next.Contradictions[id] = &world.Contradiction{
			ID:             id,
			PoleA:          con.PoleA,
			PoleB:          con.PoleB,
			Intensity:      0.1,
			Stage:          world.StageLatent,
			TransitionTick: next.Tick,
		}
		seeded = append(seeded, string(id))
	}

	rec.Emit(event.KindResolution, event.ResolutionPayload{
		Contradiction: string(con.ID),
		Action:        action,
		Seeded:        seeded,
	})
}

// updateIndexes recomputes the population-weighted liberation and repression
// indexes the endgame detector reads.
func updateIndexes(next *world.State) {
	var totalPop, liberation, repression float64
	for _, id := range next.ClassIDs() {
		c := next.Classes[id]
		totalPop += c.Population
		if c.Alignment == world.AlignLiberation {
			liberation += c.Population * formula.Clamp01(c.Consciousness)
		}
		if c.Alignment == world.AlignRepression || c.Role == world.RoleStateApparatus {
			repression += c.Population * c.Repression
		}
	}
	if totalPop > 0 {
		next.Aggregates.LiberationIndex = formula.Clamp01(liberation / totalPop)
		next.Aggregates.RepressionIndex = formula.Clamp01(repression / totalPop)
	} else {
		next.Aggregates.LiberationIndex = 0
		next.Aggregates.RepressionIndex = 0
	}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
