package system

import (
	"github.com/percy-raskova/babylon-sub001/internal/config"
	"github.com/percy-raskova/babylon-sub001/internal/entropy"
	"github.com/percy-raskova/babylon-sub001/internal/event"
	"github.com/percy-raskova/babylon-sub001/internal/formula"
	"github.com/percy-raskova/babylon-sub001/internal/world"
)

// TerritoryHeat evolves state-attention intensity per territory: geometric
// decay plus gain from the revolt pressure of resident classes and from
// live critical contradictions whose poles are homed there. Heat is always
// clamped to [0,1].
type TerritoryHeat struct{}

func (TerritoryHeat) Name() string { return "territory" }

func (TerritoryHeat) Apply(st *world.State, cfg *config.Config, rng *entropy.Stream, rec *event.Recorder) (*world.State, error) {
	next := st.Clone()

	pressure := make(map[world.TerritoryID]float64)
	residents := make(map[world.TerritoryID]int)

	for _, id := range next.ClassIDs() {
		c := next.Classes[id]
		if c.Home == "" {
			continue
		}
		pressure[c.Home] += c.RevoltP
		residents[c.Home]++
	}

	for _, id := range next.ContradictionIDs() {
		con := next.Contradictions[id]
		if con.Stage != world.StageCritical && con.Stage != world.StageRuptured {
			continue
		}
		for _, pole := range []world.ClassID{con.PoleA, con.PoleB} {
			if c, ok := next.Classes[pole]; ok && c.Home != "" {
				pressure[c.Home] += con.Intensity
				residents[c.Home]++
			}
		}
	}

	for _, id := range next.TerritoryIDs() {
		t := next.Territories[id]
		local := 0.0
		if n := residents[id]; n > 0 {
			local = pressure[id] / float64(n)
		}
		t.Heat = formula.Clamp01(t.Heat*cfg.Territory.HeatDecay + cfg.Territory.HeatGain*local)
	}
	return next, nil
}
