package hydrate

import (
	"fmt"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/percy-raskova/babylon-sub001/internal/world"
)

// GenConfig shapes a generated scenario.
type GenConfig struct {
	Seed        int64
	Territories int // periphery territories, in addition to the core
}

// DefaultGenConfig returns a small but structurally complete scenario shape.
func DefaultGenConfig() GenConfig {
	return GenConfig{Seed: 42, Territories: 4}
}

// Generate synthesizes a deterministic initial world: one financial core
// territory hosting core capital, a labor aristocracy, and the state
// apparatus, plus periphery territories each hosting a comprador elite,
// periphery labor, and a peasantry. Biocapacity and population fields come
// from normalized simplex noise over the territory index, so the same seed
// always yields the same world.
func Generate(cfg GenConfig) *world.State {
	if cfg.Territories < 1 {
		cfg.Territories = 1
	}
	bioNoise := opensimplex.NewNormalized(cfg.Seed)
	popNoise := opensimplex.NewNormalized(cfg.Seed + 1)

	st := world.New()

	core := &world.Territory{
		ID:          "terr:core",
		Name:        "metropolitan core",
		Sector:      world.SectorFinancial,
		Population:  4000,
		Biocapacity: 120,
	}
	st.Territories[core.ID] = core

	capital := &world.Class{
		ID: "class:core:capital", Name: "core capital", Role: world.RoleCoreCapital,
		Wealth: 5000, Organization: 0.8, Consciousness: -0.6,
		Population: 100, Repression: 0.3, PathGain: 1, Home: core.ID,
	}
	aristocracy := &world.Class{
		ID: "class:core:aristocracy", Name: "labor aristocracy", Role: world.RoleLaborAristocracy,
		Wealth: 1500, Organization: 0.4, Consciousness: -0.2,
		Population: 1800, PathGain: 1, Home: core.ID,
	}
	state := &world.Class{
		ID: "class:core:state", Name: "state apparatus", Role: world.RoleStateApparatus,
		Wealth: 2000, Organization: 0.9, Consciousness: -0.8,
		Population: 400, Repression: 0.7, PathGain: 1, Home: core.ID,
	}
	for _, c := range []*world.Class{capital, aristocracy, state} {
		st.Classes[c.ID] = c
	}
	st.AddRelation(&world.Relation{
		ID: "ext:capital:aristocracy", Kind: world.RelExtraction,
		Source: string(capital.ID), Target: string(aristocracy.ID), Strength: 0.1,
	})

	prev := core.ID
	for i := 0; i < cfg.Territories; i++ {
		x := float64(i) * 0.37
		bio := 60 + 120*bioNoise.Eval2(x, 0.5)
		pop := 1500 + 3000*popNoise.Eval2(x, 1.5)

		t := &world.Territory{
			ID:          world.TerritoryID(fmt.Sprintf("terr:%02d", i)),
			Name:        fmt.Sprintf("periphery %02d", i),
			Sector:      peripherySector(i),
			Population:  pop,
			Biocapacity: bio,
		}
		st.Territories[t.ID] = t

		comprador := &world.Class{
			ID:   world.ClassID(fmt.Sprintf("class:%02d:comprador", i)),
			Name: "comprador elite", Role: world.RoleCompradorElite,
			Wealth: 600, Organization: 0.5, Consciousness: -0.4,
			Population: 60, Repression: 0.4, PathGain: 1, Home: t.ID,
		}
		labor := &world.Class{
			ID:   world.ClassID(fmt.Sprintf("class:%02d:labor", i)),
			Name: "periphery labor", Role: world.RolePeripheryLabor,
			Wealth: 400, Organization: 0.2, Consciousness: 0.1,
			Population: pop * 0.5, PathGain: 1, Home: t.ID,
		}
		peasantry := &world.Class{
			ID:   world.ClassID(fmt.Sprintf("class:%02d:peasantry", i)),
			Name: "peasantry", Role: world.RolePeasantry,
			Wealth: 250, Organization: 0.15, Consciousness: 0.05,
			Population: pop * 0.4, PathGain: 1, Home: t.ID,
		}
		for _, c := range []*world.Class{comprador, labor, peasantry} {
			st.Classes[c.ID] = c
		}

		// Tribute chain: core capital extracts through the comprador, the
		// comprador extracts locally, the peasantry holds tenancy under it.
		st.AddRelation(&world.Relation{
			ID:   world.RelationID(fmt.Sprintf("ext:capital:%02d", i)),
			Kind: world.RelExtraction, Source: string(capital.ID), Target: string(comprador.ID), Strength: 0.2,
		})
		st.AddRelation(&world.Relation{
			ID:   world.RelationID(fmt.Sprintf("ext:%02d:labor", i)),
			Kind: world.RelExtraction, Source: string(comprador.ID), Target: string(labor.ID), Strength: 0.25,
		})
		st.AddRelation(&world.Relation{
			ID:   world.RelationID(fmt.Sprintf("ten:%02d:peasantry", i)),
			Kind: world.RelTenancy, Source: string(comprador.ID), Target: string(peasantry.ID), Strength: 0.3,
		})
		st.AddRelation(&world.Relation{
			ID:   world.RelationID(fmt.Sprintf("rep:state:%02d", i)),
			Kind: world.RelRepression, Source: string(state.ID), Target: string(labor.ID), Strength: 0.5,
		})
		st.AddRelation(&world.Relation{
			ID:   world.RelationID(fmt.Sprintf("adj:%s:%s", prev, t.ID)),
			Kind: world.RelAdjacency, Source: string(prev), Target: string(t.ID), Strength: 1,
		})
		prev = t.ID

		st.Contradictions[world.ContradictionID(fmt.Sprintf("con:%02d:labor", i))] = &world.Contradiction{
			ID:    world.ContradictionID(fmt.Sprintf("con:%02d:labor", i)),
			PoleA: comprador.ID, PoleB: labor.ID,
			Intensity: 0.1, Stage: world.StageLatent,
		}
	}

	return st
}

func peripherySector(i int) world.Sector {
	switch i % 3 {
	case 0:
		return world.SectorAgrarian
	case 1:
		return world.SectorExtractive
	default:
		return world.SectorIndustrial
	}
}
