package system

import (
	"fmt"

	"github.com/percy-raskova/babylon-sub001/internal/config"
	"github.com/percy-raskova/babylon-sub001/internal/entropy"
	"github.com/percy-raskova/babylon-sub001/internal/event"
	"github.com/percy-raskova/babylon-sub001/internal/formula"
	"github.com/percy-raskova/babylon-sub001/internal/world"
)

// Extraction moves imperial rent along extraction edges and ground rent
// along tenancy edges. Each edge transfers
// efficiency × wage differential × (strength × target wealth) from the
// extracted class to the extractor, so a lone extraction pair follows the
// closed-form geometric trajectory W·(1-k)^t.
type Extraction struct{}

func (Extraction) Name() string { return "extraction" }

func (Extraction) Apply(st *world.State, cfg *config.Config, rng *entropy.Stream, rec *event.Recorder) (*world.State, error) {
	next := st.Clone()

	for _, id := range next.RelationIDs() {
		r := next.Relations[id]
		switch r.Kind {
		case world.RelExtraction:
			applyRent(next, r, cfg.Extraction.Efficiency, cfg.Extraction.WageDifferential, rec)
		case world.RelTenancy:
			// Tenancy is rent on occupancy, not on the wage gap: the share
			// comes straight from config.
			applyRent(next, r, cfg.Extraction.TenancyRentShare, 1, rec)
		default:
			continue
		}
	}
	return next, nil
}

// applyRent transfers value from r.Target (the extracted pole) to r.Source
// (the extractor). Negative wealth is a policy violation: clamp and report.
func applyRent(next *world.State, r *world.Relation, efficiency, wageDiff float64, rec *event.Recorder) {
	src, okS := next.Classes[world.ClassID(r.Source)]
	tgt, okT := next.Classes[world.ClassID(r.Target)]
	if !okS || !okT {
		// Orphan edges are repaired by the decomposition stage; skip here.
		return
	}

	volume := r.Strength * tgt.Wealth
	rent, clamped := formula.ImperialRent(efficiency, wageDiff, volume)
	if clamped {
		rec.Diagnostic(event.CodeNumericDomain, "extraction", string(r.ID),
			fmt.Sprintf("rent inputs clamped: efficiency=%v wage_diff=%v volume=%v", efficiency, wageDiff, volume))
	}
	if rent <= 0 {
		r.Flow = 0
		return
	}

	tgt.Wealth -= rent
	src.Wealth += rent
	r.Flow = rent
	next.Aggregates.RentPool += rent

	if tgt.Wealth < 0 {
		rec.Diagnostic(event.CodeNegativeWealth, "extraction", string(tgt.ID),
			fmt.Sprintf("wealth %v clamped to 0 after rent %v", tgt.Wealth, rent))
		tgt.Wealth = 0
	}

	rec.Emit(event.KindExtraction, event.ExtractionPayload{
		Relation: string(r.ID),
		Source:   r.Source,
		Target:   r.Target,
		Amount:   rent,
	})
}
