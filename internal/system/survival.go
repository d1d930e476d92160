package system

import (
	"github.com/percy-raskova/babylon-sub001/internal/config"
	"github.com/percy-raskova/babylon-sub001/internal/entropy"
	"github.com/percy-raskova/babylon-sub001/internal/event"
	"github.com/percy-raskova/babylon-sub001/internal/formula"
	"github.com/percy-raskova/babylon-sub001/internal/world"
)

// Survival recomputes each class's acquiescence and revolt probabilities
// from its material position. The probabilities are caches on the class,
// consumed later in the same tick by the territory and struggle stages.
type Survival struct{}

func (Survival) Name() string { return "survival" }

func (Survival) Apply(st *world.State, cfg *config.Config, rng *entropy.Stream, rec *event.Recorder) (*world.State, error) {
	next := st.Clone()

	for _, id := range next.ClassIDs() {
		c := next.Classes[id]

		pop := c.Population
		if pop < 1 {
			pop = 1
		}

		var suffered float64
		var repressionFaced float64
		for _, rid := range next.Touching(string(c.ID)) {
			r := next.Relations[rid]
			if r.Target != string(c.ID) {
				continue
			}
			switch r.Kind {
			case world.RelExtraction, world.RelTenancy:
				suffered += r.Flow
			case world.RelRepression:
				repressionFaced += r.Strength
			}
		}
		repressionFaced = formula.Clamp01(repressionFaced)

		in := formula.SurvivalInputs{
			GainIfAcquiesce: c.Wealth / pop,
			LossIfAcquiesce: suffered / pop,
			GainIfRevolt:    suffered, // the whole tribute is the stake
			LossIfRevolt:    repressionFaced * c.Wealth / pop,
			RepressionRisk:  formula.Clamp01(repressionFaced - c.Organization*0.5),
		}

		c.AcquiesceP = formula.Acquiescence(in, cfg.Survival.LossAversion, cfg.Survival.SigmoidSteepness)
		c.RevoltP = formula.RevoltProbability(c.AcquiesceP, c.Consciousness, c.Organization,
			in.RepressionRisk, cfg.Survival.RiskDiscount)
	}
	return next, nil
}
