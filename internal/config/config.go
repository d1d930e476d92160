// Package config defines the immutable coefficient set driving the
// simulation. Every tunable the formula library consumes lives here,
// grouped by subsystem and validated against declared bounds at load time.
// A Config value is threaded explicitly through every system call; there is
// no ambient or global configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrConfig marks malformed or out-of-range configuration. It is the only
// fatal error class: it aborts before the first tick.
var ErrConfig = errors.New("invalid configuration")

// Config is the complete coefficient set. Zero value is invalid; start from
// Default().
type Config struct {
	Extraction    Extraction    `yaml:"extraction"`
	Solidarity    Solidarity    `yaml:"solidarity"`
	Consciousness Consciousness `yaml:"consciousness"`
	Survival      Survival      `yaml:"survival"`
	Contradiction Contradiction `yaml:"contradiction"`
	Territory     Territory     `yaml:"territory"`
	Metabolism    Metabolism    `yaml:"metabolism"`
	Struggle      Struggle      `yaml:"struggle"`
	Decomposition Decomposition `yaml:"decomposition"`
	Endgame       Endgame       `yaml:"endgame"`
	History       History       `yaml:"history"`
}

// Extraction tunes imperial-rent transfer along extraction and tenancy
// edges.
type Extraction struct {
	// Efficiency is the extraction-efficiency coefficient, [0,1].
	Efficiency float64 `yaml:"efficiency"`
	// WageDifferential is the core/periphery wage gap factor, [0,1].
	WageDifferential float64 `yaml:"wage_differential"`
	// TenancyRentShare is the share of tenant wealth ceded per tick, [0,1].
	TenancyRentShare float64 `yaml:"tenancy_rent_share"`
}

// Solidarity tunes consciousness diffusion and solidarity-edge lifecycle.
type Solidarity struct {
	TransmissionRate float64 `yaml:"transmission_rate"` // [0,1]
	DecayFactor      float64 `yaml:"decay_factor"`      // [0,1] geometric per tick
	PruneThreshold   float64 `yaml:"prune_threshold"`   // [0,1]
	FormThreshold    float64 `yaml:"form_threshold"`    // [0,1] consciousness needed to link
	SeedStrength     float64 `yaml:"seed_strength"`     // [0,1] strength of new edges
}

// Consciousness tunes drift and the bifurcation machine.
type Consciousness struct {
	Sensitivity    float64 `yaml:"sensitivity"`     // [0,1]
	DriftCeiling   float64 `yaml:"drift_ceiling"`   // [0,1] cap on |drift| per tick
	HysteresisBand float64 `yaml:"hysteresis_band"` // [0,1] accumulated drift before routing
	PathGain       float64 `yaml:"path_gain"`       // [1,4] amplification once routed
}

// Survival tunes the acquiescence/revolt calculus.
type Survival struct {
	LossAversion     float64 `yaml:"loss_aversion"`     // [1,5]
	RiskDiscount     float64 `yaml:"risk_discount"`     // [0,1]
	SigmoidSteepness float64 `yaml:"sigmoid_steepness"` // (0,10]
}

// Contradiction tunes the dialectical state machine.
type Contradiction struct {
	GrowthRate        float64 `yaml:"growth_rate"`        // [0,1] intensity gain per unit tension
	ActiveThreshold   float64 `yaml:"active_threshold"`   // [0,1]
	CriticalThreshold float64 `yaml:"critical_threshold"` // [0,1], ≥ active
	RuptureCeiling    float64 `yaml:"rupture_ceiling"`    // [0,1], ≥ critical
	RuptureWindow     int     `yaml:"rupture_window"`     // ≥1 consecutive ticks at ceiling
	ResolutionSeeds   int     `yaml:"resolution_seeds"`   // [0,3] latent contradictions per resolution
}

// Territory tunes heat dynamics.
type Territory struct {
	HeatGain  float64 `yaml:"heat_gain"`  // [0,1]
	HeatDecay float64 `yaml:"heat_decay"` // [0,1] geometric per tick
}

// Metabolism tunes resource draw against regenerative capacity.
type Metabolism struct {
	DrawPerCapita float64 `yaml:"draw_per_capita"` // ≥0
	RegenRate     float64 `yaml:"regen_rate"`      // [0,1] of biocapacity per tick
	DegradeRate   float64 `yaml:"degrade_rate"`    // [0,1] biocapacity loss while overshot
}

// Struggle tunes event expansion and resolution actions.
type Struggle struct {
	RevoltThreshold    float64 `yaml:"revolt_threshold"`    // [0,1] revolt probability that can fire
	ReformChance       float64 `yaml:"reform_chance"`       // [0,1] per critical contradiction per tick
	OrganizationGain   float64 `yaml:"organization_gain"`   // [0,1] per struggle won
	RepressionBacklash float64 `yaml:"repression_backlash"` // [0,1] repression rise after suppression
}

// Decomposition tunes class decomposition and control-ratio checks.
type Decomposition struct {
	SubsistencePerCapita float64 `yaml:"subsistence_per_capita"` // ≥0 wealth/population floor
	ControlRatioLimit    float64 `yaml:"control_ratio_limit"`    // ≥1 repression/organization ceiling
}

// Endgame tunes the terminal-state predicates.
type Endgame struct {
	VictoryThreshold  float64 `yaml:"victory_threshold"`  // [0,1] liberation index dominance
	CollapseThreshold float64 `yaml:"collapse_threshold"` // ≥1 global overshoot ratio
	CollapseWindow    int     `yaml:"collapse_window"`    // ≥1 consecutive ticks
	FascismThreshold  float64 `yaml:"fascism_threshold"`  // ≥1 repression/resistance ratio
	FascismWindow     int     `yaml:"fascism_window"`     // ≥1 consecutive ticks
}

// History tunes snapshot retention.
type History struct {
	Depth int `yaml:"depth"` // ≥1 snapshots kept in the ring buffer
}

// Default returns a valid baseline configuration.
func Default() *Config {
	return &Config{
		Extraction: Extraction{
			Efficiency:       0.6,
			WageDifferential: 0.5,
			TenancyRentShare: 0.15,
		},
		Solidarity: Solidarity{
			TransmissionRate: 0.3,
			DecayFactor:      0.95,
			PruneThreshold:   0.05,
			FormThreshold:    0.5,
			SeedStrength:     0.3,
		},
		Consciousness: Consciousness{
			Sensitivity:    0.4,
			DriftCeiling:   0.1,
			HysteresisBand: 0.25,
			PathGain:       1.6,
		},
		Survival: Survival{
			LossAversion:     2.25,
			RiskDiscount:     0.5,
			SigmoidSteepness: 1.0,
		},
		Contradiction: Contradiction{
			GrowthRate:        0.15,
			ActiveThreshold:   0.3,
			CriticalThreshold: 0.6,
			RuptureCeiling:    0.85,
			RuptureWindow:     3,
			ResolutionSeeds:   1,
		},
		Territory: Territory{
			HeatGain:  0.2,
			HeatDecay: 0.9,
		},
		Metabolism: Metabolism{
			DrawPerCapita: 0.01,
			RegenRate:     0.05,
			DegradeRate:   0.02,
		},
		Struggle: Struggle{
			RevoltThreshold:    0.55,
			ReformChance:       0.2,
			OrganizationGain:   0.05,
			RepressionBacklash: 0.1,
		},
		Decomposition: Decomposition{
			SubsistencePerCapita: 0.05,
			ControlRatioLimit:    4.0,
		},
		Endgame: Endgame{
			VictoryThreshold:  0.6,
			CollapseThreshold: 1.5,
			CollapseWindow:    5,
			FascismThreshold:  2.0,
			FascismWindow:     5,
		},
		History: History{Depth: 256},
	}
}

// Load reads and validates a YAML config file. Unset groups fall back to
// defaults; set fields replace them wholesale.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return Parse(raw)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(raw []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every coefficient against its declared bounds and reports
// all violations at once.
func (c *Config) Validate() error {
	var bad []string
	unit := func(name string, v float64) {
		if v < 0 || v > 1 {
			bad = append(bad, fmt.Sprintf("%s=%v outside [0,1]", name, v))
		}
	}
	atLeast := func(name string, v, lo float64) {
		if v < lo {
			bad = append(bad, fmt.Sprintf("%s=%v below %v", name, v, lo))
		}
	}
	between := func(name string, v, lo, hi float64) {
		if v < lo || v > hi {
			bad = append(bad, fmt.Sprintf("%s=%v outside [%v,%v]", name, v, lo, hi))
		}
	}
	window := func(name string, v int) {
		if v < 1 {
			bad = append(bad, fmt.Sprintf("%s=%d below 1", name, v))
		}
	}

	unit("extraction.efficiency", c.Extraction.Efficiency)
	unit("extraction.wage_differential", c.Extraction.WageDifferential)
	unit("extraction.tenancy_rent_share", c.Extraction.TenancyRentShare)

	unit("solidarity.transmission_rate", c.Solidarity.TransmissionRate)
	unit("solidarity.decay_factor", c.Solidarity.DecayFactor)
	unit("solidarity.prune_threshold", c.Solidarity.PruneThreshold)
	unit("solidarity.form_threshold", c.Solidarity.FormThreshold)
	unit("solidarity.seed_strength", c.Solidarity.SeedStrength)

	unit("consciousness.sensitivity", c.Consciousness.Sensitivity)
	unit("consciousness.drift_ceiling", c.Consciousness.DriftCeiling)
	unit("consciousness.hysteresis_band", c.Consciousness.HysteresisBand)
	between("consciousness.path_gain", c.Consciousness.PathGain, 1, 4)

	between("survival.loss_aversion", c.Survival.LossAversion, 1, 5)
	unit("survival.risk_discount", c.Survival.RiskDiscount)
	if c.Survival.SigmoidSteepness <= 0 || c.Survival.SigmoidSteepness > 10 {
		bad = append(bad, fmt.Sprintf("survival.sigmoid_steepness=%v outside (0,10]", c.Survival.SigmoidSteepness))
	}

	unit("contradiction.growth_rate", c.Contradiction.GrowthRate)
	unit("contradiction.active_threshold", c.Contradiction.ActiveThreshold)
	unit("contradiction.critical_threshold", c.Contradiction.CriticalThreshold)
	unit("contradiction.rupture_ceiling", c.Contradiction.RuptureCeiling)
	if c.Contradiction.CriticalThreshold < c.Contradiction.ActiveThreshold {
		bad = append(bad, "contradiction.critical_threshold below active_threshold")
	}
	if c.Contradiction.RuptureCeiling < c.Contradiction.CriticalThreshold {
		bad = append(bad, "contradiction.rupture_ceiling below critical_threshold")
	}
	window("contradiction.rupture_window", c.Contradiction.RuptureWindow)
	if c.Contradiction.ResolutionSeeds < 0 || c.Contradiction.ResolutionSeeds > 3 {
		bad = append(bad, fmt.Sprintf("contradiction.resolution_seeds=%d outside [0,3]", c.Contradiction.ResolutionSeeds))
	}

	unit("territory.heat_gain", c.Territory.HeatGain)
	unit("territory.heat_decay", c.Territory.HeatDecay)

	atLeast("metabolism.draw_per_capita", c.Metabolism.DrawPerCapita, 0)
	unit("metabolism.regen_rate", c.Metabolism.RegenRate)
	unit("metabolism.degrade_rate", c.Metabolism.DegradeRate)

	unit("struggle.revolt_threshold", c.Struggle.RevoltThreshold)
	unit("struggle.reform_chance", c.Struggle.ReformChance)
	unit("struggle.organization_gain", c.Struggle.OrganizationGain)
	unit("struggle.repression_backlash", c.Struggle.RepressionBacklash)

	atLeast("decomposition.subsistence_per_capita", c.Decomposition.SubsistencePerCapita, 0)
	atLeast("decomposition.control_ratio_limit", c.Decomposition.ControlRatioLimit, 1)

	unit("endgame.victory_threshold", c.Endgame.VictoryThreshold)
	atLeast("endgame.collapse_threshold", c.Endgame.CollapseThreshold, 1)
	window("endgame.collapse_window", c.Endgame.CollapseWindow)
	atLeast("endgame.fascism_threshold", c.Endgame.FascismThreshold, 1)
	window("endgame.fascism_window", c.Endgame.FascismWindow)

	window("history.depth", c.History.Depth)

	if len(bad) > 0 {
		return fmt.Errorf("%w: %s", ErrConfig, strings.Join(bad, "; "))
	}
	return nil
}
