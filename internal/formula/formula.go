// Package formula implements the political-economy calculus as pure,
// stateless functions. Every function is deterministic, documents its
// numeric domain, and clamps rather than overflows: out-of-domain input is
// pulled to the nearest boundary and reported through the second return
// value where callers need to emit a diagnostic.
package formula

import "math"

// DivSentinel is returned by guarded divisions when the denominator is not
// strictly positive. Callers treat it as "ratio undefined, maximally out of
// balance".
const DivSentinel = math.MaxFloat64

// Clamp pulls v into [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 pulls v into the unit interval.
func Clamp01(v float64) float64 { return Clamp(v, 0, 1) }

// GuardedDiv divides num by den, returning DivSentinel when den is not
// strictly positive. NaN never escapes.
func GuardedDiv(num, den float64) float64 {
	if den <= 0 {
		return DivSentinel
	}
	return num / den
}

// Logistic is the standard sigmoid with steepness k evaluated at x.
// Range (0,1) for finite input.
func Logistic(x, k float64) float64 {
	return 1.0 / (1.0 + math.Exp(-k*x))
}

// ImperialRent computes the value transferred through one extraction edge in
// one tick: efficiency × wage differential × exposed volume.
//
// Domain: efficiency and wageDiff in [0,1], volume ≥ 0. Out-of-domain input
// is clamped and reported. Range: [0, volume].
func ImperialRent(efficiency, wageDiff, volume float64) (rent float64, clamped bool) {
	if efficiency < 0 || efficiency > 1 {
		efficiency = Clamp01(efficiency)
		clamped = true
	}
	if wageDiff < 0 || wageDiff > 1 {
		wageDiff = Clamp01(wageDiff)
		clamped = true
	}
	if volume < 0 {
		volume = 0
		clamped = true
	}
	return efficiency * wageDiff * volume, clamped
}

// ExchangeRatio is the ratio of value exported to value imported across a
// trade boundary. Non-positive imports yield DivSentinel.
func ExchangeRatio(exported, imported float64) float64 {
	return GuardedDiv(exported, imported)
}

// ValueTransfer converts an exchange ratio and traded volume into the net
// value ceded by the weaker party. A ratio at or below 1 transfers nothing;
// the sentinel ratio transfers the whole volume.
func ValueTransfer(ratio, volume float64) float64 {
	if volume <= 0 {
		return 0
	}
	if ratio == DivSentinel {
		return volume
	}
	if ratio <= 1 {
		return 0
	}
	return Clamp(volume*(1-1/ratio), 0, volume)
}

// SurvivalInputs are the perceived stakes feeding the survival calculus.
// All fields are expressed in the same value units.
type SurvivalInputs struct {
	GainIfAcquiesce float64 // expected payoff of compliance
	LossIfAcquiesce float64 // expected ongoing loss under compliance
	GainIfRevolt    float64 // expected payoff of successful revolt
	LossIfRevolt    float64 // expected cost of repression if revolt fails
	RepressionRisk  float64 // probability the revolt is crushed, [0,1]
}

// Acquiescence returns the probability a class acquiesces, from the
// loss-averse utility gap between compliance and revolt. lossAversion ≥ 1
// multiplies perceived losses only (the asymmetry is the point: losses loom
// larger than gains). steepness > 0 sets the sigmoid slope.
//
// Range: [0,1].
func Acquiescence(in SurvivalInputs, lossAversion, steepness float64) float64 {
	if lossAversion < 1 {
		lossAversion = 1
	}
	risk := Clamp01(in.RepressionRisk)

	uAcquiesce := in.GainIfAcquiesce - lossAversion*in.LossIfAcquiesce
	uRevolt := (1-risk)*in.GainIfRevolt - lossAversion*risk*in.LossIfRevolt

	return Clamp01(Logistic(uAcquiesce-uRevolt, steepness))
}

// RevoltProbability returns the risk-discounted probability of revolt.
// consciousness in [-1,1], organization in [0,1], riskDiscount in [0,1];
// a higher discount suppresses the revolt probability more per unit of
// perceived repression risk.
//
// Range: [0,1]. Negative consciousness (repression-aligned) yields zero.
func RevoltProbability(acquiescence, consciousness, organization, repressionRisk, riskDiscount float64) float64 {
	c := Clamp(consciousness, -1, 1)
	if c <= 0 {
		return 0
	}
	base := (1 - Clamp01(acquiescence)) * c * Clamp01(organization)
	discount := 1 - Clamp01(riskDiscount)*Clamp01(repressionRisk)
	return Clamp01(base * discount)
}

// ConsciousnessDrift returns the per-tick consciousness delta: agitation
// scaled by sensitivity, magnitude capped at ceiling. Agitation may be of
// either sign; ceiling ≥ 0 bounds |drift|.
func ConsciousnessDrift(agitation, sensitivity, ceiling float64) float64 {
	if ceiling < 0 {
		ceiling = 0
	}
	return Clamp(agitation*sensitivity, -ceiling, ceiling)
}

// SolidarityDiffusion returns the consciousness delta received by a node
// from one solidarity neighbor: the gap toward the neighbor scaled by edge
// strength and the transmission rate. Diffusion pulls toward the neighbor,
// never past it.
//
// Domain: strength and rate in [0,1]. Range: |delta| ≤ |neighbor-own|.
func SolidarityDiffusion(own, neighbor, strength, rate float64) float64 {
	return (neighbor - own) * Clamp01(strength) * Clamp01(rate)
}

// EdgeDecay applies one tick of geometric decay: strength × decay.
// Domain: both in [0,1].
func EdgeDecay(strength, decay float64) float64 {
	return Clamp01(strength) * Clamp01(decay)
}

// Overshoot is the metabolic overshoot ratio: resource draw over
// regenerative capacity. Non-positive regeneration yields DivSentinel.
// A ratio above 1 means the territory is being drawn down.
func Overshoot(draw, regen float64) float64 {
	if draw < 0 {
		draw = 0
	}
	return GuardedDiv(draw, regen)
}
