package combat

import "math"

// CaptureParams describes the catch item used for a capture roll.
type CaptureParams struct {
	// Rate is the item's base catch rate in (0, 1].
	Rate float64
	// Harsh applies the plain-ball penalty curve, which punishes level far
	// more than the item curve.
	Harsh bool
	// Perfect bypasses the roll entirely. The capture always succeeds.
	Perfect bool
}

// CaptureChance computes the probability of a capture succeeding. Low HP and
// low level dominate the odds; full-health or high-level targets are nearly
// impossible to take with ordinary items.
//
// Precondition: 0 <= hpPercent <= 100; level >= 1.
// Postcondition: result is in (0, p.Rate] for non-Perfect params, or
// exactly 1 for Perfect.
func (tn Tuning) CaptureChance(p CaptureParams, hpPercent float64, level int) float64 {
	if p.Perfect {
		return 1
	}

	levelPenalty, legendPenalty, minChance := tn.CatchLevelPenalty, tn.CatchLegendPenalty, tn.CatchMinChance
	if p.Harsh {
		levelPenalty, legendPenalty, minChance = tn.HarshLevelPenalty, tn.HarshLegendPenalty, tn.HarshMinChance
	}

	hpFactor := math.Pow(100-hpPercent, 2) / 10000
	levelFactor := math.Pow(levelPenalty, float64(level-1))
	legendFactor := 1.0
	if level >= tn.LegendaryLevel {
		legendFactor = math.Pow(legendPenalty, float64(level-tn.LegendaryLevel+1))
	}

	chance := p.Rate * hpFactor * levelFactor * legendFactor
	return math.Max(minChance, math.Min(chance, p.Rate))
}
