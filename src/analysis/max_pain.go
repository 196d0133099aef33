package analysis

import (
	"slices"

	"options-flow/src/analysis/core"
	"options-flow/src/models"
)

// PainAt is the aggregate intrinsic value option writers owe if the underlying
// settles at strike.
func PainAt(strike float64, calls, puts []models.MOptionContract) float64 {
	pain := 0.0
	for _, c := range calls {
		if strike > c.Strike {
			pain += (strike - c.Strike) * c.OpenInterest * core.ContractMultiplier
		}
	}
	for _, p := range puts {
		if strike < p.Strike {
			pain += (p.Strike - strike) * p.OpenInterest * core.ContractMultiplier
		}
	}
	return pain
}

// -----------------------------------------------------------------------------

// CandidateStrikes returns the ascending, de-duplicated union of all strikes.
func CandidateStrikes(calls, puts []models.MOptionContract) []float64 {
	strikes := make([]float64, 0, len(calls)+len(puts))
	for _, c := range calls {
		strikes = append(strikes, c.Strike)
	}
	for _, p := range puts {
		strikes = append(strikes, p.Strike)
	}
	slices.Sort(strikes)
	return slices.Compact(strikes)
}

// -----------------------------------------------------------------------------

// CalculateMaxPain returns the candidate strike with minimum pain. Ties resolve
// to the lowest strike. With no strikes the underlying price is returned.
func CalculateMaxPain(calls, puts []models.MOptionContract, underlyingPrice float64) float64 {
	strikes := CandidateStrikes(calls, puts)
	if len(strikes) == 0 {
		return underlyingPrice
	}

	best := strikes[0]
	bestPain := PainAt(best, calls, puts)
	for _, s := range strikes[1:] {
		if pain := PainAt(s, calls, puts); pain < bestPain {
			best, bestPain = s, pain
		}
	}
	return best
}

// -----------------------------------------------------------------------------

func CalculateKeyLevels(snap *models.MChainSnapshot) models.MKeyLevels {
	levels := models.MKeyLevels{
		MaxPainStrike: CalculateMaxPain(snap.Calls, snap.Puts, snap.UnderlyingPrice),
	}
	if c, ok := core.HighestOpenInterest(snap.Calls); ok {
		levels.HighestOICallStrike = c.Strike
	}
	if p, ok := core.HighestOpenInterest(snap.Puts); ok {
		levels.HighestOIPutStrike = p.Strike
	}
	return levels
}
