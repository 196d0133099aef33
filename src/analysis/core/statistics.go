package core

import "options-flow/src/models"

// -----------------------------------------------------------------------------

// SumVolume adds up contract volume.
func SumVolume(contracts []models.MOptionContract) float64 {
	total := 0.0
	for _, c := range contracts {
		total += c.Volume
	}
	return total
}

// -----------------------------------------------------------------------------

// SumOpenInterest adds up contract open interest.
func SumOpenInterest(contracts []models.MOptionContract) float64 {
	total := 0.0
	for _, c := range contracts {
		total += c.OpenInterest
	}
	return total
}

// -----------------------------------------------------------------------------

// HighestOpenInterest returns the contract with the largest open interest.
// Ties keep the first contract in listing order. ok is false for an empty slice.
func HighestOpenInterest(contracts []models.MOptionContract) (best models.MOptionContract, ok bool) {
	if len(contracts) == 0 {
		return models.MOptionContract{}, false
	}
	best = contracts[0]
	for _, c := range contracts[1:] {
		if c.OpenInterest > best.OpenInterest {
			best = c
		}
	}
	return best, true
}
