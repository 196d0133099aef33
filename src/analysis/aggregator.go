package analysis

import (
	"options-flow/src/analysis/core"
	"options-flow/src/models"
)

// Sentiment thresholds on the raw put/call volume ratio.
const (
	BullishRatioBelow = 0.7
	BearishRatioAbove = 1.2
)

// -----------------------------------------------------------------------------

// AggregateFlow computes volume and open-interest totals, side shares and the
// sentiment label for one snapshot.
func AggregateFlow(snap *models.MChainSnapshot) models.MFlowSummary {
	callVol := core.SumVolume(snap.Calls)
	putVol := core.SumVolume(snap.Puts)
	callOI := core.SumOpenInterest(snap.Calls)
	putOI := core.SumOpenInterest(snap.Puts)
	totalVol := callVol + putVol

	callPct, putPct := 50.0, 50.0
	if totalVol > 0 {
		callPct = core.Round(callVol/totalVol*100, 0)
		putPct = 100 - callPct
	}

	ratio := core.SafeRatio(putVol, callVol, 1)
	totalOI := callOI + putOI
	if totalOI < 1 {
		totalOI = 1
	}

	return models.MFlowSummary{
		TotalVolume:    totalVol,
		VolumeAvgRatio: core.Round(totalVol/totalOI, 1),
		CallPct:        callPct,
		PutPct:         putPct,
		PutCallRatio:   core.Round(ratio, 2),
		Sentiment:      ClassifySentiment(ratio),
		TotalCallVol:   callVol,
		TotalPutVol:    putVol,
		TotalCallOI:    callOI,
		TotalPutOI:     putOI,
	}
}

// -----------------------------------------------------------------------------

func ClassifySentiment(putCallRatio float64) models.MSentiment {
	switch {
	case putCallRatio < BullishRatioBelow:
		return models.SentimentBullish
	case putCallRatio > BearishRatioAbove:
		return models.SentimentBearish
	default:
		return models.SentimentNeutral
	}
}
