package analysis

import (
	"sort"

	"options-flow/src/analysis/core"
	"options-flow/src/models"
	"options-flow/src/utils"
)

// MaxNotableTrades caps the ranked list.
const MaxNotableTrades = 15

// -----------------------------------------------------------------------------

// ClassifyTrade labels a contract by how far volume runs ahead of open interest.
// Open interest below 1 is treated as 1.
func ClassifyTrade(volume, openInterest float64) models.MTradeType {
	base := openInterest
	if base < 1 {
		base = 1
	}
	switch {
	case volume > 2*base:
		return models.TradeSweep
	case volume > base:
		return models.TradeUnusual
	default:
		return models.TradeActive
	}
}

// -----------------------------------------------------------------------------

// RankNotableTrades returns up to MaxNotableTrades traded contracts, highest
// volume first. Equal volumes keep provider order, calls before puts.
func RankNotableTrades(snap *models.MChainSnapshot) []models.MNotableTrade {
	traded := make([]models.MOptionContract, 0, len(snap.Calls)+len(snap.Puts))
	for _, group := range [][]models.MOptionContract{snap.Calls, snap.Puts} {
		for _, c := range group {
			if c.Volume > 0 {
				traded = append(traded, c)
			}
		}
	}

	sort.SliceStable(traded, func(i, j int) bool {
		return traded[i].Volume > traded[j].Volume
	})
	if len(traded) > MaxNotableTrades {
		traded = traded[:MaxNotableTrades]
	}

	trades := make([]models.MNotableTrade, 0, len(traded))
	for _, c := range traded {
		trades = append(trades, models.MNotableTrade{
			Strike:       c.Strike,
			ExpiryLabel:  utils.ExpiryLabel(c.ExpirationTs),
			Side:         c.Side,
			Premium:      core.Premium(c.LastPrice, c.Volume),
			TradeType:    ClassifyTrade(c.Volume, c.OpenInterest),
			Volume:       c.Volume,
			OpenInterest: c.OpenInterest,
			IVPct:        core.Round(c.ImpliedVolatility*100, 0),
			LastPrice:    c.LastPrice,
		})
	}
	return trades
}
