package analysis

import (
	"options-flow/src/logger"
	"options-flow/src/models"
)

type AnalysisFacade struct {
	Config *models.MConfig
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAnalysisFacade(cfg *models.MConfig, log *logger.Logger) *AnalysisFacade {
	if log == nil {
		log = logger.NewLogger(cfg, "Analysis")
	}
	return &AnalysisFacade{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

// Assemble runs the aggregator, ranker and key-level calculations over snap and
// combines them with the quote into the response payload.
func (a *AnalysisFacade) Assemble(snap *models.MChainSnapshot) *models.MFlowData {
	expirations := snap.Expirations
	if expirations == nil {
		expirations = []models.MExpiration{}
	}

	data := &models.MFlowData{
		Ticker:        snap.Ticker,
		Price:         snap.UnderlyingPrice,
		Change:        snap.UnderlyingChangePct,
		Expiry:        snap.ExpirationLabel,
		Expirations:   expirations,
		Summary:       AggregateFlow(snap),
		NotableTrades: RankNotableTrades(snap),
		KeyLevels:     CalculateKeyLevels(snap),
	}

	a.Logger.Debug("%s %s: volume %.0f, pc %.2f (%s), max pain %.2f, %d notable",
		data.Ticker, data.Expiry, data.Summary.TotalVolume, data.Summary.PutCallRatio,
		data.Summary.Sentiment, data.KeyLevels.MaxPainStrike, len(data.NotableTrades))
	return data
}
