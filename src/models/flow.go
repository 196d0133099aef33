package models

type MSentiment string

const (
	SentimentBullish MSentiment = "bullish"
	SentimentBearish MSentiment = "bearish"
	SentimentNeutral MSentiment = "neutral"
)

type MTradeType string

const (
	TradeSweep   MTradeType = "sweep"
	TradeUnusual MTradeType = "unusual"
	TradeActive  MTradeType = "active"
)

// -----------------------------------------------------------------------------
// Derived analytics
// -----------------------------------------------------------------------------

type MFlowSummary struct {
	TotalVolume    float64    `json:"volume"`
	VolumeAvgRatio float64    `json:"volume_avg_ratio"`
	CallPct        float64    `json:"call_pct"`
	PutPct         float64    `json:"put_pct"`
	PutCallRatio   float64    `json:"pc_ratio"`
	Sentiment      MSentiment `json:"sentiment"`
	TotalCallVol   float64    `json:"total_call_vol"`
	TotalPutVol    float64    `json:"total_put_vol"`
	TotalCallOI    float64    `json:"total_call_oi"`
	TotalPutOI     float64    `json:"total_put_oi"`
}

type MNotableTrade struct {
	Strike       float64     `json:"strike"`
	ExpiryLabel  string      `json:"expiry"`
	Side         MOptionSide `json:"type"`
	Premium      float64     `json:"premium"`
	TradeType    MTradeType  `json:"trade_type"`
	Volume       float64     `json:"volume"`
	OpenInterest float64     `json:"openInterest"`
	IVPct        float64     `json:"iv"`
	LastPrice    float64     `json:"lastPrice"`
}

type MKeyLevels struct {
	MaxPainStrike       float64 `json:"max_pain"`
	HighestOICallStrike float64 `json:"highest_oi_call"`
	HighestOIPutStrike  float64 `json:"highest_oi_put"`
}

// -----------------------------------------------------------------------------
// Request / response contract
// -----------------------------------------------------------------------------

type MFlowRequest struct {
	Ticker     string `json:"ticker"`
	Expiration *int64 `json:"expiration,omitempty"`
}

type MFlowData struct {
	Ticker        string          `json:"ticker"`
	Price         float64         `json:"price"`
	Change        float64         `json:"change"`
	Expiry        string          `json:"expiry"`
	Expirations   []MExpiration   `json:"expirations"`
	Summary       MFlowSummary    `json:"summary"`
	NotableTrades []MNotableTrade `json:"notable_trades"`
	KeyLevels     MKeyLevels      `json:"key_levels"`
}

type MFlowResponse struct {
	Data *MFlowData `json:"data"`
}

type MErrorResponse struct {
	Error string `json:"error"`
}
