package models

type MOptionSide string

const (
	SideCall MOptionSide = "call"
	SidePut  MOptionSide = "put"
)

// MOptionContract is a single listed contract after defaulting at the ingestion boundary.
type MOptionContract struct {
	ContractSymbol    string      `json:"contract_symbol"`
	Side              MOptionSide `json:"side"`
	Strike            float64     `json:"strike"`
	LastPrice         float64     `json:"last_price"`
	Bid               float64     `json:"bid"`
	Ask               float64     `json:"ask"`
	Volume            float64     `json:"volume"`
	OpenInterest      float64     `json:"open_interest"`
	ImpliedVolatility float64     `json:"implied_volatility"`
	ExpirationTs      int64       `json:"expiration_ts"`
	InTheMoney        bool        `json:"in_the_money"`
}

type MExpiration struct {
	Ts    int64  `json:"ts"`
	Label string `json:"label"`
}

// MChainSnapshot is one expiration of a ticker's chain plus the underlying quote.
// It is built per request and never mutated after parsing.
type MChainSnapshot struct {
	Ticker              string
	UnderlyingPrice     float64
	UnderlyingChangePct float64
	ExpirationTs        int64
	ExpirationLabel     string
	Expirations         []MExpiration
	Calls               []MOptionContract
	Puts                []MOptionContract
}
