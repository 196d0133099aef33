package yahoo

import (
	"encoding/json"
	"fmt"

	"options-flow/src/helpers"
	"options-flow/src/models"
	"options-flow/src/utils"
)

// -----------------------------------------------------------------------------
// Provider payload. Every optional numeric field is a pointer so that absent
// and null values can be defaulted in one place.
// -----------------------------------------------------------------------------

type YahooOptionsResponse struct {
	OptionChain struct {
		Result []YahooOptionResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"optionChain"`
}

type YahooOptionResult struct {
	UnderlyingSymbol string             `json:"underlyingSymbol"`
	ExpirationDates  []int64            `json:"expirationDates"`
	Strikes          []float64          `json:"strikes"`
	Quote            YahooQuote         `json:"quote"`
	Options          []YahooOptionBlock `json:"options"`
}

type YahooQuote struct {
	Symbol                     string   `json:"symbol"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice"`
	RegularMarketChangePercent *float64 `json:"regularMarketChangePercent"`
}

type YahooOptionBlock struct {
	ExpirationDate int64           `json:"expirationDate"`
	Calls          []YahooContract `json:"calls"`
	Puts           []YahooContract `json:"puts"`
}

type YahooContract struct {
	ContractSymbol    string   `json:"contractSymbol"`
	Strike            *float64 `json:"strike"`
	LastPrice         *float64 `json:"lastPrice"`
	Bid               *float64 `json:"bid"`
	Ask               *float64 `json:"ask"`
	Volume            *float64 `json:"volume"`
	OpenInterest      *float64 `json:"openInterest"`
	ImpliedVolatility *float64 `json:"impliedVolatility"`
	Expiration        *int64   `json:"expiration"`
	InTheMoney        *bool    `json:"inTheMoney"`
}

// -----------------------------------------------------------------------------

// ParseOptionsResponse decodes the provider body into a defaulted snapshot.
// An empty result or options array is a NoDataError.
func ParseOptionsResponse(ticker string, body []byte) (*models.MChainSnapshot, error) {
	var resp YahooOptionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}

	if len(resp.OptionChain.Result) == 0 {
		return nil, helpers.NewNoDataError(ticker)
	}

	result := resp.OptionChain.Result[0]
	if len(result.Options) == 0 {
		return nil, helpers.NewNoDataError(ticker)
	}

	block := result.Options[0]
	expirationTs := block.ExpirationDate
	if expirationTs == 0 && len(result.ExpirationDates) > 0 {
		expirationTs = result.ExpirationDates[0]
	}

	expirations := make([]models.MExpiration, 0, len(result.ExpirationDates))
	for _, ts := range result.ExpirationDates {
		expirations = append(expirations, models.MExpiration{Ts: ts, Label: utils.ExpiryLabel(ts)})
	}

	return &models.MChainSnapshot{
		Ticker:              ticker,
		UnderlyingPrice:     floatOrZero(result.Quote.RegularMarketPrice),
		UnderlyingChangePct: floatOrZero(result.Quote.RegularMarketChangePercent),
		ExpirationTs:        expirationTs,
		ExpirationLabel:     utils.ExpiryLabel(expirationTs),
		Expirations:         expirations,
		Calls:               convertContracts(block.Calls, models.SideCall, expirationTs),
		Puts:                convertContracts(block.Puts, models.SidePut, expirationTs),
	}, nil
}

// -----------------------------------------------------------------------------

func convertContracts(raw []YahooContract, side models.MOptionSide, blockExpiration int64) []models.MOptionContract {
	out := make([]models.MOptionContract, 0, len(raw))
	for _, c := range raw {
		expiration := blockExpiration
		if c.Expiration != nil {
			expiration = *c.Expiration
		}
		out = append(out, models.MOptionContract{
			ContractSymbol:    c.ContractSymbol,
			Side:              side,
			Strike:            floatOrZero(c.Strike),
			LastPrice:         floatOrZero(c.LastPrice),
			Bid:               floatOrZero(c.Bid),
			Ask:               floatOrZero(c.Ask),
			Volume:            floatOrZero(c.Volume),
			OpenInterest:      floatOrZero(c.OpenInterest),
			ImpliedVolatility: floatOrZero(c.ImpliedVolatility),
			ExpirationTs:      expiration,
			InTheMoney:        c.InTheMoney != nil && *c.InTheMoney,
		})
	}
	return out
}

// -----------------------------------------------------------------------------

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
