package main

import (
	"bytes"
	"strings"
	"testing"

	"options-flow/src/models"
)

func TestPrintFlow(t *testing.T) {
	data := &models.MFlowData{
		Ticker: "AAPL",
		Price:  105.5,
		Change: -1.25,
		Expiry: "Mar 21",
		Summary: models.MFlowSummary{
			TotalVolume: 450, TotalCallVol: 400, TotalPutVol: 50,
			CallPct: 89, PutPct: 11, PutCallRatio: 0.13, Sentiment: models.SentimentBullish,
		},
		NotableTrades: []models.MNotableTrade{
			{Strike: 100, Side: models.SideCall, ExpiryLabel: "Mar 21", Volume: 250, OpenInterest: 100,
				LastPrice: 2.5, IVPct: 35, Premium: 62500, TradeType: models.TradeSweep},
		},
		KeyLevels: models.MKeyLevels{MaxPainStrike: 100, HighestOICallStrike: 100, HighestOIPutStrike: 110},
	}

	var buf bytes.Buffer
	printFlow(&buf, data)
	out := buf.String()

	for _, want := range []string{"AAPL  105.50 (-1.25%)  expiry Mar 21", "bullish", "62500", "sweep", "C 100.00 / P 110.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	data.NotableTrades = nil
	printFlow(&buf, data)
	if !strings.Contains(buf.String(), "no traded contracts") {
		t.Errorf("empty trades output:\n%s", buf.String())
	}
}
