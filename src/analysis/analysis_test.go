package analysis

import (
	"encoding/json"
	"testing"

	"options-flow/src/data_source/yahoo"
	"options-flow/src/logger"
	"options-flow/src/models"
	"options-flow/src/testutil"
)

func call(strike, volume, oi float64) models.MOptionContract {
	return models.MOptionContract{Side: models.SideCall, Strike: strike, Volume: volume, OpenInterest: oi}
}

func put(strike, volume, oi float64) models.MOptionContract {
	return models.MOptionContract{Side: models.SidePut, Strike: strike, Volume: volume, OpenInterest: oi}
}

func defaultSnapshot(t *testing.T) *models.MChainSnapshot {
	t.Helper()
	snap, err := yahoo.ParseOptionsResponse("AAPL", []byte(testutil.DefaultChainJSON))
	if err != nil {
		t.Fatalf("ParseOptionsResponse() error = %v", err)
	}
	return snap
}

func TestAggregateFlow(t *testing.T) {
	got := AggregateFlow(defaultSnapshot(t))
	want := models.MFlowSummary{
		TotalVolume:    450,
		VolumeAvgRatio: 1.3,
		CallPct:        89,
		PutPct:         11,
		PutCallRatio:   0.13,
		Sentiment:      models.SentimentBullish,
		TotalCallVol:   400,
		TotalPutVol:    50,
		TotalCallOI:    200,
		TotalPutOI:     140,
	}
	if got != want {
		t.Errorf("AggregateFlow() =\n %+v\nwant\n %+v", got, want)
	}
}

func TestAggregateFlowZeroVolume(t *testing.T) {
	snap := &models.MChainSnapshot{
		Calls: []models.MOptionContract{call(100, 0, 10)},
		Puts:  []models.MOptionContract{put(100, 0, 0)},
	}
	got := AggregateFlow(snap)
	if got.CallPct != 50 || got.PutPct != 50 {
		t.Errorf("pct = %v/%v, want 50/50", got.CallPct, got.PutPct)
	}
	if got.PutCallRatio != 1 || got.Sentiment != models.SentimentNeutral {
		t.Errorf("ratio = %v sentiment = %s", got.PutCallRatio, got.Sentiment)
	}
	if got.VolumeAvgRatio != 0 {
		t.Errorf("VolumeAvgRatio = %v", got.VolumeAvgRatio)
	}

	empty := AggregateFlow(&models.MChainSnapshot{})
	if empty.CallPct != 50 || empty.PutPct != 50 || empty.Sentiment != models.SentimentNeutral {
		t.Errorf("empty chain summary = %+v", empty)
	}
}

func TestAggregateFlowPercentagesSumTo100(t *testing.T) {
	for _, vols := range [][2]float64{{1, 2}, {1, 1}, {333, 667}, {5, 0}, {0, 7}, {1, 7}} {
		snap := &models.MChainSnapshot{
			Calls: []models.MOptionContract{call(100, vols[0], 0)},
			Puts:  []models.MOptionContract{put(100, vols[1], 0)},
		}
		s := AggregateFlow(snap)
		if s.CallPct+s.PutPct != 100 {
			t.Errorf("%v: %v + %v != 100", vols, s.CallPct, s.PutPct)
		}
	}
}

func TestAggregateFlowNoCallVolume(t *testing.T) {
	snap := &models.MChainSnapshot{
		Puts: []models.MOptionContract{put(100, 500, 10)},
	}
	s := AggregateFlow(snap)
	if s.PutCallRatio != 1 || s.Sentiment != models.SentimentNeutral {
		t.Errorf("ratio = %v sentiment = %s, want 1 neutral", s.PutCallRatio, s.Sentiment)
	}
	if s.CallPct != 0 || s.PutPct != 100 {
		t.Errorf("pct = %v/%v", s.CallPct, s.PutPct)
	}
}

func TestClassifySentiment(t *testing.T) {
	tests := []struct {
		ratio float64
		want  models.MSentiment
	}{
		{0, models.SentimentBullish},
		{0.69, models.SentimentBullish},
		{0.7, models.SentimentNeutral},
		{1, models.SentimentNeutral},
		{1.2, models.SentimentNeutral},
		{1.21, models.SentimentBearish},
		{3, models.SentimentBearish},
	}
	for _, tt := range tests {
		if got := ClassifySentiment(tt.ratio); got != tt.want {
			t.Errorf("ClassifySentiment(%v) = %s, want %s", tt.ratio, got, tt.want)
		}
	}
}

func TestSentimentUsesUnroundedRatio(t *testing.T) {
	// 0.698 displays as 0.70 but is still below the bullish threshold.
	snap := &models.MChainSnapshot{
		Calls: []models.MOptionContract{call(100, 1000, 0)},
		Puts:  []models.MOptionContract{put(100, 698, 0)},
	}
	s := AggregateFlow(snap)
	if s.PutCallRatio != 0.7 || s.Sentiment != models.SentimentBullish {
		t.Errorf("ratio = %v sentiment = %s", s.PutCallRatio, s.Sentiment)
	}
}

func TestClassifyTrade(t *testing.T) {
	tests := []struct {
		volume, oi float64
		want       models.MTradeType
	}{
		{500, 100, models.TradeSweep},
		{200, 100, models.TradeUnusual},
		{150, 100, models.TradeUnusual},
		{100, 100, models.TradeActive},
		{3, 0, models.TradeSweep},
		{2, 0, models.TradeUnusual},
		{1, 0, models.TradeActive},
		{2, 0.5, models.TradeUnusual},
	}
	for _, tt := range tests {
		if got := ClassifyTrade(tt.volume, tt.oi); got != tt.want {
			t.Errorf("ClassifyTrade(%v, %v) = %s, want %s", tt.volume, tt.oi, got, tt.want)
		}
	}
}

func TestRankNotableTrades(t *testing.T) {
	trades := RankNotableTrades(defaultSnapshot(t))
	want := []models.MNotableTrade{
		{Strike: 100, ExpiryLabel: "Mar 21", Side: models.SideCall, Premium: 62500, TradeType: models.TradeSweep,
			Volume: 250, OpenInterest: 100, IVPct: 35, LastPrice: 2.5},
		{Strike: 110, ExpiryLabel: "Mar 21", Side: models.SideCall, Premium: 7500, TradeType: models.TradeUnusual,
			Volume: 150, OpenInterest: 100, IVPct: 28, LastPrice: 0.5},
		{Strike: 110, ExpiryLabel: "Mar 21", Side: models.SidePut, Premium: 25000, TradeType: models.TradeActive,
			Volume: 50, OpenInterest: 100, IVPct: 40, LastPrice: 5},
	}
	if len(trades) != len(want) {
		t.Fatalf("len = %d, want %d: %+v", len(trades), len(want), trades)
	}
	for i := range want {
		if trades[i] != want[i] {
			t.Errorf("trades[%d] = %+v, want %+v", i, trades[i], want[i])
		}
	}
}

func TestRankNotableTradesLimitAndStableOrder(t *testing.T) {
	snap := &models.MChainSnapshot{}
	for i := 0; i < 12; i++ {
		snap.Calls = append(snap.Calls, call(float64(100+i), 10, 0))
	}
	for i := 0; i < 12; i++ {
		snap.Puts = append(snap.Puts, put(float64(200+i), 10, 0))
	}
	snap.Puts = append(snap.Puts, put(300, 50, 0), put(301, 0, 0))

	trades := RankNotableTrades(snap)
	if len(trades) != MaxNotableTrades {
		t.Fatalf("len = %d, want %d", len(trades), MaxNotableTrades)
	}
	if trades[0].Strike != 300 {
		t.Errorf("highest volume first, got strike %v", trades[0].Strike)
	}
	// Remaining ties keep calls 100..111 then puts 200, 201.
	for i := 1; i <= 12; i++ {
		if trades[i].Strike != float64(100+i-1) || trades[i].Side != models.SideCall {
			t.Errorf("trades[%d] = %v %s", i, trades[i].Strike, trades[i].Side)
		}
	}
	if trades[13].Strike != 200 || trades[14].Strike != 201 {
		t.Errorf("tail = %v, %v", trades[13].Strike, trades[14].Strike)
	}
	for i, tr := range trades {
		if tr.Volume <= 0 {
			t.Errorf("trades[%d] has volume %v", i, tr.Volume)
		}
		if i > 0 && tr.Volume > trades[i-1].Volume {
			t.Errorf("not sorted at %d", i)
		}
	}
}

func TestRankNotableTradesEmpty(t *testing.T) {
	trades := RankNotableTrades(&models.MChainSnapshot{Calls: []models.MOptionContract{call(100, 0, 5)}})
	if trades == nil || len(trades) != 0 {
		t.Errorf("trades = %#v, want empty non-nil slice", trades)
	}
}

func TestCalculateMaxPain(t *testing.T) {
	calls := []models.MOptionContract{call(100, 0, 10)}
	puts := []models.MOptionContract{put(110, 0, 5)}

	if got := PainAt(100, calls, puts); got != 5000 {
		t.Errorf("PainAt(100) = %v, want 5000", got)
	}
	if got := PainAt(110, calls, puts); got != 10000 {
		t.Errorf("PainAt(110) = %v, want 10000", got)
	}
	if got := CalculateMaxPain(calls, puts, 105); got != 100 {
		t.Errorf("CalculateMaxPain() = %v, want 100", got)
	}
}

func TestCalculateMaxPainTieAndDefault(t *testing.T) {
	snap := defaultSnapshot(t)
	// pain(100) == pain(110) == 100000; the lower strike wins.
	if got := CalculateMaxPain(snap.Calls, snap.Puts, snap.UnderlyingPrice); got != 100 {
		t.Errorf("CalculateMaxPain() = %v, want 100", got)
	}

	if got := CalculateMaxPain(nil, nil, 123.45); got != 123.45 {
		t.Errorf("empty chain max pain = %v, want underlying", got)
	}
}

func TestCandidateStrikes(t *testing.T) {
	got := CandidateStrikes(
		[]models.MOptionContract{call(110, 0, 0), call(100, 0, 0), call(105, 0, 0)},
		[]models.MOptionContract{put(100, 0, 0), put(95, 0, 0), put(110, 0, 0)},
	)
	want := []float64{95, 100, 105, 110}
	if len(got) != len(want) {
		t.Fatalf("CandidateStrikes() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("CandidateStrikes()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCalculateKeyLevels(t *testing.T) {
	got := CalculateKeyLevels(defaultSnapshot(t))
	want := models.MKeyLevels{MaxPainStrike: 100, HighestOICallStrike: 100, HighestOIPutStrike: 110}
	if got != want {
		t.Errorf("CalculateKeyLevels() = %+v, want %+v", got, want)
	}

	onlyCalls := CalculateKeyLevels(&models.MChainSnapshot{Calls: []models.MOptionContract{call(90, 0, 1)}})
	if onlyCalls.HighestOIPutStrike != 0 || onlyCalls.HighestOICallStrike != 90 {
		t.Errorf("one-sided key levels = %+v", onlyCalls)
	}
}

func TestAssemble(t *testing.T) {
	facade := NewAnalysisFacade(&models.MConfig{}, logger.NewLogger(nil, "AnalysisTest"))
	data := facade.Assemble(defaultSnapshot(t))

	if data.Ticker != "AAPL" || data.Price != 105.5 || data.Change != -1.25 || data.Expiry != "Mar 21" {
		t.Errorf("quote fields = %+v", data)
	}
	if len(data.Expirations) != 3 || len(data.NotableTrades) != 3 {
		t.Errorf("expirations = %d, trades = %d", len(data.Expirations), len(data.NotableTrades))
	}

	raw, err := json.Marshal(models.MFlowResponse{Data: data})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	payload := decoded["data"]
	for _, key := range []string{"ticker", "price", "change", "expiry", "expirations", "summary", "notable_trades", "key_levels"} {
		if _, ok := payload[key]; !ok {
			t.Errorf("payload missing %q", key)
		}
	}
	summary := payload["summary"].(map[string]any)
	if summary["pc_ratio"] != 0.13 || summary["sentiment"] != "bullish" {
		t.Errorf("summary = %v", summary)
	}
	trade := payload["notable_trades"].([]any)[0].(map[string]any)
	for _, key := range []string{"strike", "expiry", "type", "premium", "trade_type", "volume", "openInterest", "iv", "lastPrice"} {
		if _, ok := trade[key]; !ok {
			t.Errorf("trade missing %q", key)
		}
	}
}

func TestAssembleEmptyChain(t *testing.T) {
	facade := NewAnalysisFacade(nil, nil)
	data := facade.Assemble(&models.MChainSnapshot{Ticker: "XYZ", UnderlyingPrice: 42})

	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := decoded["expirations"].([]any); !ok {
		t.Errorf("expirations should encode as an array, got %v", decoded["expirations"])
	}
	if _, ok := decoded["notable_trades"].([]any); !ok {
		t.Errorf("notable_trades should encode as an array, got %v", decoded["notable_trades"])
	}
	if data.KeyLevels.MaxPainStrike != 42 {
		t.Errorf("max pain = %v, want underlying 42", data.KeyLevels.MaxPainStrike)
	}
}
