package utils

import (
	"testing"
	"time"

	"options-flow/src/logger"
)

func TestExchangeMIC(t *testing.T) {
	tests := map[string]string{
		"AAPL":    "xnys",
		"brk-b":   "xnys",
		"VOD.L":   "xlon",
		"7203.T":  "xtks",
		"SHOP.TO": "xtse",
		"ABC.ZZ":  "xnys",
		".L":      "xnys",
	}
	for ticker, want := range tests {
		if got := ExchangeMIC(ticker); got != want {
			t.Errorf("ExchangeMIC(%q) = %q, want %q", ticker, got, want)
		}
	}
}

func TestFallbackCalendar(t *testing.T) {
	tc := &TradingCalendar{Fallback: true, Timezone: time.UTC}

	tests := []struct {
		at   time.Time
		open bool
	}{
		{time.Date(2025, 3, 19, 9, 29, 0, 0, time.UTC), false},
		{time.Date(2025, 3, 19, 9, 30, 0, 0, time.UTC), true},
		{time.Date(2025, 3, 19, 15, 59, 0, 0, time.UTC), true},
		{time.Date(2025, 3, 19, 16, 0, 0, 0, time.UTC), false},
		{time.Date(2025, 3, 22, 12, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		if got := tc.IsOpenAt(tt.at); got != tt.open {
			t.Errorf("IsOpenAt(%v) = %v, want %v", tt.at, got, tt.open)
		}
	}
}

func TestGetCalendarShared(t *testing.T) {
	a := GetCalendar("AAPL")
	b := GetCalendar("MSFT")
	if a != b {
		t.Error("tickers on the same exchange should share a calendar")
	}
	if a.MIC != "xnys" {
		t.Errorf("MIC = %q", a.MIC)
	}

	saturday := time.Date(2025, 3, 22, 15, 0, 0, 0, time.UTC)
	if a.IsOpenAt(saturday) {
		t.Error("NYSE should be closed on Saturday")
	}
	wednesday := time.Date(2025, 3, 19, 15, 0, 0, 0, time.UTC)
	if !a.IsOpenAt(wednesday) {
		t.Error("NYSE should be open at 11:00 New York time on a Wednesday")
	}
}

func TestMarketScheduler(t *testing.T) {
	ms := NewMarketScheduler(logger.NewLogger(nil, "SchedulerTest"))
	ms.SetCalendar("AAPL", &TradingCalendar{Fallback: true, Timezone: time.UTC})

	open := time.Date(2025, 3, 19, 12, 0, 0, 0, time.UTC)
	ms.SetClock(func() time.Time { return open })
	if !ms.IsMarketOpenNow("AAPL") {
		t.Error("pinned calendar should be open at noon")
	}
	if ms.IsMarketOpen("AAPL", open.Add(6*time.Hour)) {
		t.Error("pinned calendar should be closed at 18:00")
	}

	ms.IsMarketOpen("VOD.L", open)
	if tc := ms.Calendars["VOD.L"]; tc == nil || tc.MIC != "xlon" {
		t.Errorf("VOD.L calendar = %+v", tc)
	}
}
