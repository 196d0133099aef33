package utils

import (
	"sync"
	"time"

	"options-flow/src/logger"
)

// MarketScheduler gates polling on exchange hours for the tickers being watched.
type MarketScheduler struct {
	Calendars map[string]*TradingCalendar
	Logger    *logger.Logger
	now       func() time.Time
	mu        sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMarketScheduler(l *logger.Logger) *MarketScheduler {
	return &MarketScheduler{
		Calendars: make(map[string]*TradingCalendar),
		Logger:    l,
		now:       time.Now,
	}
}

// -----------------------------------------------------------------------------

// SetCalendar pins the calendar used for ticker.
func (ms *MarketScheduler) SetCalendar(ticker string, tc *TradingCalendar) {
	ms.mu.Lock()
	ms.Calendars[ticker] = tc
	ms.mu.Unlock()
}

// -----------------------------------------------------------------------------

// SetClock replaces the time source used by IsMarketOpenNow.
func (ms *MarketScheduler) SetClock(now func() time.Time) {
	ms.mu.Lock()
	ms.now = now
	ms.mu.Unlock()
}

// -----------------------------------------------------------------------------

func (ms *MarketScheduler) calendarFor(ticker string) *TradingCalendar {
	ms.mu.RLock()
	tc, ok := ms.Calendars[ticker]
	ms.mu.RUnlock()
	if ok {
		return tc
	}

	tc = GetCalendar(ticker)
	ms.mu.Lock()
	ms.Calendars[ticker] = tc
	ms.mu.Unlock()
	ms.Logger.Debug("MarketScheduler: %s mapped to %s", ticker, tc.MIC)
	return tc
}

// -----------------------------------------------------------------------------

// IsMarketOpen checks the ticker's exchange session at t.
func (ms *MarketScheduler) IsMarketOpen(ticker string, t time.Time) bool {
	return ms.calendarFor(ticker).IsOpenAt(t)
}

// -----------------------------------------------------------------------------

func (ms *MarketScheduler) IsMarketOpenNow(ticker string) bool {
	ms.mu.RLock()
	now := ms.now
	ms.mu.RUnlock()
	return ms.IsMarketOpen(ticker, now().UTC())
}
