package utils

import (
	"strings"
	"sync"
	"time"

	"github.com/scmhub/calendar"
)

// DefaultMIC is the exchange used for tickers without a recognized suffix.
const DefaultMIC = "xnys"

// suffixMIC maps Yahoo ticker suffixes to ISO 10383 market identifiers.
var suffixMIC = map[string]string{
	".L":  "xlon",
	".PA": "xpar",
	".DE": "xfra",
	".AS": "xams",
	".MI": "xmil",
	".MC": "xmad",
	".SW": "xswx",
	".TO": "xtse",
	".T":  "xtks",
	".HK": "xhkg",
	".AX": "xasx",
}

// TradingCalendar answers market-hours questions for one exchange.
type TradingCalendar struct {
	MIC      string
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

var (
	calendarsMu sync.Mutex
	calendars   = map[string]*TradingCalendar{}
)

// -----------------------------------------------------------------------------

// ExchangeMIC resolves the exchange of a ticker from its suffix.
func ExchangeMIC(ticker string) string {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if i := strings.LastIndex(ticker, "."); i > 0 {
		if mic, ok := suffixMIC[ticker[i:]]; ok {
			return mic
		}
	}
	return DefaultMIC
}

// -----------------------------------------------------------------------------

// GetCalendar returns the shared calendar for the ticker's exchange. When the
// calendar library has no data for it, a Mon-Fri 09:30-16:00 New York calendar
// is used.
func GetCalendar(ticker string) *TradingCalendar {
	mic := ExchangeMIC(ticker)

	calendarsMu.Lock()
	defer calendarsMu.Unlock()

	if tc, ok := calendars[mic]; ok {
		return tc
	}

	cal := calendar.GetCalendar(mic)
	if cal == nil && mic != DefaultMIC {
		cal = calendar.GetCalendar(DefaultMIC)
	}

	var tc *TradingCalendar
	if cal == nil {
		nyLoc, err := time.LoadLocation("America/New_York")
		if err != nil {
			nyLoc = time.UTC
		}
		tc = &TradingCalendar{MIC: mic, Fallback: true, Timezone: nyLoc}
	} else {
		tc = &TradingCalendar{MIC: mic, Calendar: cal, Timezone: cal.Loc}
	}
	calendars[mic] = tc
	return tc
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenAt reports whether the exchange is in its regular session at t.
func (tc *TradingCalendar) IsOpenAt(t time.Time) bool {
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}
		minutes := t.Hour()*60 + t.Minute()
		return minutes >= 9*60+30 && minutes < 16*60
	}
	return tc.Calendar.IsOpen(t)
}
