// Package testutil provides a fake quote provider for tests across packages.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"options-flow/src/models"
)

const (
	TestCrumb = "crumb-xyz"
	// TestCookie is what the handshake must produce from the two Set-Cookie headers.
	TestCookie = "A3=d=abc; B=xyz"
)

// FakeProvider serves the cookie, crumb and options endpoints.
type FakeProvider struct {
	Server *httptest.Server

	CookieHits  atomic.Int64
	CrumbHits   atomic.Int64
	OptionsHits atomic.Int64

	// OptionsStatus forces the options endpoint status when non-zero.
	OptionsStatus atomic.Int64
	// CrumbStatus forces the crumb endpoint status when non-zero.
	CrumbStatus atomic.Int64

	mu        sync.Mutex
	chains    map[string]string
	lastQuery map[string]string
	lastCook  string
}

// NewFakeProvider starts a provider that answers AAPL with DefaultChainJSON.
func NewFakeProvider(t *testing.T) *FakeProvider {
	t.Helper()

	p := &FakeProvider{
		chains: map[string]string{"AAPL": DefaultChainJSON},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/cookie", func(w http.ResponseWriter, r *http.Request) {
		p.CookieHits.Add(1)
		w.Header().Add("Set-Cookie", "A3=d=abc")
		w.Header().Add("Set-Cookie", "B=xyz")
		http.Redirect(w, r, "/landing", http.StatusFound)
	})
	mux.HandleFunc("/landing", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("cookie redirect must not be followed")
	})
	mux.HandleFunc("/crumb", func(w http.ResponseWriter, r *http.Request) {
		p.CrumbHits.Add(1)
		if status := p.CrumbStatus.Load(); status != 0 {
			w.WriteHeader(int(status))
			return
		}
		if r.Header.Get("Cookie") != TestCookie {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(TestCrumb + "\n"))
	})
	mux.HandleFunc("/options/", func(w http.ResponseWriter, r *http.Request) {
		p.OptionsHits.Add(1)

		query := map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}
		p.mu.Lock()
		p.lastQuery = query
		p.lastCook = r.Header.Get("Cookie")
		body, ok := p.chains[strings.TrimPrefix(r.URL.Path, "/options/")]
		p.mu.Unlock()

		if status := p.OptionsStatus.Load(); status != 0 {
			w.WriteHeader(int(status))
			return
		}
		if r.URL.Query().Get("crumb") != TestCrumb {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.Write([]byte(`{"optionChain":{"result":[],"error":null}}`))
			return
		}
		w.Write([]byte(body))
	})

	p.Server = httptest.NewServer(mux)
	t.Cleanup(p.Server.Close)
	return p
}

// ProviderConfig points the client at the fake endpoints.
func (p *FakeProvider) ProviderConfig() models.MProviderConfig {
	return models.MProviderConfig{
		CookieURL:  p.Server.URL + "/cookie",
		CrumbURL:   p.Server.URL + "/crumb",
		OptionsURL: p.Server.URL + "/options",
		CrumbTTLMs: 600_000,
	}
}

// SetChain registers a raw options payload for ticker.
func (p *FakeProvider) SetChain(ticker, body string) {
	p.mu.Lock()
	p.chains[ticker] = body
	p.mu.Unlock()
}

// SetChainValue registers a payload marshaled from v.
func (p *FakeProvider) SetChainValue(t *testing.T, ticker string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal chain: %v", err)
	}
	p.SetChain(ticker, string(data))
}

// LastOptionsRequest returns the query parameters and Cookie header of the last options call.
func (p *FakeProvider) LastOptionsRequest() (map[string]string, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastQuery, p.lastCook
}

// DefaultChainJSON is a small AAPL chain for the Mar 21 2025 expiration.
// Call volume 250+150 = 400, put volume 50+0 = 50, OI calls 100+100, puts 100+40.
const DefaultChainJSON = `{
  "optionChain": {
    "result": [{
      "underlyingSymbol": "AAPL",
      "expirationDates": [1742515200, 1743120000, 1745539200],
      "strikes": [100, 110],
      "quote": {"symbol": "AAPL", "regularMarketPrice": 105.5, "regularMarketChangePercent": -1.25},
      "options": [{
        "expirationDate": 1742515200,
        "calls": [
          {"contractSymbol": "AAPL250321C00100000", "strike": 100, "lastPrice": 2.5, "bid": 2.4, "ask": 2.6,
           "volume": 250, "openInterest": 100, "impliedVolatility": 0.3512, "expiration": 1742515200, "inTheMoney": true},
          {"contractSymbol": "AAPL250321C00110000", "strike": 110, "lastPrice": 0.5,
           "volume": 150, "openInterest": 100, "impliedVolatility": 0.28}
        ],
        "puts": [
          {"contractSymbol": "AAPL250321P00110000", "strike": 110, "lastPrice": 5.0, "bid": 4.9, "ask": 5.1,
           "volume": 50, "openInterest": 100, "impliedVolatility": 0.4, "inTheMoney": true},
          {"contractSymbol": "AAPL250321P00100000", "strike": 100, "lastPrice": 0.1, "openInterest": 40}
        ]
      }]
    }],
    "error": null
  }
}`
