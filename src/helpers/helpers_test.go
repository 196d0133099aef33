package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", NewValidationError("Ticker is required"), http.StatusBadRequest},
		{"no data", NewNoDataError("ZZZZ"), http.StatusNotFound},
		{"provider", NewProviderUnavailableError("AAPL", 401), http.StatusBadGateway},
		{"wrapped provider", fmt.Errorf("fetch chain: %w", NewProviderUnavailableError("AAPL", 500)), http.StatusBadGateway},
		{"network", NewNetworkError("chain fetch", errors.New("dial tcp: refused")), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	if got := NewProviderUnavailableError("AAPL", 401).Error(); got != "Failed to fetch options data for AAPL" {
		t.Errorf("provider message = %q", got)
	}
	if got := NewNoDataError("ZZZZ").Error(); got != "No options data available for ZZZZ" {
		t.Errorf("no data message = %q", got)
	}

	cause := errors.New("timeout")
	err := NewNetworkError("crumb fetch", cause)
	if got := err.Error(); got != "crumb fetch failed: timeout" {
		t.Errorf("network message = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("network error should unwrap to its cause")
	}

	var providerErr *ProviderUnavailableError
	if !errors.As(NewProviderUnavailableError("MSFT", 403), &providerErr) {
		t.Fatal("errors.As failed for ProviderUnavailableError")
	}
	if providerErr.Ticker != "MSFT" || providerErr.StatusCode != 403 {
		t.Errorf("provider fields = %+v", providerErr)
	}
}

func TestErrorHandlerCountsOnlyServerFailures(t *testing.T) {
	h := NewErrorHandler(nil)

	h.Handle(nil, "noop")
	h.Handle(NewValidationError("bad"), "request")
	h.Handle(NewNoDataError("X"), "request")
	h.Handle(errors.New("boom"), "request")
	h.Handle(NewProviderUnavailableError("X", 500), "request")

	if got := h.ErrorCount.Load(); got != 2 {
		t.Errorf("ErrorCount = %d, want 2", got)
	}
}

func TestProxyManager(t *testing.T) {
	pm := NewProxyManager([]string{"127.0.0.1:8080", "", "https://proxy.local:3128"}, "")

	if !pm.HasProxies() {
		t.Fatal("expected proxies")
	}
	first, _ := pm.GetCurrentProxy()
	if first != "http://127.0.0.1:8080" {
		t.Errorf("first proxy = %q", first)
	}
	pm.RotateProxy()
	second, _ := pm.GetCurrentProxy()
	if second != "https://proxy.local:3128" {
		t.Errorf("rotated proxy = %q", second)
	}
	pm.RotateProxy()
	if again, _ := pm.GetCurrentProxy(); again != first {
		t.Errorf("rotation should wrap, got %q", again)
	}

	if ua := pm.GetUserAgent(); ua == "" {
		t.Error("empty user agent")
	}

	pinned := NewProxyManager(nil, "custom-agent/1.0")
	if pinned.HasProxies() {
		t.Error("expected no proxies")
	}
	if ua := pinned.GetUserAgent(); ua != "custom-agent/1.0" {
		t.Errorf("pinned UA = %q", ua)
	}
	if p, err := pinned.GetCurrentProxy(); p != "" || err != nil {
		t.Errorf("GetCurrentProxy() = %q, %v", p, err)
	}
}

func TestValidateProxy(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"http://1.2.3.4:80", true},
		{"1.2.3.4:80", true},
		{"socks5://host:1080", true},
		{"ftp://host:21", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidateProxy(tt.in); got != tt.want {
			t.Errorf("ValidateProxy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
