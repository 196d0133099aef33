package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"options-flow/src/helpers"
	"options-flow/src/interfaces"
	"options-flow/src/logger"
	"options-flow/src/models"
	"sync"
	"time"
)

const defaultRequestTimeout = 10 * time.Second

// AsyncNetworkManager issues single-attempt GETs. Retrying is left to callers;
// the flow pipeline deliberately never retries within a request.
type AsyncNetworkManager struct {
	Config       *models.MConfig
	ProxyManager interfaces.IProxyManager
	Logger       *logger.Logger

	mu               sync.RWMutex
	client           *http.Client
	noRedirectClient *http.Client
}

// -----------------------------------------------------------------------------

func NewAsyncNetworkManager(cfg *models.MConfig, log *logger.Logger) *AsyncNetworkManager {
	var proxies []string
	if cfg.Network.Enabled {
		proxies = cfg.Network.Proxies
	}

	nm := &AsyncNetworkManager{
		Config:       cfg,
		ProxyManager: helpers.NewProxyManager(proxies, cfg.Network.UserAgent),
		Logger:       log,
	}
	nm.client, nm.noRedirectClient = nm.createClients()
	return nm
}

// -----------------------------------------------------------------------------

// WithHTTPClient replaces both underlying clients, keeping manual redirect
// handling on the no-redirect variant. The timeout of hc is preserved.
func (nm *AsyncNetworkManager) WithHTTPClient(hc *http.Client) *AsyncNetworkManager {
	noRedirect := *hc
	noRedirect.CheckRedirect = stopRedirects

	nm.mu.Lock()
	nm.client = hc
	nm.noRedirectClient = &noRedirect
	nm.mu.Unlock()
	return nm
}

// -----------------------------------------------------------------------------

func stopRedirects(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) requestTimeout() time.Duration {
	if nm.Config.Network.RequestTimeout > 0 {
		return time.Duration(nm.Config.Network.RequestTimeout) * time.Second
	}
	return defaultRequestTimeout
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) createClients() (*http.Client, *http.Client) {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
	}

	if nm.ProxyManager.HasProxies() {
		proxyStr, err := nm.ProxyManager.GetCurrentProxy()
		if err == nil && proxyStr != "" {
			proxyURL, err := url.Parse(proxyStr)
			if err == nil {
				transport.Proxy = http.ProxyURL(proxyURL)
			}
		}
	}

	timeout := nm.requestTimeout()
	follow := &http.Client{Transport: transport, Timeout: timeout}
	manual := &http.Client{Transport: transport, Timeout: timeout, CheckRedirect: stopRedirects}
	return follow, manual
}

// -----------------------------------------------------------------------------

// RotateProxy moves to the next configured proxy and rebuilds the clients.
func (nm *AsyncNetworkManager) RotateProxy() {
	if !nm.ProxyManager.HasProxies() {
		return
	}

	nm.ProxyManager.RotateProxy()
	follow, manual := nm.createClients()

	nm.mu.Lock()
	nm.client = follow
	nm.noRedirectClient = manual
	nm.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Do performs one GET. Any HTTP status is returned to the caller as a response;
// only transport failures produce an error.
func (nm *AsyncNetworkManager) Do(ctx context.Context, r models.MHTTPRequest) (*models.MHTTPResponse, error) {
	reqURL, err := url.Parse(r.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", r.URL, err)
	}

	if len(r.Params) > 0 {
		q := reqURL.Query()
		for k, v := range r.Params {
			q.Set(k, v)
		}
		reqURL.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", nm.ProxyManager.GetUserAgent())
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	nm.mu.RLock()
	client := nm.client
	if r.NoRedirect {
		client = nm.noRedirectClient
	}
	nm.mu.RUnlock()

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		nm.Logger.Warning("GET %s failed: %v", reqURL.Host+reqURL.Path, err)
		// The next call goes out through another proxy; this one is not retried.
		if ctx.Err() == nil {
			nm.RotateProxy()
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	nm.Logger.Debug("GET %s -> %d (%d bytes, %v)", reqURL.Host+reqURL.Path, resp.StatusCode, len(body), time.Since(start))

	return &models.MHTTPResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
