package yahoo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"options-flow/src/helpers"
	"options-flow/src/interfaces"
	"options-flow/src/logger"
	"options-flow/src/models"
)

// DefaultCrumbTTL is how long a crumb/cookie pair is reused before a new handshake.
const DefaultCrumbTTL = 600_000 * time.Millisecond

// ErrCrumbRejected is returned when the crumb endpoint does not hand out a token.
var ErrCrumbRejected = errors.New("crumb rejected by provider")

// -----------------------------------------------------------------------------

// CrumbAuthCache memoizes the provider session.
//
// The mutex only guards the slot itself. It is not held across the handshake, so
// concurrent misses each perform their own handshake and the last one to finish
// wins the slot. Every caller still gets a structurally valid session.
type CrumbAuthCache struct {
	Network   interfaces.INetworkManager
	CookieURL string
	CrumbURL  string
	TTL       time.Duration
	Logger    *logger.Logger

	now        func() time.Time
	mu         sync.Mutex
	session    *models.MAuthSession
	handshakes atomic.Int64
}

// CacheOption configures a CrumbAuthCache.
type CacheOption func(*CrumbAuthCache)

// WithClock injects the time source used for TTL checks.
func WithClock(now func() time.Time) CacheOption {
	return func(c *CrumbAuthCache) {
		c.now = now
	}
}

// WithTTL overrides DefaultCrumbTTL.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *CrumbAuthCache) {
		c.TTL = ttl
	}
}

// -----------------------------------------------------------------------------

func NewCrumbAuthCache(cfg models.MProviderConfig, netMgr interfaces.INetworkManager, log *logger.Logger, opts ...CacheOption) *CrumbAuthCache {
	c := &CrumbAuthCache{
		Network:   netMgr,
		CookieURL: cfg.CookieURL,
		CrumbURL:  cfg.CrumbURL,
		TTL:       DefaultCrumbTTL,
		Logger:    log,
		now:       time.Now,
	}
	if cfg.CrumbTTLMs > 0 {
		c.TTL = time.Duration(cfg.CrumbTTLMs) * time.Millisecond
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// -----------------------------------------------------------------------------

// Get returns the cached session while its age is below TTL, otherwise it
// handshakes and replaces the slot.
func (c *CrumbAuthCache) Get(ctx context.Context) (models.MAuthSession, error) {
	if s, ok := c.cached(); ok {
		return s, nil
	}

	session, err := c.handshake(ctx)
	if err != nil {
		return models.MAuthSession{}, err
	}

	c.mu.Lock()
	c.session = &session
	c.mu.Unlock()

	return session, nil
}

// -----------------------------------------------------------------------------

// Invalidate empties the slot. The next Get performs a full handshake.
func (c *CrumbAuthCache) Invalidate() {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	c.Logger.Info("Auth session invalidated")
}

// -----------------------------------------------------------------------------

func (c *CrumbAuthCache) IsCached() bool {
	_, ok := c.cached()
	return ok
}

// -----------------------------------------------------------------------------

// Handshakes counts completed handshakes since construction.
func (c *CrumbAuthCache) Handshakes() int64 {
	return c.handshakes.Load()
}

// -----------------------------------------------------------------------------

func (c *CrumbAuthCache) cached() (models.MAuthSession, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return models.MAuthSession{}, false
	}
	if !c.session.ValidAt(c.now(), c.TTL) {
		return models.MAuthSession{}, false
	}
	return *c.session, true
}

// -----------------------------------------------------------------------------

func (c *CrumbAuthCache) handshake(ctx context.Context) (models.MAuthSession, error) {
	// 1. Session cookie. The token endpoint answers with a redirect or an error
	// status; only the Set-Cookie headers matter.
	cookieResp, err := c.Network.Do(ctx, models.MHTTPRequest{URL: c.CookieURL, NoRedirect: true})
	if err != nil {
		return models.MAuthSession{}, helpers.NewNetworkError("cookie fetch", err)
	}
	cookie := strings.Join(cookieResp.Header.Values("Set-Cookie"), "; ")

	// 2. Crumb bound to that cookie
	crumbResp, err := c.Network.Do(ctx, models.MHTTPRequest{
		URL:     c.CrumbURL,
		Headers: map[string]string{"Cookie": cookie},
	})
	if err != nil {
		return models.MAuthSession{}, helpers.NewNetworkError("crumb fetch", err)
	}
	if !crumbResp.OK() {
		return models.MAuthSession{}, fmt.Errorf("%w: status %d", ErrCrumbRejected, crumbResp.StatusCode)
	}
	crumb := strings.TrimSpace(string(crumbResp.Body))
	if crumb == "" {
		return models.MAuthSession{}, fmt.Errorf("%w: empty crumb", ErrCrumbRejected)
	}

	c.handshakes.Add(1)
	c.Logger.Info("Provider handshake complete (cookie %d bytes)", len(cookie))

	return models.MAuthSession{
		Crumb:    crumb,
		Cookie:   cookie,
		IssuedAt: c.now(),
	}, nil
}
