package yahoo

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"options-flow/src/helpers"
	"options-flow/src/interfaces"
	"options-flow/src/logger"
	"options-flow/src/models"
	"options-flow/src/utils"
)

// OptionsChainSource fetches option chains from the Yahoo Finance options endpoint.
type OptionsChainSource struct {
	OptionsURL string
	Network    interfaces.INetworkManager
	Auth       interfaces.IAuthCache
	Logger     *logger.Logger
}

// -----------------------------------------------------------------------------

func NewOptionsChainSource(cfg models.MProviderConfig, netMgr interfaces.INetworkManager, auth interfaces.IAuthCache, log *logger.Logger) *OptionsChainSource {
	return &OptionsChainSource{
		OptionsURL: strings.TrimRight(cfg.OptionsURL, "/"),
		Network:    netMgr,
		Auth:       auth,
		Logger:     log,
	}
}

// -----------------------------------------------------------------------------

func (s *OptionsChainSource) Name() string {
	return "yahoo"
}

// -----------------------------------------------------------------------------

// FetchChain requests one expiration of the chain for ticker.
//
// A non-success status invalidates the auth cache, on the assumption the crumb
// went stale, and fails this request with ProviderUnavailableError. The request
// is not retried; only the next call re-authenticates.
func (s *OptionsChainSource) FetchChain(ctx context.Context, ticker string, expiration *int64) (*models.MChainSnapshot, error) {
	ticker, err := utils.NormalizeTicker(ticker)
	if err != nil {
		return nil, err
	}

	session, err := s.Auth.Get(ctx)
	if err != nil {
		if errors.Is(err, ErrCrumbRejected) {
			s.Logger.Warning("Handshake rejected while fetching %s: %v", ticker, err)
			return nil, helpers.NewProviderUnavailableError(ticker, 0)
		}
		return nil, err
	}

	params := map[string]string{"crumb": session.Crumb}
	if expiration != nil {
		params["date"] = strconv.FormatInt(*expiration, 10)
	}

	resp, err := s.Network.Do(ctx, models.MHTTPRequest{
		URL:     s.OptionsURL + "/" + url.PathEscape(ticker),
		Params:  params,
		Headers: map[string]string{"Cookie": session.Cookie},
	})
	if err != nil {
		return nil, helpers.NewNetworkError("options chain fetch for "+ticker, err)
	}

	if !resp.OK() {
		s.Logger.Warning("Options fetch for %s returned %d, invalidating auth session", ticker, resp.StatusCode)
		s.Auth.Invalidate()
		return nil, helpers.NewProviderUnavailableError(ticker, resp.StatusCode)
	}

	snapshot, err := ParseOptionsResponse(ticker, resp.Body)
	if err != nil {
		return nil, err
	}

	s.Logger.Debug("Fetched %s: %d calls, %d puts, expiry %s, %d expirations",
		ticker, len(snapshot.Calls), len(snapshot.Puts), snapshot.ExpirationLabel, len(snapshot.Expirations))
	return snapshot, nil
}
