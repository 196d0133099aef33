package interfaces

import (
	"context"
	"options-flow/src/models"
)

// -----------------------------------------------------------------------------
// IAuthCache holds the provider crumb/cookie session.
// -----------------------------------------------------------------------------

type IAuthCache interface {

	// Get returns the memoized session while it is fresh, otherwise performs
	// a full handshake and stores the new session.
	Get(ctx context.Context) (models.MAuthSession, error)

	// -----------------------------------------------------------------------------

	// Invalidate drops the cached session so the next Get re-authenticates.
	Invalidate()

	// -----------------------------------------------------------------------------

	// IsCached reports whether a fresh session is currently held.
	IsCached() bool
}

// -----------------------------------------------------------------------------
// IChainSource fetches one expiration of an option chain.
// -----------------------------------------------------------------------------

type IChainSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchChain returns the normalized snapshot for ticker. A nil expiration
	// selects the provider's default (nearest) expiration.
	FetchChain(ctx context.Context, ticker string, expiration *int64) (*models.MChainSnapshot, error)
}
