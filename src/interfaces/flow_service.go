package interfaces

import (
	"context"
	"options-flow/src/models"
)

// -----------------------------------------------------------------------------
// IFlowService is the request/response contract shared by the HTTP, websocket
// and gRPC surfaces.
// -----------------------------------------------------------------------------

type IFlowService interface {

	// GetFlow validates the request, fetches the chain and assembles the analytics.
	GetFlow(ctx context.Context, req models.MFlowRequest) (*models.MFlowData, error)

	// -----------------------------------------------------------------------------

	// InvalidateAuth clears the provider session.
	InvalidateAuth()

	// -----------------------------------------------------------------------------

	// AuthCached reports whether a fresh provider session is held.
	AuthCached() bool

	// -----------------------------------------------------------------------------

	// SourceName names the chain source behind GetFlow.
	SourceName() string
}
