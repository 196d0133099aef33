package interfaces

import (
	"context"
	"options-flow/src/models"
)

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for outbound HTTP requests.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Do performs a single GET and returns status, headers and body without
	// interpreting the status code.
	Do(ctx context.Context, req models.MHTTPRequest) (*models.MHTTPResponse, error)
}
