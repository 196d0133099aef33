package interfaces

import "time"

// -----------------------------------------------------------------------------
// IDataExchanger is a served surface (HTTP API, gRPC control).
// -----------------------------------------------------------------------------

type IDataExchanger interface {

	// -----------------------------------------------------------------------------
	// Start the server; blocks until it stops or fails
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}

// -----------------------------------------------------------------------------
// IWatchHub is the live watch stream as seen by the control service.
// -----------------------------------------------------------------------------

type IWatchHub interface {

	// ClientCount returns the number of connected watch clients
	ClientCount() int

	// -----------------------------------------------------------------------------

	// SetPollInterval changes the refresh period of new subscriptions
	SetPollInterval(d time.Duration)
}
