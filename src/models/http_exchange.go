package models

import "net/http"

// -----------------------------------------------------------------------------
// Outbound HTTP exchange used by the network manager
// -----------------------------------------------------------------------------

type MHTTPRequest struct {
	URL     string
	Params  map[string]string
	Headers map[string]string
	// NoRedirect returns 3xx responses as-is instead of following them.
	NoRedirect bool
}

type MHTTPResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *MHTTPResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
