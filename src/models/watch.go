package models

// -----------------------------------------------------------------------------
// WebSocket watch stream messages
// -----------------------------------------------------------------------------

type MWatchCommand struct {
	Command    string `json:"command"` // "subscribe" or "unsubscribe"
	Ticker     string `json:"ticker"`
	Expiration int64  `json:"expiration"`
}

type MWatchMessage struct {
	Type      string     `json:"type"` // "FLOW", "ERROR", "MARKET_CLOSED", "UNSUBSCRIBED"
	Ticker    string     `json:"ticker,omitempty"`
	Data      *MFlowData `json:"data,omitempty"`
	Error     string     `json:"error,omitempty"`
	Timestamp int64      `json:"timestamp"`
}

// MServiceStatus is reported by the health endpoint and the control service.
type MServiceStatus struct {
	Status       string `json:"status"`
	Source       string `json:"source"`
	AuthCached   bool   `json:"auth_cached"`
	WatchClients int    `json:"watch_clients"`
}
