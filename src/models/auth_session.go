package models

import "time"

// MAuthSession is the crumb/cookie pair issued by the provider handshake.
// It is always replaced as a whole value.
type MAuthSession struct {
	Crumb    string    `json:"crumb"`
	Cookie   string    `json:"cookie"`
	IssuedAt time.Time `json:"issued_at"`
}

// ValidAt reports whether the session is younger than ttl at now.
func (s MAuthSession) ValidAt(now time.Time, ttl time.Duration) bool {
	if s.IssuedAt.IsZero() {
		return false
	}
	return now.Sub(s.IssuedAt) < ttl
}
