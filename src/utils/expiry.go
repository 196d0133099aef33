package utils

import "time"

// ExpiryLabel renders a unix-seconds expiration as a short UTC date, e.g. "Mar 21".
func ExpiryLabel(ts int64) string {
	return time.Unix(ts, 0).UTC().Format("Jan 2")
}
