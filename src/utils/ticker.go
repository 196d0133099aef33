package utils

import (
	"strings"

	"options-flow/src/helpers"
)

// NormalizeTicker trims and upper-cases a ticker. Blank input is a ValidationError.
func NormalizeTicker(raw string) (string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(raw))
	if ticker == "" {
		return "", helpers.NewValidationError("Ticker is required")
	}
	return ticker, nil
}
