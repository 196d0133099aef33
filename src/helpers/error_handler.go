package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"options-flow/src/logger"
	"sync/atomic"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type OptionsFlowError struct {
	Message string
	Cause   error
}

func (e *OptionsFlowError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *OptionsFlowError) Unwrap() error {
	return e.Cause
}

// ValidationError is a user-correctable request problem; no network call is issued.
type ValidationError struct{ OptionsFlowError }

// ProviderUnavailableError means the chain endpoint answered with a non-success status.
type ProviderUnavailableError struct {
	OptionsFlowError
	Ticker     string
	StatusCode int
}

// NoDataError means the provider has no listed options for the ticker.
type NoDataError struct {
	OptionsFlowError
	Ticker string
}

type NetworkError struct{ OptionsFlowError }
type ConfigurationError struct{ OptionsFlowError }

// -----------------------------------------------------------------------------

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{OptionsFlowError{Message: fmt.Sprintf(format, args...)}}
}

func NewProviderUnavailableError(ticker string, statusCode int) error {
	return &ProviderUnavailableError{
		OptionsFlowError: OptionsFlowError{Message: fmt.Sprintf("Failed to fetch options data for %s", ticker)},
		Ticker:           ticker,
		StatusCode:       statusCode,
	}
}

func NewNoDataError(ticker string) error {
	return &NoDataError{
		OptionsFlowError: OptionsFlowError{Message: fmt.Sprintf("No options data available for %s", ticker)},
		Ticker:           ticker,
	}
}

func NewNetworkError(operation string, cause error) error {
	return &NetworkError{OptionsFlowError{Message: fmt.Sprintf("%s failed", operation), Cause: cause}}
}

func NewConfigurationError(format string, args ...interface{}) error {
	return &ConfigurationError{OptionsFlowError{Message: fmt.Sprintf(format, args...)}}
}

// -----------------------------------------------------------------------------
// Classification
// -----------------------------------------------------------------------------

// HTTPStatus maps an error from the flow pipeline to the response status code.
func HTTPStatus(err error) int {
	var validationErr *ValidationError
	var providerErr *ProviderUnavailableError
	var noDataErr *NoDataError

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &noDataErr):
		return http.StatusNotFound
	case errors.As(err, &providerErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

type ErrorHandler struct {
	Logger     *logger.Logger
	ErrorCount atomic.Int64
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	if log == nil {
		log = logger.NewLogger(nil, "ErrorHandler")
	}
	return &ErrorHandler{Logger: log}
}

// -----------------------------------------------------------------------------

// Handle logs a boundary failure. User-correctable errors are logged at info,
// everything else at error level.
func (e *ErrorHandler) Handle(err error, context string) {
	if err == nil {
		return
	}
	switch HTTPStatus(err) {
	case http.StatusBadRequest, http.StatusNotFound:
		e.Logger.Info("%s: %v", context, err)
	default:
		e.ErrorCount.Add(1)
		e.Logger.Error("Error in %s: %v", context, err)
	}
}
