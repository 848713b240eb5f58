package dto

import "net/http"

// Error codes returned by the API. Handlers should use these rather than
// inventing ad-hoc strings so clients can match on them reliably.
const (
	// Generic
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeInvalidState     = "INVALID_STATE"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"

	// Orders and payments
	ErrCodePaymentRequired  = "PAYMENT_REQUIRED"
	ErrCodeCityNotFound     = "CITY_NOT_FOUND"
	ErrCodePaymentsDisabled = "PAYMENTS_DISABLED"
	ErrCodeWebhookInvalid   = "WEBHOOK_INVALID"
)

// ErrorCodeHTTPStatus maps API error codes to HTTP status codes.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternalError:    http.StatusInternalServerError,
	ErrCodeValidationFailed: http.StatusBadRequest,
	ErrCodeInvalidRequest:   http.StatusBadRequest,
	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeAlreadyExists:    http.StatusConflict,
	ErrCodeInvalidState:     http.StatusConflict,
	ErrCodeForbidden:        http.StatusForbidden,
	ErrCodeRateLimited:      http.StatusTooManyRequests,
	ErrCodePayloadTooLarge:  http.StatusRequestEntityTooLarge,

	ErrCodePaymentRequired:  http.StatusForbidden,
	ErrCodeCityNotFound:     http.StatusUnprocessableEntity,
	ErrCodePaymentsDisabled: http.StatusConflict,
	ErrCodeWebhookInvalid:   http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status for an error code, defaulting to 500
// for unknown codes.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodeMapping translates domain layer error codes to API codes.
// Most are identical; the map exists so the domain vocabulary can drift
// without leaking into the wire contract.
var domainErrorCodeMapping = map[string]string{
	"INVALID_INPUT": ErrCodeInvalidRequest,
}

// NormalizeErrorCode converts a domain error code to its API equivalent.
func NormalizeErrorCode(code string) string {
	if normalized, ok := domainErrorCodeMapping[code]; ok {
		return normalized
	}
	return code
}
