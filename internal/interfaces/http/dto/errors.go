package dto

import (
	"net/http"
	"strings"
)

// Error codes produced by the HTTP layer itself. Domain codes pass through unchanged.
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeInvalidID         = "INVALID_ID"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeInvalidToken      = "INVALID_TOKEN"
	ErrCodeTokenExpired      = "TOKEN_EXPIRED"
	ErrCodeTokenRevoked      = "TOKEN_REVOKED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeAlreadyExists     = "ALREADY_EXISTS"
	ErrCodeRateLimited       = "RATE_LIMIT_EXCEEDED"
	ErrCodeRequestTooLarge   = "REQUEST_TOO_LARGE"
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodePrintUnavailable  = "PRINTING_UNAVAILABLE"
	ErrCodeRequestTimeout    = "REQUEST_TIMEOUT"
	ErrCodeAccountLocked     = "ACCOUNT_LOCKED"
	ErrCodeInvalidCredential = "INVALID_CREDENTIALS"
)

// ErrorCodeHTTPStatus maps exact error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidID:    http.StatusBadRequest,

	ErrCodeUnauthorized:      http.StatusUnauthorized,
	ErrCodeInvalidToken:      http.StatusUnauthorized,
	ErrCodeTokenExpired:      http.StatusUnauthorized,
	ErrCodeTokenRevoked:      http.StatusUnauthorized,
	ErrCodeInvalidCredential: http.StatusUnauthorized,

	ErrCodeForbidden:     http.StatusForbidden,
	ErrCodeAccountLocked: http.StatusForbidden,

	ErrCodeNotFound: http.StatusNotFound,

	ErrCodeAlreadyExists:      http.StatusConflict,
	"CONCURRENT_MODIFICATION": http.StatusConflict,

	"INSUFFICIENT_STOCK": http.StatusUnprocessableEntity,
	"RATE_NOT_FOUND":     http.StatusUnprocessableEntity,
	"INVALID_STATE":      http.StatusUnprocessableEntity,
	"INVALID_TRANSITION": http.StatusUnprocessableEntity,
	"CART_FULL":          http.StatusUnprocessableEntity,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRequestTimeout:  http.StatusGatewayTimeout,

	ErrCodePrintUnavailable: http.StatusServiceUnavailable,

	ErrCodeInternal: http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unlisted INVALID_* and *_REQUIRED codes are input errors; anything else is 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasPrefix(code, "INVALID_"),
		strings.HasPrefix(code, "WEAK_"),
		strings.HasPrefix(code, "TOO_MANY_"),
		strings.HasSuffix(code, "_REQUIRED"):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
