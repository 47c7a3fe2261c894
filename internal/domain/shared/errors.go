package shared

import "errors"

// DomainError carries a stable machine code for API clients alongside a
// human message. The HTTP layer maps codes to status codes.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code.
// Messages may differ, so NewDomainError("NOT_FOUND", "Product not found") matches ErrNotFound.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Sentinels for errors.Is; match by code only
var (
	ErrNotFound               = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists          = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidState           = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock      = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrRateNotFound           = NewDomainError("RATE_NOT_FOUND", "No metal rate configured for this metal, purity and market")
	ErrInvalidTransition      = NewDomainError("INVALID_TRANSITION", "Status transition is not allowed")
	ErrConcurrentModification = NewDomainError("CONCURRENT_MODIFICATION", "The record was changed by another request, reload and try again")
)

// GetDomainError extracts a DomainError from an error chain
func GetDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
