package dto

import (
	"net/http"
	"strings"
)

// Codes raised by the HTTP layer itself. Domain codes come from shared.DomainError.
const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// errorCodeHTTPStatus holds the codes whose status is not derived from their shape
var errorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:         http.StatusBadRequest,
	"EMPTY_CART":              http.StatusBadRequest,
	"INSUFFICIENT_STOCK":      http.StatusConflict,
	"OVERPAYMENT":             http.StatusConflict,
	"DUPLICATE_CODE":          http.StatusConflict,
	"ALREADY_EXISTS":          http.StatusConflict,
	"CONCURRENCY_CONFLICT":    http.StatusConflict,
	"IDEMPOTENCY_IN_PROGRESS": http.StatusConflict,
	"IDEMPOTENCY_KEY_REUSED":  http.StatusConflict,
	"INVALID_STATE":           http.StatusConflict,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeRateLimited:        http.StatusTooManyRequests,
	ErrCodeRequestTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeInternal:           http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for an error code.
// *_NOT_FOUND maps to 404 and INVALID_* to 400; unknown codes are 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case code == ErrCodeNotFound || strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
