package dto

import (
	"net/http"

	"github.com/inventoryops/backend/internal/domain/shared"
)

// HTTP-level error codes
const (
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// GetHTTPStatus maps an error code to an HTTP status code.
// Domain codes map as: NOT_FOUND -> 404, INVALID_STATE -> 409,
// CONCURRENCY_CONFLICT -> 409, VALIDATION_ERROR -> 400.
func GetHTTPStatus(code string) int {
	switch code {
	case shared.CodeNotFound:
		return http.StatusNotFound
	case shared.CodeInvalidState, shared.CodeConcurrencyConflict:
		return http.StatusConflict
	case shared.CodeValidation, ErrCodeBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
