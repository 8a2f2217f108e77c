package dto

import (
	"net/http"

	"github.com/orderops/backend/internal/domain/shared"
)

// Error codes carried in the response envelope. Domain codes are passed
// through unchanged; the rest originate in the HTTP layer.
const (
	ErrCodeValidation    = shared.CodeValidation
	ErrCodeParse         = shared.CodeParse
	ErrCodeNoData        = shared.CodeNoData
	ErrCodeNotFound      = shared.CodeNotFound
	ErrCodeMergeConflict = shared.CodeMergeConflict
	ErrCodeInvalidState  = shared.CodeInvalidState
	ErrCodePersistence   = shared.CodePersistence

	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeInternal            = "INTERNAL_ERROR"
	ErrCodeRateLimited         = "RATE_LIMIT_EXCEEDED"
	ErrCodeRequestTooLarge     = "REQUEST_TOO_LARGE"
	ErrCodeIdempotencyConflict = "IDEMPOTENCY_KEY_REUSED"
	ErrCodeRouteNotFound       = "ROUTE_NOT_FOUND"
	ErrCodeCanceled            = "REQUEST_CANCELED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:    http.StatusBadRequest,
	ErrCodeBadRequest:    http.StatusBadRequest,
	ErrCodeParse:         http.StatusUnprocessableEntity,
	ErrCodeNoData:        http.StatusUnprocessableEntity,
	ErrCodeInvalidState:  http.StatusUnprocessableEntity,
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeRouteNotFound: http.StatusNotFound,
	ErrCodeMergeConflict: http.StatusConflict,

	ErrCodeIdempotencyConflict: http.StatusConflict,
	ErrCodeRequestTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:         http.StatusTooManyRequests,

	ErrCodePersistence: http.StatusInternalServerError,
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeCanceled:    http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// legacyErrorCodes maps older or alternative spellings onto the canonical codes
var legacyErrorCodes = map[string]string{
	"INVALID_INPUT":  ErrCodeValidation,
	"ERR_VALIDATION": ErrCodeValidation,
	"ERR_NOT_FOUND":  ErrCodeNotFound,
	"ERR_CONFLICT":   ErrCodeMergeConflict,
	"ERR_INTERNAL":   ErrCodeInternal,
}

// NormalizeErrorCode converts an alternative error code to its canonical form.
// Canonical and unknown codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if canonical, ok := legacyErrorCodes[code]; ok {
		return canonical
	}
	return code
}
