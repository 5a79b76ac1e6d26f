package dto

import "net/http"

// Edge error codes for failures that originate in the HTTP layer itself
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeInternal is used for unexpected server errors
	ErrCodeInternal = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps domain and edge error codes to HTTP status codes.
// Codes missing from the table fall back to 500.
var ErrorCodeHTTPStatus = map[string]int{
	// Edge errors
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeInternal:     http.StatusInternalServerError,

	// Cash drawer domain codes
	"VALIDATION_ERROR":        http.StatusBadRequest,
	"INVALID_COUNT":           http.StatusBadRequest,
	"AUTHORIZATION_ERROR":     http.StatusForbidden,
	"FORBIDDEN":               http.StatusForbidden,
	"REGISTER_NOT_FOUND":      http.StatusNotFound,
	"NOT_FOUND":               http.StatusNotFound,
	"ALREADY_EXISTS":          http.StatusConflict,
	"DUPLICATE_SUBMISSION":    http.StatusConflict,
	"CONCURRENT_MODIFICATION": http.StatusConflict,
	"CONCURRENCY_CONFLICT":    http.StatusConflict,
	"INVALID_STATE":           http.StatusUnprocessableEntity,
	"INSUFFICIENT_BALANCE":    http.StatusUnprocessableEntity,
	"CHANGE_INFEASIBLE":       http.StatusUnprocessableEntity,
	"PERSISTENCE_ERROR":       http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
