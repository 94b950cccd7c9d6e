package dto

import "net/http"

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Auth failures from webhook signature checks map to 401; a missing or
// invalid provider credential on a sync request is a caller mistake and
// maps to 400. An upstream provider failure is the only 5xx the edge
// intentionally emits.
var ErrorCodeHTTPStatus = map[string]int{
	"NOT_FOUND":         http.StatusNotFound,
	"ALREADY_EXISTS":    http.StatusConflict,
	"INVALID_INPUT":     http.StatusBadRequest,
	"AUTH_FAILED":       http.StatusBadRequest,
	"UPSTREAM_FAILED":   http.StatusBadGateway,
	"VALIDATION_FAILED": http.StatusBadRequest,
	"CONFLICT":          http.StatusConflict,
	"CONFIG_MISSING":    http.StatusBadRequest,
	"UNAUTHORIZED":      http.StatusUnauthorized,
	"INTERNAL":          http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
