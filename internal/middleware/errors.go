package middleware

import (
	"encoding/json"
	"net/http"
)

// Error codes and messages written by middleware.
const (
	CodeInternal        = "INTERNAL_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodePayloadTooLarge = "PAYLOAD_TOO_LARGE"

	MsgServerError     = "Server error"
	MsgUnauthorized    = "Unauthorized"
	MsgPayloadTooLarge = "Request body too large"
)

// writeJSONError mirrors the handler error body: {"error": ..., "code": ...}.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"code":  code,
	})
}
