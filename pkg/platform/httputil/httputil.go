package httputil

import (
	"encoding/json"
	"net/http"
)

// errorBody is the wire shape for all error responses.
type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteJSON serializes v with the given status. Encoding failures are logged
// away by net/http; at that point the status line is already gone.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a structured error response. Internal errors (5xx) omit
// the description so storage or upstream details never leak to clients.
func WriteError(w http.ResponseWriter, status int, code, description string) {
	body := errorBody{Error: code}
	if status < http.StatusInternalServerError {
		body.Description = description
	}
	WriteJSON(w, status, body)
}
