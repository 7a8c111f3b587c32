// Package httpapi holds the JSON/CORS plumbing shared by the HTTP
// worker functions. The browser client calls these functions directly,
// so every response carries permissive CORS headers and preflight
// OPTIONS requests short-circuit with 200.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sidreyli/edugrade/internal/models"
)

// SetCORS applies the permissive CORS headers used by all functions.
func SetCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
}

// Preflight answers OPTIONS requests. It reports whether the request
// was a preflight and has been fully handled.
func Preflight(w http.ResponseWriter, r *http.Request) bool {
	SetCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

// WriteJSON encodes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response.", "error", err)
	}
}

// WriteFailure writes the uniform failure envelope. Every error kind
// maps to HTTP 500; the kind is preserved in the logs, not the wire
// contract, which the UI depends on being a single shape.
func WriteFailure(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusInternalServerError, models.ErrorResponse{
		Success: false,
		Error:   message,
	})
}
