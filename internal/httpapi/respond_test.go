package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sidreyli/edugrade/internal/httpapi"
	"github.com/sidreyli/edugrade/internal/models"
)

func TestPreflightHandlesOptions(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodOptions, "/", nil)

	if !httpapi.Preflight(w, r) {
		t.Fatal("OPTIONS request should be fully handled")
	}
	if w.Code != http.StatusOK {
		t.Fatalf("preflight status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Allow-Origin = %q, want %q", got, "*")
	}
}

func TestPreflightPassesThroughPost(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", nil)

	if httpapi.Preflight(w, r) {
		t.Fatal("POST request should not be swallowed by preflight")
	}
	// CORS headers still apply to the real response.
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Allow-Origin = %q, want %q", got, "*")
	}
}

func TestWriteFailureEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	httpapi.WriteFailure(w, "failed to fetch rubric file")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	var envelope models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if envelope.Success {
		t.Fatal("failure envelope must have success=false")
	}
	if envelope.Error != "failed to fetch rubric file" {
		t.Fatalf("unexpected error string: %q", envelope.Error)
	}
}
