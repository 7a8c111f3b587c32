package gcp_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sidreyli/edugrade/internal/gcp"
)

func visionServer(t *testing.T, response string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected Authorization header: %q", got)
		}

		var body struct {
			Requests []struct {
				Image struct {
					Content string `json:"content"`
				} `json:"image"`
				Features []struct {
					Type string `json:"type"`
				} `json:"features"`
			} `json:"requests"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if len(body.Requests) != 1 || len(body.Requests[0].Features) != 1 {
			t.Errorf("unexpected request shape: %+v", body)
		} else {
			if body.Requests[0].Features[0].Type != "DOCUMENT_TEXT_DETECTION" {
				t.Errorf("unexpected feature: %q", body.Requests[0].Features[0].Type)
			}
			if _, err := base64.StdEncoding.DecodeString(body.Requests[0].Image.Content); err != nil {
				t.Errorf("image content is not base64: %v", err)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(response))
	}))
}

func detect(t *testing.T, server *httptest.Server) (string, error) {
	t.Helper()
	client := gcp.NewVisionClient(
		gcp.WithVisionEndpoint(server.URL),
		gcp.WithVisionHTTPClient(server.Client()),
	)
	return client.DetectText(context.Background(), []byte("fake image bytes"), "test-token")
}

func TestDetectTextPrefersFullTextAnnotation(t *testing.T) {
	// Both fields present: fullTextAnnotation wins, the legacy list is ignored.
	server := visionServer(t, `{"responses":[{
		"fullTextAnnotation":{"text":"Grading Criteria\n1. Thesis"},
		"textAnnotations":[{"description":"legacy text"}]
	}]}`)
	defer server.Close()

	got, err := detect(t, server)
	if err != nil {
		t.Fatalf("DetectText returned error: %v", err)
	}
	if got != "Grading Criteria\n1. Thesis" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestDetectTextFallsBackToLegacyAnnotations(t *testing.T) {
	server := visionServer(t, `{"responses":[{
		"textAnnotations":[{"description":"first entry"},{"description":"second entry"}]
	}]}`)
	defer server.Close()

	got, err := detect(t, server)
	if err != nil {
		t.Fatalf("DetectText returned error: %v", err)
	}
	if got != "first entry" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestDetectTextNoAnnotations(t *testing.T) {
	for name, response := range map[string]string{
		"empty response object": `{"responses":[{}]}`,
		"no responses":          `{"responses":[]}`,
	} {
		t.Run(name, func(t *testing.T) {
			server := visionServer(t, response)
			defer server.Close()

			got, err := detect(t, server)
			if err != nil {
				t.Fatalf("DetectText returned error: %v", err)
			}
			if got != "[No text detected in image]" {
				t.Fatalf("unexpected text: %q", got)
			}
		})
	}
}

func TestDetectTextAPIError(t *testing.T) {
	server := visionServer(t, `{"responses":[{"error":{"message":"quota exceeded"}}]}`)
	defer server.Close()

	_, err := detect(t, server)
	if err == nil {
		t.Fatal("expected error for API-level failure")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("error does not carry the API message: %v", err)
	}
}

func TestDetectTextHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := gcp.NewVisionClient(gcp.WithVisionEndpoint(server.URL))
	_, err := client.DetectText(context.Background(), []byte("img"), "test-token")
	if err == nil {
		t.Fatal("expected error for non-success status")
	}
}
