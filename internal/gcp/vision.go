package gcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultVisionEndpoint = "https://vision.googleapis.com/v1/images:annotate"

// VisionClient calls the Cloud Vision document-text-detection feature
// over REST, authenticated with a bearer token supplied per call.
type VisionClient struct {
	endpoint   string
	httpClient *http.Client
}

// VisionOption customizes a VisionClient.
type VisionOption func(*VisionClient)

// WithVisionEndpoint overrides the annotate endpoint.
func WithVisionEndpoint(endpoint string) VisionOption {
	return func(c *VisionClient) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithVisionHTTPClient overrides the default HTTP client.
func WithVisionHTTPClient(client *http.Client) VisionOption {
	return func(c *VisionClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewVisionClient returns a client for the images:annotate endpoint.
func NewVisionClient(opts ...VisionOption) *VisionClient {
	c := &VisionClient{
		endpoint:   defaultVisionEndpoint,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type annotateImage struct {
	Content string `json:"content"`
}

type annotateFeature struct {
	Type string `json:"type"`
}

type annotateEntry struct {
	Image    annotateImage     `json:"image"`
	Features []annotateFeature `json:"features"`
}

type annotateRequest struct {
	Requests []annotateEntry `json:"requests"`
}

type annotateResponse struct {
	Responses []struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error,omitempty"`
		FullTextAnnotation *struct {
			Text string `json:"text"`
		} `json:"fullTextAnnotation,omitempty"`
		TextAnnotations []struct {
			Description string `json:"description"`
		} `json:"textAnnotations,omitempty"`
	} `json:"responses"`
}

// DetectText sends the image through DOCUMENT_TEXT_DETECTION and
// unpacks the response. Transport and API-level failures are hard
// errors; a response with no annotations at all degrades to a
// placeholder string, since an image without readable text is a
// data-quality condition rather than a dependency failure.
func (c *VisionClient) DetectText(ctx context.Context, image []byte, accessToken string) (string, error) {
	reqBody := annotateRequest{
		Requests: []annotateEntry{{
			Image:    annotateImage{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []annotateFeature{{Type: "DOCUMENT_TEXT_DETECTION"}},
		}},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode vision request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build vision request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("vision request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("vision API returned status %d", resp.StatusCode)
	}

	var annotated annotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&annotated); err != nil {
		return "", fmt.Errorf("failed to decode vision response: %w", err)
	}
	if len(annotated.Responses) == 0 {
		return "[No text detected in image]", nil
	}

	r := annotated.Responses[0]
	switch {
	case r.Error != nil:
		return "", fmt.Errorf("vision API error: %s", r.Error.Message)
	case r.FullTextAnnotation != nil:
		return r.FullTextAnnotation.Text, nil
	case len(r.TextAnnotations) > 0:
		return r.TextAnnotations[0].Description, nil
	default:
		return "[No text detected in image]", nil
	}
}
