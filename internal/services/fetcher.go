package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"github.com/sidreyli/edugrade/internal/gcp"
)

// FileFetcher retrieves the raw bytes of an uploaded rubric file.
type FileFetcher interface {
	Fetch(ctx context.Context, fileURL string) ([]byte, error)
}

// Fetcher fetches https:// URLs directly and gs:// URLs through the
// storage client when one is configured.
type Fetcher struct {
	httpClient    *http.Client
	storageClient *storage.Client
}

// NewFetcher builds a fetcher. storageClient may be nil, in which case
// gs:// URLs are rejected.
func NewFetcher(httpClient *http.Client, storageClient *storage.Client) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{httpClient: httpClient, storageClient: storageClient}
}

// Fetch downloads the file. A transport failure or non-success status
// is an error; the content itself is opaque at this stage.
func (f *Fetcher) Fetch(ctx context.Context, fileURL string) ([]byte, error) {
	if strings.HasPrefix(fileURL, "gs://") {
		if f.storageClient == nil {
			return nil, fmt.Errorf("gs:// URLs require a configured storage client")
		}
		bucket, object, err := gcp.ParseGSURL(fileURL)
		if err != nil {
			return nil, err
		}
		return gcp.DownloadObject(ctx, f.storageClient, bucket, object)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build fetch request: %w", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("file fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file body: %w", err)
	}
	return data, nil
}
