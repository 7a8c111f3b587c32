package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/sidreyli/edugrade/internal/services"
)

var (
	listenerInstance *services.ListenerFunction
	once             sync.Once
	initErr          error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Register the CloudEvent function. The framework routes storage
	// finalize events here.
	functions.CloudEvent("OnRubricUpload", onRubricUpload)
}

// main is required by the Go Functions Framework.
func main() {}

// onRubricUpload is the Cloud Function entry point for bucket uploads.
func onRubricUpload(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		listenerInstance, initErr = services.NewListener(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent services.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	// Errors are logged with context inside Process; returning one marks
	// the invocation as failed so the event redelivers.
	return listenerInstance.Process(ctx, gcsEvent)
}
