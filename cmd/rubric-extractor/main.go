package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/sidreyli/edugrade/internal/httpapi"
	"github.com/sidreyli/edugrade/internal/models"
	"github.com/sidreyli/edugrade/internal/services"
)

var (
	extractorInstance *services.ExtractorFunction
	once              sync.Once
	initErr           error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Register the HTTP function with the framework.
	functions.HTTP("ExtractRubricText", handleExtractRubric)
}

// main is required by the Go Functions Framework.
func main() {}

// handleExtractRubric is the HTTP entry point for rubric extraction.
// Every failure, whatever its kind, becomes the uniform 500 envelope;
// the kind only survives in the logs.
func handleExtractRubric(w http.ResponseWriter, r *http.Request) {
	if httpapi.Preflight(w, r) {
		return
	}

	once.Do(func() {
		extractorInstance, initErr = services.NewExtractorFromEnv(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		httpapi.WriteFailure(w, "service initialization failed")
		return
	}

	var req models.ExtractRubricRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Could not decode request body", "error", err)
		httpapi.WriteFailure(w, "invalid JSON body")
		return
	}

	res, err := extractorInstance.Process(r.Context(), &req)
	if err != nil {
		// The specific error and its kind are already logged inside Process.
		httpapi.WriteFailure(w, err.Error())
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, res)
}
