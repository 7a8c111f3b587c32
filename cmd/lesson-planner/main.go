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
	plannerInstance *services.LessonPlannerFunction
	once            sync.Once
	initErr         error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("GenerateLessonPlan", handleGenerateLessonPlan)
}

// main is required by the Go Functions Framework.
func main() {}

func handleGenerateLessonPlan(w http.ResponseWriter, r *http.Request) {
	if httpapi.Preflight(w, r) {
		return
	}

	once.Do(func() {
		plannerInstance, initErr = services.NewLessonPlanner(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		httpapi.WriteFailure(w, "service initialization failed")
		return
	}

	var req models.LessonPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Could not decode request body", "error", err)
		httpapi.WriteFailure(w, "invalid JSON body")
		return
	}

	res, err := plannerInstance.Process(r.Context(), &req)
	if err != nil {
		httpapi.WriteFailure(w, err.Error())
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, res)
}
