package services

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/vertexai/genai"
	"github.com/google/uuid"

	"github.com/sidreyli/edugrade/internal/gcp"
	"github.com/sidreyli/edugrade/internal/models"
	"github.com/sidreyli/edugrade/internal/store"
)

// LessonPlannerConfig holds all configuration for the lesson planner service.
type LessonPlannerConfig struct {
	ProjectID      string
	VertexAIRegion string
	DatabaseDSN    string
}

// lessonArtifacts is the store slice the planner needs.
type lessonArtifacts interface {
	InsertLessonPlan(ctx context.Context, lp *models.LessonPlan) error
	GetRubricText(ctx context.Context, rubricID string) (string, error)
}

// LessonPlannerFunction holds the dependencies for lesson plan drafting.
type LessonPlannerFunction struct {
	model     generativeModel
	artifacts lessonArtifacts
}

// loadLessonPlannerConfig loads and validates all necessary environment
// variables for this service.
func loadLessonPlannerConfig() (*LessonPlannerConfig, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	dsn := gcp.GetEnv("DATABASE_URL", "")
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable must be set")
	}

	return &LessonPlannerConfig{
		ProjectID:      projectID,
		VertexAIRegion: gcp.GetEnv("VERTEX_AI_REGION", "us-central1"),
		DatabaseDSN:    dsn,
	}, nil
}

// NewLessonPlanner creates a new LessonPlannerFunction instance.
func NewLessonPlanner(ctx context.Context) (*LessonPlannerFunction, error) {
	config, err := loadLessonPlannerConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	vertexClient, err := gcp.NewVertexClient(ctx, config.ProjectID, config.VertexAIRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex client: %w", err)
	}

	pool, err := store.Open(ctx, store.Config{DSN: config.DatabaseDSN})
	if err != nil {
		return nil, err
	}

	return &LessonPlannerFunction{
		model:     vertexClient.LessonPlannerModel,
		artifacts: store.NewArtifactStore(pool),
	}, nil
}

// Process drafts a lesson plan with the model and persists it.
func (f *LessonPlannerFunction) Process(ctx context.Context, req *models.LessonPlanRequest) (*models.LessonPlanResponse, error) {
	logCtx := slog.With("teacherId", req.TeacherID, "topic", req.Topic)

	if req.TeacherID == "" || req.Subject == "" || req.Topic == "" {
		return nil, kindError(kindValidation, "teacherId, subject and topic are required")
	}
	if req.DurationMinutes <= 0 {
		req.DurationMinutes = 45
	}

	prompt := fmt.Sprintf("%s\n\nSubject: %s\nTopic: %s\nGrade level: %s\nDuration: %d minutes",
		gcp.LessonPlannerUserPrompt, req.Subject, req.Topic, req.GradeLevel, req.DurationMinutes)

	// When a rubric is attached, feed its extracted text to the model so
	// the assessment section aligns with the grading criteria.
	if req.RubricID != "" {
		rubricText, err := f.artifacts.GetRubricText(ctx, req.RubricID)
		if err != nil {
			logCtx.Warn("Could not load rubric text, drafting without it.", "rubricId", req.RubricID, "error", err)
		} else if rubricText != "" {
			prompt += "\n\nGrading criteria for this lesson:\n" + rubricText
		}
	}

	content, err := generateText(ctx, logCtx, f.model, genai.Text(prompt))
	if err != nil {
		logCtx.Error("Lesson plan generation failed.", "kind", kindOf(err), "error", err)
		return nil, kindError(kindLLM, "failed to generate lesson plan: %w", err)
	}

	plan := &models.LessonPlan{
		ID:              uuid.NewString(),
		TeacherID:       req.TeacherID,
		Subject:         req.Subject,
		Topic:           req.Topic,
		GradeLevel:      req.GradeLevel,
		DurationMinutes: req.DurationMinutes,
		Content:         content,
	}
	if req.RubricID != "" {
		plan.RubricID = &req.RubricID
	}

	if err := f.artifacts.InsertLessonPlan(ctx, plan); err != nil {
		logCtx.Error("Lesson plan persistence failed.", "error", err)
		return nil, kindError(kindPersistence, "failed to save lesson plan: %w", err)
	}

	logCtx.Info("Lesson plan generated.", "lessonPlanId", plan.ID, "contentLength", len(content))
	return &models.LessonPlanResponse{
		Success:      true,
		LessonPlanID: plan.ID,
		Content:      content,
	}, nil
}
