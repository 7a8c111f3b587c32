package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"cloud.google.com/go/vertexai/genai"
	"github.com/google/uuid"

	"github.com/sidreyli/edugrade/internal/gcp"
	"github.com/sidreyli/edugrade/internal/models"
	"github.com/sidreyli/edugrade/internal/store"
)

const (
	defaultSlideCount = 8
	maxSlideCount     = 30
)

// SlideGeneratorConfig holds all configuration for the slide generator service.
type SlideGeneratorConfig struct {
	ProjectID      string
	VertexAIRegion string
	DatabaseDSN    string
}

type deckArtifacts interface {
	InsertSlideDeck(ctx context.Context, deck *models.SlideDeck) error
}

// SlideGeneratorFunction holds the dependencies for slide deck generation.
type SlideGeneratorFunction struct {
	model     generativeModel
	artifacts deckArtifacts
}

func loadSlideGeneratorConfig() (*SlideGeneratorConfig, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	dsn := gcp.GetEnv("DATABASE_URL", "")
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable must be set")
	}

	return &SlideGeneratorConfig{
		ProjectID:      projectID,
		VertexAIRegion: gcp.GetEnv("VERTEX_AI_REGION", "us-central1"),
		DatabaseDSN:    dsn,
	}, nil
}

// NewSlideGenerator creates a new SlideGeneratorFunction instance.
func NewSlideGenerator(ctx context.Context) (*SlideGeneratorFunction, error) {
	config, err := loadSlideGeneratorConfig()
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

	return &SlideGeneratorFunction{
		model:     vertexClient.SlideWriterModel,
		artifacts: store.NewArtifactStore(pool),
	}, nil
}

// Process generates a slide deck with the JSON-forced model, decodes it
// into slide structs, and persists the deck.
func (f *SlideGeneratorFunction) Process(ctx context.Context, req *models.SlideDeckRequest) (*models.SlideDeckResponse, error) {
	logCtx := slog.With("teacherId", req.TeacherID, "topic", req.Topic)

	if req.TeacherID == "" || req.Topic == "" {
		return nil, kindError(kindValidation, "teacherId and topic are required")
	}
	slideCount := req.SlideCount
	if slideCount <= 0 {
		slideCount = defaultSlideCount
	}
	if slideCount > maxSlideCount {
		slideCount = maxSlideCount
	}

	prompt := fmt.Sprintf("%s\n\nTopic: %s\nNumber of slides: %d",
		gcp.SlideWriterUserPrompt, req.Topic, slideCount)

	raw, err := generateText(ctx, logCtx, f.model, genai.Text(prompt))
	if err != nil {
		logCtx.Error("Slide generation failed.", "kind", kindOf(err), "error", err)
		return nil, kindError(kindLLM, "failed to generate slides: %w", err)
	}

	var slides []models.Slide
	if err := json.Unmarshal([]byte(raw), &slides); err != nil {
		logCtx.Error("Slide generation returned invalid JSON.", "error", err)
		return nil, kindError(kindLLM, "model returned invalid slide JSON: %w", err)
	}
	if len(slides) == 0 {
		return nil, kindError(kindLLM, "model returned an empty slide deck")
	}

	deck := &models.SlideDeck{
		ID:        uuid.NewString(),
		TeacherID: req.TeacherID,
		Topic:     req.Topic,
		Slides:    slides,
	}
	if req.LessonPlanID != "" {
		deck.LessonPlanID = &req.LessonPlanID
	}

	if err := f.artifacts.InsertSlideDeck(ctx, deck); err != nil {
		logCtx.Error("Slide deck persistence failed.", "error", err)
		return nil, kindError(kindPersistence, "failed to save slide deck: %w", err)
	}

	logCtx.Info("Slide deck generated.", "deckId", deck.ID, "slideCount", len(slides))
	return &models.SlideDeckResponse{
		Success: true,
		DeckID:  deck.ID,
		Slides:  slides,
	}, nil
}
