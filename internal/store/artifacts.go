package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sidreyli/edugrade/internal/models"
)

// ArtifactStore persists LLM-generated artifacts: lesson plans and
// slide decks. Both tables are insert-only from this service.
type ArtifactStore struct {
	pool *pgxpool.Pool
}

// NewArtifactStore wraps a pool.
func NewArtifactStore(pool *pgxpool.Pool) *ArtifactStore {
	return &ArtifactStore{pool: pool}
}

// InsertLessonPlan writes one lesson_plans row.
func (s *ArtifactStore) InsertLessonPlan(ctx context.Context, lp *models.LessonPlan) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO lesson_plans (id, teacher_id, rubric_id, subject, topic, grade_level, duration_minutes, content)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		lp.ID, lp.TeacherID, lp.RubricID, lp.Subject, lp.Topic, lp.GradeLevel, lp.DurationMinutes, lp.Content)
	if err != nil {
		return fmt.Errorf("failed to insert lesson plan %s: %w", lp.ID, err)
	}
	return nil
}

// InsertSlideDeck writes one slide_decks row, with the slides encoded
// as a JSON array column.
func (s *ArtifactStore) InsertSlideDeck(ctx context.Context, deck *models.SlideDeck) error {
	slidesJSON, err := json.Marshal(deck.Slides)
	if err != nil {
		return fmt.Errorf("failed to encode slides for deck %s: %w", deck.ID, err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO slide_decks (id, teacher_id, lesson_plan_id, topic, slides)
		 VALUES ($1, $2, $3, $4, $5)`,
		deck.ID, deck.TeacherID, deck.LessonPlanID, deck.Topic, slidesJSON)
	if err != nil {
		return fmt.Errorf("failed to insert slide deck %s: %w", deck.ID, err)
	}
	return nil
}

// GetRubricText fetches the extracted text of a rubric, used by the
// lesson planner to align assessments with grading criteria.
func (s *ArtifactStore) GetRubricText(ctx context.Context, rubricID string) (string, error) {
	var text *string
	err := s.pool.QueryRow(ctx,
		`SELECT extracted_text FROM rubrics WHERE id = $1`, rubricID).Scan(&text)
	if err != nil {
		return "", fmt.Errorf("failed to read rubric %s: %w", rubricID, err)
	}
	if text == nil {
		return "", nil
	}
	return *text, nil
}
