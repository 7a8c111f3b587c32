package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sidreyli/edugrade/internal/models"
)

// RubricStore reads and writes rows of the rubrics table. The table
// itself (schema, constraints) is owned by the hosted database, not by
// this service.
type RubricStore struct {
	pool *pgxpool.Pool
}

// NewRubricStore wraps a pool.
func NewRubricStore(pool *pgxpool.Pool) *RubricStore {
	return &RubricStore{pool: pool}
}

// SaveExtraction writes the extracted text onto the rubric row and
// marks it completed. This is the pipeline's single write per
// invocation; running the pipeline again for the same id simply
// overwrites, last write wins.
func (s *RubricStore) SaveExtraction(ctx context.Context, rubricID, text string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE rubrics SET extracted_text = $1, status = $2 WHERE id = $3`,
		text, models.StatusCompleted, rubricID)
	if err != nil {
		return fmt.Errorf("failed to update rubric %s: %w", rubricID, err)
	}
	if tag.RowsAffected() == 0 {
		// The caller normally creates the row before invoking the
		// pipeline, so this points at a stale or mistyped id.
		slog.Warn("Extraction update matched no rubric row.", "rubricId", rubricID)
	}
	return nil
}

// Create inserts a new rubric row, used by the upload listener when a
// file lands in the bucket without the web app having created the row.
func (s *RubricStore) Create(ctx context.Context, r *models.Rubric) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO rubrics (id, teacher_id, title, file_name, file_url, status)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.TeacherID, r.Title, r.FileName, r.FileURL, r.Status)
	if err != nil {
		return fmt.Errorf("failed to insert rubric %s: %w", r.ID, err)
	}
	return nil
}

// ListProcessing returns rubrics still in the processing state, oldest
// first, for the backfill tool.
func (s *RubricStore) ListProcessing(ctx context.Context, limit int) ([]models.Rubric, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, teacher_id, title, file_name, file_url, status, created_at
		 FROM rubrics WHERE status = $1 ORDER BY created_at ASC LIMIT $2`,
		models.StatusProcessing, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list processing rubrics: %w", err)
	}
	defer rows.Close()

	var rubrics []models.Rubric
	for rows.Next() {
		var r models.Rubric
		if err := rows.Scan(&r.ID, &r.TeacherID, &r.Title, &r.FileName, &r.FileURL, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rubric row: %w", err)
		}
		rubrics = append(rubrics, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rubric rows: %w", err)
	}
	return rubrics, nil
}
