package models

import "time"

// Rubric processing statuses. The row is created as StatusProcessing by
// whoever accepted the upload; the extraction pipeline moves it to
// StatusCompleted exactly once per invocation. StatusFailed is written
// by the UI layer, never by the pipeline itself.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Rubric represents one row of the rubrics table: a teacher-authored
// grading criteria document and, once extracted, its plain text.
type Rubric struct {
	ID            string    `json:"id"`
	TeacherID     string    `json:"teacherId"`
	Title         string    `json:"title"`
	FileName      string    `json:"fileName"`
	FileURL       string    `json:"fileUrl"`
	ExtractedText *string   `json:"extractedText,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

// LessonPlan is one row of the lesson_plans table.
type LessonPlan struct {
	ID              string    `json:"id"`
	TeacherID       string    `json:"teacherId"`
	RubricID        *string   `json:"rubricId,omitempty"`
	Subject         string    `json:"subject"`
	Topic           string    `json:"topic"`
	GradeLevel      string    `json:"gradeLevel"`
	DurationMinutes int       `json:"durationMinutes"`
	Content         string    `json:"content"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Slide is a single slide of a generated deck, as returned by the model.
type Slide struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
	Notes   string   `json:"notes,omitempty"`
}

// SlideDeck is one row of the slide_decks table. Slides are stored as a
// JSON array in a single column.
type SlideDeck struct {
	ID           string    `json:"id"`
	TeacherID    string    `json:"teacherId"`
	LessonPlanID *string   `json:"lessonPlanId,omitempty"`
	Topic        string    `json:"topic"`
	Slides       []Slide   `json:"slides"`
	CreatedAt    time.Time `json:"createdAt"`
}
