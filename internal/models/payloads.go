package models

// These structs define the JSON payloads exchanged between the teacher
// web app and the worker functions.

// ExtractRubricRequest is the input for the rubric-extractor function.
type ExtractRubricRequest struct {
	FileURL  string `json:"fileUrl"`
	RubricID string `json:"rubricId"`
}

// ExtractRubricResponse is the success output of the rubric-extractor
// function. Failures use ErrorResponse instead.
type ExtractRubricResponse struct {
	Success       bool   `json:"success"`
	ExtractedText string `json:"extractedText"`
	Message       string `json:"message"`
}

// LessonPlanRequest is the input for the lesson-planner function.
type LessonPlanRequest struct {
	TeacherID       string `json:"teacherId"`
	Subject         string `json:"subject"`
	Topic           string `json:"topic"`
	GradeLevel      string `json:"gradeLevel"`
	DurationMinutes int    `json:"durationMinutes"`
	RubricID        string `json:"rubricId,omitempty"`
}

// LessonPlanResponse is the success output of the lesson-planner function.
type LessonPlanResponse struct {
	Success      bool   `json:"success"`
	LessonPlanID string `json:"lessonPlanId"`
	Content      string `json:"content"`
}

// SlideDeckRequest is the input for the slide-generator function.
type SlideDeckRequest struct {
	TeacherID    string `json:"teacherId"`
	Topic        string `json:"topic"`
	SlideCount   int    `json:"slideCount"`
	LessonPlanID string `json:"lessonPlanId,omitempty"`
}

// SlideDeckResponse is the success output of the slide-generator function.
type SlideDeckResponse struct {
	Success bool    `json:"success"`
	DeckID  string  `json:"deckId"`
	Slides  []Slide `json:"slides"`
}

// ErrorResponse is the uniform failure envelope: every error kind maps
// to this shape with HTTP 500, and the UI shows the error string verbatim.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
