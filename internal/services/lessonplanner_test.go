package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sidreyli/edugrade/internal/models"
)

type fakeArtifacts struct {
	plans      []*models.LessonPlan
	decks      []*models.SlideDeck
	rubricText string
	rubricErr  error
	insertErr  error
}

func (a *fakeArtifacts) InsertLessonPlan(ctx context.Context, lp *models.LessonPlan) error {
	if a.insertErr != nil {
		return a.insertErr
	}
	a.plans = append(a.plans, lp)
	return nil
}

func (a *fakeArtifacts) InsertSlideDeck(ctx context.Context, deck *models.SlideDeck) error {
	if a.insertErr != nil {
		return a.insertErr
	}
	a.decks = append(a.decks, deck)
	return nil
}

func (a *fakeArtifacts) GetRubricText(ctx context.Context, rubricID string) (string, error) {
	return a.rubricText, a.rubricErr
}

func TestLessonPlannerValidation(t *testing.T) {
	fn := &LessonPlannerFunction{model: &fakeModel{}, artifacts: &fakeArtifacts{}}

	_, err := fn.Process(context.Background(), &models.LessonPlanRequest{TeacherID: "t1"})
	if err == nil {
		t.Fatal("expected validation error for missing subject/topic")
	}
}

func TestLessonPlannerHappyPath(t *testing.T) {
	model := &fakeModel{outputs: []string{"# Lesson Plan\n\nObjectives..."}}
	artifacts := &fakeArtifacts{}
	fn := &LessonPlannerFunction{model: model, artifacts: artifacts}

	res, err := fn.Process(context.Background(), &models.LessonPlanRequest{
		TeacherID:       "t1",
		Subject:         "Biology",
		Topic:           "Photosynthesis",
		GradeLevel:      "7",
		DurationMinutes: 50,
	})
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if !res.Success || res.LessonPlanID == "" {
		t.Fatalf("unexpected response: %+v", res)
	}
	if res.Content != "# Lesson Plan\n\nObjectives..." {
		t.Fatalf("unexpected content: %q", res.Content)
	}

	if len(artifacts.plans) != 1 {
		t.Fatalf("expected 1 persisted plan, got %d", len(artifacts.plans))
	}
	plan := artifacts.plans[0]
	if plan.ID != res.LessonPlanID || plan.Topic != "Photosynthesis" || plan.DurationMinutes != 50 {
		t.Fatalf("persisted plan mismatch: %+v", plan)
	}
	if plan.RubricID != nil {
		t.Fatal("rubric id should be nil when none was given")
	}

	if !strings.Contains(model.prompts[0], "Topic: Photosynthesis") {
		t.Fatalf("prompt missing topic: %q", model.prompts[0])
	}
}

func TestLessonPlannerIncludesRubricText(t *testing.T) {
	model := &fakeModel{outputs: []string{"plan"}}
	artifacts := &fakeArtifacts{rubricText: "Criterion 1: thesis clarity"}
	fn := &LessonPlannerFunction{model: model, artifacts: artifacts}

	_, err := fn.Process(context.Background(), &models.LessonPlanRequest{
		TeacherID: "t1", Subject: "English", Topic: "Essays", RubricID: "r1",
	})
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if !strings.Contains(model.prompts[0], "Criterion 1: thesis clarity") {
		t.Fatalf("prompt missing rubric text: %q", model.prompts[0])
	}
	if artifacts.plans[0].RubricID == nil || *artifacts.plans[0].RubricID != "r1" {
		t.Fatal("persisted plan should reference the rubric")
	}
}

func TestLessonPlannerDraftsWithoutUnreadableRubric(t *testing.T) {
	model := &fakeModel{outputs: []string{"plan"}}
	artifacts := &fakeArtifacts{rubricErr: errors.New("no rows")}
	fn := &LessonPlannerFunction{model: model, artifacts: artifacts}

	// A missing rubric downgrades to drafting without it, not a failure.
	res, err := fn.Process(context.Background(), &models.LessonPlanRequest{
		TeacherID: "t1", Subject: "English", Topic: "Essays", RubricID: "gone",
	})
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if !res.Success {
		t.Fatal("expected success despite unreadable rubric")
	}
}

func TestLessonPlannerPersistenceFailure(t *testing.T) {
	fn := &LessonPlannerFunction{
		model:     &fakeModel{outputs: []string{"plan"}},
		artifacts: &fakeArtifacts{insertErr: errors.New("connection reset")},
	}

	_, err := fn.Process(context.Background(), &models.LessonPlanRequest{
		TeacherID: "t1", Subject: "English", Topic: "Essays",
	})
	if err == nil {
		t.Fatal("expected persistence error")
	}
}
