package services

import (
	"context"
	"testing"
)

func TestTeacherIDFromObject(t *testing.T) {
	cases := []struct {
		name   string
		object string
		want   string
	}{
		{"nested path", "rubrics/teacher-42/essay.pdf", "teacher-42"},
		{"flat upload", "rubrics/essay.pdf", "default-teacher"},
		{"empty segment", "rubrics//essay.pdf", "default-teacher"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := teacherIDFromObject(tc.object, "default-teacher"); got != tc.want {
				t.Fatalf("teacherIDFromObject(%q) = %q, want %q", tc.object, got, tc.want)
			}
		})
	}
}

func TestListenerIgnoresIrrelevantObjects(t *testing.T) {
	// Events outside the rubric prefix or with unsupported extensions
	// return before any client is touched, so a zero-value function is
	// enough to exercise the skip paths.
	fn := &ListenerFunction{}

	for name, event := range map[string]GCSEvent{
		"outside prefix":    {Bucket: "b", Name: "exports/deck.json"},
		"archive object":    {Bucket: "b", Name: "extracted/r1.txt"},
		"unsupported ext":   {Bucket: "b", Name: "rubrics/t1/rubric.docx"},
		"directory marker":  {Bucket: "b", Name: "rubrics/t1/"},
		"no extension file": {Bucket: "b", Name: "rubrics/t1/rubric"},
	} {
		t.Run(name, func(t *testing.T) {
			if err := fn.Process(context.Background(), event); err != nil {
				t.Fatalf("expected nil for ignored object, got %v", err)
			}
		})
	}
}
