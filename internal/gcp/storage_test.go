package gcp_test

import (
	"testing"

	"github.com/sidreyli/edugrade/internal/gcp"
)

func TestParseGSURL(t *testing.T) {
	bucket, object, err := gcp.ParseGSURL("gs://rubric-uploads/rubrics/t1/essay.pdf")
	if err != nil {
		t.Fatalf("ParseGSURL returned error: %v", err)
	}
	if bucket != "rubric-uploads" {
		t.Fatalf("unexpected bucket: %q", bucket)
	}
	if object != "rubrics/t1/essay.pdf" {
		t.Fatalf("unexpected object: %q", object)
	}

	for _, bad := range []string{"https://example.com/x.pdf", "gs://", "gs://bucket", "gs://bucket/"} {
		if _, _, err := gcp.ParseGSURL(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("EDUGRADE_TEST_KEY", "set")
	if got := gcp.GetEnv("EDUGRADE_TEST_KEY", "fallback"); got != "set" {
		t.Fatalf("GetEnv = %q, want %q", got, "set")
	}
	if got := gcp.GetEnv("EDUGRADE_TEST_KEY_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("GetEnv = %q, want %q", got, "fallback")
	}
}
