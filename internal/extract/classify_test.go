package extract_test

import (
	"testing"

	"github.com/sidreyli/edugrade/internal/extract"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		fileName string
		want     extract.FileType
		wantExt  string
	}{
		{"pdf", "rubric.pdf", extract.FileTypePDF, "pdf"},
		{"pdf uppercase", "RUBRIC.PDF", extract.FileTypePDF, "pdf"},
		{"jpg", "scan.jpg", extract.FileTypeImage, "jpg"},
		{"jpeg", "scan.jpeg", extract.FileTypeImage, "jpeg"},
		{"png", "scan.png", extract.FileTypeImage, "png"},
		{"gif", "scan.gif", extract.FileTypeImage, "gif"},
		{"bmp", "scan.bmp", extract.FileTypeImage, "bmp"},
		{"webp", "scan.webp", extract.FileTypeImage, "webp"},
		{"mixed case image", "Scan.JpEg", extract.FileTypeImage, "jpeg"},
		{"docx", "rubric.docx", extract.FileTypeUnsupported, "docx"},
		{"no extension", "rubric", extract.FileTypeUnsupported, ""},
		{"trailing dot", "rubric.", extract.FileTypeUnsupported, ""},
		{"dotted name", "my.rubric.v2.pdf", extract.FileTypePDF, "pdf"},
		{"empty", "", extract.FileTypeUnsupported, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ext := extract.Classify(tc.fileName)
			if got != tc.want {
				t.Fatalf("Classify(%q) type = %v, want %v", tc.fileName, got, tc.want)
			}
			if ext != tc.wantExt {
				t.Fatalf("Classify(%q) ext = %q, want %q", tc.fileName, ext, tc.wantExt)
			}
		})
	}
}
