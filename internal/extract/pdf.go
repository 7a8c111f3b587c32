package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFText parses raw PDF bytes into the annotated plain text that is
// persisted on the rubric row. It never returns an error: malformed
// PDFs and PDFs without a text layer degrade to placeholder strings so
// the record can still be marked completed downstream.
func PDFText(data []byte) (text string) {
	defer func() {
		// The parser panics on some malformed cross-reference tables;
		// those degrade the same way as a parse error.
		if r := recover(); r != nil {
			text = pdfFailureText(fmt.Errorf("%v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return pdfFailureText(err)
	}

	pageCount := reader.NumPage()
	var sb strings.Builder
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Pages that fail individually are skipped, not fatal.
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	body := strings.TrimSpace(sb.String())
	if body == "" {
		return fmt.Sprintf("[PDF Processed - No Text Found]\n\nThis PDF has %d page(s) but no extractable text.", pageCount)
	}
	return fmt.Sprintf("[RUBRIC - %d page(s)]\n\n%s", pageCount, body)
}

func pdfFailureText(err error) string {
	return fmt.Sprintf("[PDF TEXT EXTRACTION FAILED]\n\nError: %v", err)
}
