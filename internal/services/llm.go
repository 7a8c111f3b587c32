package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"
)

// One initial attempt plus two retries, constant delay between them.
const llmMaxRetries = 2

var llmRetryDelay = 2 * time.Second

// generativeModel is the slice of *genai.GenerativeModel the services
// use, extracted so tests can fake the model.
type generativeModel interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// generateText calls the model with a fixed two-retry loop and returns
// the concatenated text parts of the first candidate.
func generateText(ctx context.Context, logCtx *slog.Logger, model generativeModel, parts ...genai.Part) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= llmMaxRetries; attempt++ {
		if attempt > 0 {
			logCtx.Warn("Retrying model call.", "attempt", attempt, "error", lastErr)
			select {
			case <-time.After(llmRetryDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		resp, err := model.GenerateContent(ctx, parts...)
		if err != nil {
			lastErr = err
			continue
		}

		text := extractResponseText(resp)
		if text == "" {
			lastErr = fmt.Errorf("model returned an empty response")
			continue
		}
		return text, nil
	}
	return "", fmt.Errorf("model call failed after %d attempts: %w", llmMaxRetries+1, lastErr)
}

// extractResponseText parses the model's response and robustly extracts
// text content, stripping any markdown fences the model wraps around it.
func extractResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	content := strings.TrimSpace(sb.String())
	content = strings.TrimPrefix(content, "```markdown")
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
