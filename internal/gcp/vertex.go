package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
)

// --- Lesson Planner Model Prompts ---
const LessonPlannerSystemPrompt = "You are an experienced curriculum designer. Your task is to draft a complete, classroom-ready lesson plan in markdown format. Be concrete and practical: a teacher should be able to run the lesson from your plan without further preparation."
const LessonPlannerUserPrompt = `Draft a lesson plan with the following structure:

Learning Objectives: 2-4 measurable objectives appropriate for the stated grade level.
Materials: a short list of materials the teacher needs.
Lesson Outline: a timed sequence of activities (warm-up, instruction, guided practice, independent practice, closure) that fits the stated duration.
Assessment: how the teacher checks that the objectives were met. If grading criteria are provided, align the assessment with them.
Differentiation: one adjustment for struggling students and one extension for advanced students.

Return ONLY the lesson plan markdown. Do not include any preamble like "Here is your lesson plan".`

// --- Slide Writer Model Prompts ---
const SlideWriterSystemPrompt = "You are a presentation writer for classroom teaching. Your task is to turn a lesson topic into a slide deck. You must output your response as a valid JSON array."
const SlideWriterUserPrompt = `Write the requested number of slides for the given topic.

Follow these rules precisely:
1.  Create a JSON object for each slide.
2.  Each JSON object must have exactly three keys:
    - "title": a short slide title.
    - "bullets": an array of 2-5 concise bullet point strings.
    - "notes": one or two sentences of speaker notes for the teacher.
3.  The first slide introduces the topic; the last slide summarizes or sets up an exit activity.
4.  The final output MUST be a single, valid JSON array of these objects. Do not include any text before or after the JSON array.

Example output format:
[
  {
    "title": "What Is Photosynthesis?",
    "bullets": ["Plants make their own food", "Sunlight, water, and CO2 go in", "Sugar and oxygen come out"],
    "notes": "Ask the class what plants need to grow before revealing the bullets."
  }
]`

// VertexClient holds all pre-configured generative models for our app.
type VertexClient struct {
	LessonPlannerModel *genai.GenerativeModel
	SlideWriterModel   *genai.GenerativeModel
	baseClient         *genai.Client
}

// NewVertexClient creates a new client holding all necessary models.
func NewVertexClient(ctx context.Context, projectID, region string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	// --- Configure the lesson planner model ---
	lessonPlannerModel := baseClient.GenerativeModel("gemini-1.5-pro")
	lessonPlannerModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(LessonPlannerSystemPrompt)},
	}
	lessonPlannerModel.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0.7),
	}

	// --- Configure the slide writer model ---
	slideWriterModel := baseClient.GenerativeModel("gemini-1.5-pro")
	slideWriterModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SlideWriterSystemPrompt)},
	}
	slideWriterModel.GenerationConfig = genai.GenerationConfig{
		// Force JSON output so the deck can be decoded into slide structs.
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.3),
	}

	return &VertexClient{
		LessonPlannerModel: lessonPlannerModel,
		SlideWriterModel:   slideWriterModel,
		baseClient:         baseClient,
	}, nil
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}
