package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"

	"cloud.google.com/go/storage"

	"github.com/sidreyli/edugrade/internal/extract"
	"github.com/sidreyli/edugrade/internal/gcp"
	"github.com/sidreyli/edugrade/internal/models"
	"github.com/sidreyli/edugrade/internal/store"
)

// SimulatedOCRText is persisted for image rubrics when no OCR service
// account is configured. An explicit degraded-mode path, not an error:
// the record still completes and the teacher sees the placeholder.
const SimulatedOCRText = "[SIMULATED OCR]\n\nNo OCR service account is configured. Upload a PDF rubric, or configure OCR_SERVICE_ACCOUNT to extract text from image files."

const extractionSuccessMessage = "Rubric extraction completed successfully"

// TokenSource mints a bearer token for the OCR API.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TextDetector runs OCR over image bytes with a bearer token.
type TextDetector interface {
	DetectText(ctx context.Context, image []byte, accessToken string) (string, error)
}

// RubricWriter persists the extraction outcome onto the rubric row.
type RubricWriter interface {
	SaveExtraction(ctx context.Context, rubricID, text string) error
}

// ExtractorConfig holds the settings for the extraction pipeline.
type ExtractorConfig struct {
	DatabaseDSN        string
	ServiceAccountJSON string // empty -> simulated OCR for images
	VisionEndpoint     string // empty -> production endpoint
	ArchiveBucket      string // empty -> no transcript archiving
}

// ExtractorDeps are the pipeline's collaborators, split out so tests
// can substitute fakes.
type ExtractorDeps struct {
	Fetcher FileFetcher
	Tokens  TokenSource // nil -> simulated OCR for images
	Vision  TextDetector
	Rubrics RubricWriter

	// Optional transcript archive.
	StorageClient *storage.Client
	ArchiveBucket string
}

// ExtractorFunction is the rubric ingestion pipeline: fetch, classify,
// extract, persist. One linear pass per invocation, one persistence
// write, no retries.
type ExtractorFunction struct {
	deps ExtractorDeps
}

// NewExtractor wires the pipeline from explicit dependencies.
func NewExtractor(deps ExtractorDeps) *ExtractorFunction {
	return &ExtractorFunction{deps: deps}
}

// loadExtractorConfig reads the pipeline settings from the environment.
func loadExtractorConfig() (*ExtractorConfig, error) {
	dsn := gcp.GetEnv("DATABASE_URL", "")
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable must be set")
	}
	return &ExtractorConfig{
		DatabaseDSN:        dsn,
		ServiceAccountJSON: gcp.GetEnv("OCR_SERVICE_ACCOUNT", ""),
		VisionEndpoint:     gcp.GetEnv("VISION_API_ENDPOINT", ""),
		ArchiveBucket:      gcp.GetEnv("EXTRACTED_TEXT_BUCKET", ""),
	}, nil
}

// NewExtractorFromEnv builds the production pipeline: Postgres store,
// HTTP+GCS fetcher, and a real Vision client when a service account is
// configured.
func NewExtractorFromEnv(ctx context.Context) (*ExtractorFunction, error) {
	config, err := loadExtractorConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	pool, err := store.Open(ctx, store.Config{DSN: config.DatabaseDSN})
	if err != nil {
		return nil, err
	}

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	deps := ExtractorDeps{
		Fetcher:       NewFetcher(nil, storageClient),
		Rubrics:       store.NewRubricStore(pool),
		StorageClient: storageClient,
		ArchiveBucket: config.ArchiveBucket,
	}

	if config.ServiceAccountJSON != "" {
		sa, err := gcp.ParseServiceAccount([]byte(config.ServiceAccountJSON))
		if err != nil {
			return nil, err
		}
		tokens, err := gcp.NewTokenProvider(sa)
		if err != nil {
			return nil, err
		}
		deps.Tokens = tokens
		deps.Vision = gcp.NewVisionClient(gcp.WithVisionEndpoint(config.VisionEndpoint))
		slog.Info("OCR service account configured, image rubrics use Cloud Vision.")
	} else {
		slog.Info("No OCR service account configured, image rubrics degrade to simulated OCR.")
	}

	return NewExtractor(deps), nil
}

// Process runs the full pipeline for one request. All pipeline errors
// surface here exactly once, tagged with their kind for the logs; the
// caller converts any error into the uniform failure envelope.
func (f *ExtractorFunction) Process(ctx context.Context, req *models.ExtractRubricRequest) (*models.ExtractRubricResponse, error) {
	logCtx := slog.With("rubricId", req.RubricID)

	if req.FileURL == "" || req.RubricID == "" {
		return nil, f.fail(logCtx, kindError(kindValidation, "fileUrl and rubricId are required"))
	}

	data, err := f.deps.Fetcher.Fetch(ctx, req.FileURL)
	if err != nil {
		return nil, f.fail(logCtx, kindError(kindFetch, "failed to fetch rubric file: %w", err))
	}

	text, err := f.ProcessBytes(ctx, req.RubricID, fileNameFromURL(req.FileURL), data)
	if err != nil {
		return nil, err
	}

	return &models.ExtractRubricResponse{
		Success:       true,
		ExtractedText: text,
		Message:       extractionSuccessMessage,
	}, nil
}

// ProcessBytes runs classification, extraction, and persistence over
// bytes already in hand. The upload listener uses this directly since
// it downloads (and for PDFs, optimizes) the file itself.
func (f *ExtractorFunction) ProcessBytes(ctx context.Context, rubricID, fileName string, data []byte) (string, error) {
	logCtx := slog.With("rubricId", rubricID)

	text, err := f.extractText(ctx, logCtx, fileName, data)
	if err != nil {
		return "", f.fail(logCtx, err)
	}

	if err := f.deps.Rubrics.SaveExtraction(ctx, rubricID, text); err != nil {
		return "", f.fail(logCtx, kindError(kindPersistence, "failed to save extracted text: %w", err))
	}

	f.archive(ctx, logCtx, rubricID, text)

	logCtx.Info("Rubric extraction completed.", "textLength", len(text))
	return text, nil
}

// extractText classifies the file and dispatches to the matching
// extractor. PDF parse failures and no-text conditions are absorbed
// into placeholder strings upstream; only auth and Vision failures
// propagate as errors.
func (f *ExtractorFunction) extractText(ctx context.Context, logCtx *slog.Logger, fileName string, data []byte) (string, error) {
	fileType, ext := extract.Classify(fileName)
	logCtx.Info("Classified rubric file.", "fileName", fileName, "fileType", fileType.String())

	switch fileType {
	case extract.FileTypePDF:
		return extract.PDFText(data), nil

	case extract.FileTypeImage:
		if f.deps.Tokens == nil || f.deps.Vision == nil {
			logCtx.Info("Returning simulated OCR placeholder, no credential configured.")
			return SimulatedOCRText, nil
		}
		token, err := f.deps.Tokens.Token(ctx)
		if err != nil {
			return "", kindError(kindAuthExchange, "failed to obtain OCR access token: %w", err)
		}
		text, err := f.deps.Vision.DetectText(ctx, data, token)
		if err != nil {
			return "", kindError(kindVisionAPI, "OCR failed: %w", err)
		}
		return text, nil

	default:
		return fmt.Sprintf("[Unsupported file type: %s]", ext), nil
	}
}

// archive best-effort copies the transcript to the archive bucket.
// Failures are logged, never surfaced: the row is the source of truth.
func (f *ExtractorFunction) archive(ctx context.Context, logCtx *slog.Logger, rubricID, text string) {
	if f.deps.ArchiveBucket == "" || f.deps.StorageClient == nil {
		return
	}
	bucket := f.deps.StorageClient.Bucket(f.deps.ArchiveBucket)
	objectName := fmt.Sprintf("extracted/%s.txt", rubricID)
	if err := gcp.SaveTextAtomically(ctx, bucket, objectName, text); err != nil {
		logCtx.Warn("Failed to archive transcript.", "error", err, "object", objectName)
	}
}

func (f *ExtractorFunction) fail(logCtx *slog.Logger, err error) error {
	logCtx.Error("Rubric extraction failed.", "kind", kindOf(err), "error", err)
	return err
}

// fileNameFromURL pulls the file name out of the URL path so the
// classifier can read its extension. Query parameters (signed URL
// tokens and the like) are stripped by the parse.
func fileNameFromURL(fileURL string) string {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return path.Base(fileURL)
	}
	return path.Base(parsed.Path)
}
