package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/sidreyli/edugrade/internal/extract"
	"github.com/sidreyli/edugrade/internal/gcp"
	"github.com/sidreyli/edugrade/internal/models"
	"github.com/sidreyli/edugrade/internal/store"
)

// rubricPrefix is the object prefix the listener reacts to. Everything
// else in the bucket (slide exports, transcript archive) is ignored.
const rubricPrefix = "rubrics/"

// ListenerConfig holds configuration for the upload listener.
type ListenerConfig struct {
	ProjectID        string
	LedgerCollection string
	DatabaseDSN      string
	DefaultTeacherID string
}

// GCSEvent is the storage notification payload.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

type rubricCreator interface {
	Create(ctx context.Context, r *models.Rubric) error
}

type uploadLedger interface {
	Seen(ctx context.Context, fileHash string) (bool, string, error)
	Record(ctx context.Context, fileHash, rubricID, objectName string) error
}

// ListenerFunction reacts to rubric files landing in the upload
// bucket: it creates the rubric row and runs the extraction pipeline
// without waiting for the web app to ask.
type ListenerFunction struct {
	storageClient *storage.Client
	ledger        uploadLedger
	rubrics       rubricCreator
	extractor     *ExtractorFunction
	config        ListenerConfig
}

func loadListenerConfig() (*ListenerConfig, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	dsn := gcp.GetEnv("DATABASE_URL", "")
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable must be set")
	}

	return &ListenerConfig{
		ProjectID:        projectID,
		LedgerCollection: gcp.GetEnv("UPLOAD_LEDGER_COLLECTION", "processed_uploads"),
		DatabaseDSN:      dsn,
		DefaultTeacherID: gcp.GetEnv("DEFAULT_TEACHER_ID", ""),
	}, nil
}

// NewListener creates a new ListenerFunction instance.
func NewListener(ctx context.Context) (*ListenerFunction, error) {
	config, err := loadListenerConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
	if err != nil {
		return nil, err
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	pool, err := store.Open(ctx, store.Config{DSN: config.DatabaseDSN})
	if err != nil {
		return nil, err
	}
	rubrics := store.NewRubricStore(pool)

	extractor, err := NewExtractorFromEnv(ctx)
	if err != nil {
		return nil, err
	}

	f := &ListenerFunction{
		storageClient: storageClient,
		ledger:        gcp.NewUploadLedger(firestoreClient, config.LedgerCollection),
		rubrics:       rubrics,
		extractor:     extractor,
		config:        *config,
	}
	slog.Info("Upload listener initialized.", "ledgerCollection", config.LedgerCollection)
	return f, nil
}

// Process handles one storage event end to end.
func (f *ListenerFunction) Process(ctx context.Context, e GCSEvent) error {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)

	if !strings.HasPrefix(e.Name, rubricPrefix) {
		logCtx.Debug("Object outside rubric prefix, ignoring.")
		return nil
	}

	fileName := path.Base(e.Name)
	fileType, ext := extract.Classify(fileName)
	if fileType == extract.FileTypeUnsupported {
		logCtx.Info("Unsupported rubric upload, ignoring.", "extension", ext)
		return nil
	}
	logCtx.Info("Processing new rubric upload.", "fileType", fileType.String())

	data, err := gcp.DownloadObject(ctx, f.storageClient, e.Bucket, e.Name)
	if err != nil {
		logCtx.Error("Failed to download rubric upload.", "error", err)
		return err
	}

	sum := sha256.Sum256(data)
	fileHash := hex.EncodeToString(sum[:])
	logCtx = logCtx.With("fileHash", fileHash)

	seen, existingID, err := f.ledger.Seen(ctx, fileHash)
	if err != nil {
		logCtx.Error("Failed to check upload ledger.", "error", err)
		return err
	}
	if seen {
		logCtx.Info("Duplicate upload detected, skipping.", "existingRubricId", existingID)
		return nil
	}

	if fileType == extract.FileTypePDF {
		data = f.optimizePDF(logCtx, data)
	}

	rubric := &models.Rubric{
		ID:        uuid.NewString(),
		TeacherID: teacherIDFromObject(e.Name, f.config.DefaultTeacherID),
		Title:     strings.TrimSuffix(fileName, filepath.Ext(fileName)),
		FileName:  fileName,
		FileURL:   fmt.Sprintf("gs://%s/%s", e.Bucket, e.Name),
		Status:    models.StatusProcessing,
	}
	if err := f.rubrics.Create(ctx, rubric); err != nil {
		logCtx.Error("Failed to create rubric row.", "error", err)
		return err
	}
	logCtx = logCtx.With("rubricId", rubric.ID)
	logCtx.Info("Created rubric row.")

	if _, err := f.extractor.ProcessBytes(ctx, rubric.ID, fileName, data); err != nil {
		// Already logged with its kind inside the pipeline. Returning
		// the error marks the event delivery as failed so it redelivers;
		// the ledger entry is only written on success, and the row
		// update is a plain overwrite, so a redelivery is safe.
		return err
	}

	if err := f.ledger.Record(ctx, fileHash, rubric.ID, e.Name); err != nil {
		logCtx.Error("Failed to record upload in ledger.", "error", err)
		return err
	}

	logCtx.Info("Rubric upload processed.")
	return nil
}

// optimizePDF runs the upload through pdfcpu with relaxed validation.
// Optimization failures fall back to the original bytes: the extractor
// has its own degrade path for PDFs it cannot parse.
func (f *ListenerFunction) optimizePDF(logCtx *slog.Logger, data []byte) []byte {
	tempDir, err := os.MkdirTemp("", "rubric-upload-*")
	if err != nil {
		logCtx.Warn("Failed to create temp dir, skipping PDF optimization.", "error", err)
		return data
	}
	defer os.RemoveAll(tempDir)

	source := filepath.Join(tempDir, "source.pdf")
	optimized := filepath.Join(tempDir, "optimized.pdf")
	if err := os.WriteFile(source, data, 0o600); err != nil {
		logCtx.Warn("Failed to stage PDF, skipping optimization.", "error", err)
		return data
	}

	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	if err := api.OptimizeFile(source, optimized, cfg); err != nil {
		logCtx.Warn("PDF optimization failed, using original bytes.", "error", err)
		return data
	}

	optimizedData, err := os.ReadFile(optimized)
	if err != nil {
		logCtx.Warn("Failed to read optimized PDF, using original bytes.", "error", err)
		return data
	}
	return optimizedData
}

// teacherIDFromObject reads the teacher id out of the object path
// (rubrics/<teacherId>/<file>), falling back to the configured default
// for flat uploads.
func teacherIDFromObject(objectName, fallback string) string {
	parts := strings.Split(objectName, "/")
	if len(parts) >= 3 && parts[1] != "" {
		return parts[1]
	}
	return fallback
}
