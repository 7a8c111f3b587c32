package gcp

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// NewFirestoreClient creates and returns a new Firestore client for the
// given project ID. It centralizes client creation for all services.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// UploadLedger records which uploaded rubric files have already been
// processed, keyed by content hash, so storage events that redeliver or
// re-upload the same file do not trigger a second extraction.
type UploadLedger struct {
	client     *firestore.Client
	collection string
}

// NewUploadLedger wraps a Firestore collection as a dedup ledger.
func NewUploadLedger(client *firestore.Client, collection string) *UploadLedger {
	return &UploadLedger{client: client, collection: collection}
}

type ledgerEntry struct {
	FileHash    string    `firestore:"fileHash"`
	RubricID    string    `firestore:"rubricId"`
	ObjectName  string    `firestore:"objectName"`
	ProcessedAt time.Time `firestore:"processedAt"`
}

// Seen reports whether a file with this content hash was already
// processed, and if so which rubric row it produced.
func (l *UploadLedger) Seen(ctx context.Context, fileHash string) (bool, string, error) {
	docs := l.client.Collection(l.collection).Where("fileHash", "==", fileHash).Limit(1).Documents(ctx)
	doc, err := docs.Next()
	if err == iterator.Done {
		return false, "", nil
	}
	if err != nil {
		return false, "", fmt.Errorf("failed to query upload ledger: %w", err)
	}

	var entry ledgerEntry
	if err := doc.DataTo(&entry); err != nil {
		return false, "", fmt.Errorf("failed to decode ledger entry: %w", err)
	}
	return true, entry.RubricID, nil
}

// Record marks a file hash as processed.
func (l *UploadLedger) Record(ctx context.Context, fileHash, rubricID, objectName string) error {
	_, _, err := l.client.Collection(l.collection).Add(ctx, ledgerEntry{
		FileHash:    fileHash,
		RubricID:    rubricID,
		ObjectName:  objectName,
		ProcessedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to record upload in ledger: %w", err)
	}
	return nil
}
