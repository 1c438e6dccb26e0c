package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
)

const uploadTimeout = 2 * time.Minute

// Archiver stores a finished export and returns its URI.
type Archiver interface {
	Archive(ctx context.Context, householdID uint, data []byte) (string, error)
}

// ObjectName is the bucket path of an export taken at t.
func ObjectName(householdID uint, t time.Time) string {
	return fmt.Sprintf("exports/%d/%s.csv", householdID, t.UTC().Format("20060102T150405Z"))
}

// GCSArchiver writes exports to a Cloud Storage bucket using Application
// Default Credentials.
type GCSArchiver struct {
	client *storage.Client
	bucket string
	now    func() time.Time
}

// NewGCSArchiver opens a storage client for bucket.
func NewGCSArchiver(ctx context.Context, bucket string) (*GCSArchiver, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSArchiver{client: client, bucket: bucket, now: time.Now}, nil
}

// Archive uploads data and returns its gs:// URI.
func (a *GCSArchiver) Archive(ctx context.Context, householdID uint, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	name := ObjectName(householdID, a.now())
	w := a.client.Bucket(a.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "text/csv; charset=utf-8"

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("copy export to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", a.bucket, name), nil
}

// Close releases the storage client.
func (a *GCSArchiver) Close() error {
	return a.client.Close()
}
