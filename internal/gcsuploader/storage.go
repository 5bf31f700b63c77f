// Package gcsuploader moves spreadsheets in and out of Google Cloud Storage.
package gcsuploader

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

const uploadTimeout = 2 * time.Minute

// Storage reads and writes spreadsheet objects.
// It assumes Application Default Credentials are configured (gcloud auth application-default login).
type Storage struct {
	client *storage.Client
}

// New creates a Storage backed by a new GCS client.
func New(ctx context.Context) (*Storage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("New: create storage client: %w", err)
	}
	return &Storage{client: client}, nil
}

// Close releases the underlying client.
func (s *Storage) Close() error {
	return s.client.Close()
}

// UploadFile uploads a local file to bucket and returns its gs:// URI. The
// object name is generated by ObjectName.
func (s *Storage) UploadFile(ctx context.Context, bucket, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("UploadFile: open file %q: %w", filePath, err)
	}
	defer f.Close()

	objectName := ObjectName(filepath.Base(filePath), time.Now())
	if err := s.Upload(ctx, bucket, objectName, f); err != nil {
		return "", fmt.Errorf("UploadFile: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", bucket, objectName), nil
}

// Upload copies r into bucket/objectName.
func (s *Storage) Upload(ctx context.Context, bucket, objectName string, r io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := s.client.Bucket(bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = ContentType(objectName)

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("Upload: copy to GCS writer: %w", err)
	}

	// Close to finalize the upload
	if err := w.Close(); err != nil {
		return fmt.Errorf("Upload: finalize upload: %w", err)
	}
	return nil
}

// Fetch downloads the object named by a gs:// URI.
func (s *Storage) Fetch(ctx context.Context, gcsURI string) ([]byte, error) {
	bucket, object, err := ParseURI(gcsURI)
	if err != nil {
		return nil, fmt.Errorf("Fetch: %w", err)
	}

	rc, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading bytes: %w", err)
	}
	return data, nil
}

// ParseURI splits gs://bucket/path/to/object into bucket and object path.
func ParseURI(gcsURI string) (bucket, object string, err error) {
	if !strings.HasPrefix(gcsURI, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", gcsURI)
	}

	parts := strings.SplitN(strings.TrimPrefix(gcsURI, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", gcsURI)
	}
	return parts[0], parts[1], nil
}

// ExtractFilename extracts the filename from a GCS URI.
// e.g., "gs://bucket/folder/file.csv" → "file.csv"
func ExtractFilename(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")

	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}

// ObjectName builds a unique, date-partitioned object name for an upload.
func ObjectName(filename string, now time.Time) string {
	return fmt.Sprintf("sheets/%s/%s-%s", now.Format("2006/01/02"), uuid.New().String(), path.Base(filepath.ToSlash(filename)))
}

// ContentType guesses a MIME type for a spreadsheet name.
func ContentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".xls":
		return "application/vnd.ms-excel"
	}
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
