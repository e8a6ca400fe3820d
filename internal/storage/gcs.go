package storage

import (
	"context"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// GCSSink writes files as objects in a Google Cloud Storage bucket. Each
// object gets a fresh download token so the file is fetchable through the
// Firebase-style public URL scheme.
type GCSSink struct {
	client *gcs.Client
	bucket string
}

func NewGCSSink(client *gcs.Client, bucket string) *GCSSink {
	return &GCSSink{client: client, bucket: bucket}
}

// EnsureDirectory is a no-op: buckets have no directories, the object path
// carries the full prefix.
func (s *GCSSink) EnsureDirectory(_ context.Context, _ string) error {
	return nil
}

func (s *GCSSink) WriteFile(ctx context.Context, path string, data []byte, contentType string) error {
	w := s.client.Bucket(s.bucket).Object(path).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{
		"firebaseStorageDownloadTokens": uuid.NewString(),
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
