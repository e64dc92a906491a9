package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
)

// Sink stores exported files under slash-separated object names.
type Sink interface {
	Put(ctx context.Context, objectName string, data []byte) error
	// Location renders where objectName ends up, for logs and CLI output.
	Location(objectName string) string
}

// DirSink writes objects below a local directory.
type DirSink struct {
	root string
}

func NewDirSink(root string) *DirSink {
	return &DirSink{root: root}
}

func (s *DirSink) Put(_ context.Context, objectName string, data []byte) error {
	path := s.Location(objectName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (s *DirSink) Location(objectName string) string {
	return filepath.Join(s.root, filepath.FromSlash(objectName))
}

// GCSSink uploads objects to a Cloud Storage bucket.
type GCSSink struct {
	client        *storage.Client
	bucket        string
	uploadTimeout time.Duration
}

// NewGCSSink creates a storage client with application default credentials.
func NewGCSSink(ctx context.Context, bucket string) (*GCSSink, error) {
	if bucket == "" {
		return nil, fmt.Errorf("GCS bucket name is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	return NewGCSSinkFromClient(client, bucket), nil
}

func NewGCSSinkFromClient(client *storage.Client, bucket string) *GCSSink {
	return &GCSSink{
		client:        client,
		bucket:        bucket,
		uploadTimeout: 50 * time.Second,
	}
}

func (s *GCSSink) Put(ctx context.Context, objectName string, data []byte) error {
	uploadCtx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	obj := s.client.Bucket(s.bucket).Object(objectName)
	wc := obj.NewWriter(uploadCtx)
	wc.ContentType = contentType(objectName)
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (s *GCSSink) Location(objectName string) string {
	return fmt.Sprintf("gs://%s/%s", s.bucket, objectName)
}

func (s *GCSSink) Close() error {
	return s.client.Close()
}

func contentType(objectName string) string {
	switch filepath.Ext(objectName) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	}
	return "application/octet-stream"
}
