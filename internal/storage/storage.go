package storage

import (
	"context"
	"fmt"
	"time"
)

// Content types accepted for stored objects
const (
	ContentTypeCSV  = "text/csv"
	ContentTypeJSON = "application/json"
)

// Lifetimes of pre-signed URLs
const (
	UploadURLExpiry   = 15 * time.Minute
	DownloadURLExpiry = 24 * time.Hour
)

// ObjectStore handles ping tables and results kept in a bucket
type ObjectStore interface {
	GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error)
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
	DownloadFile(ctx context.Context, key string) ([]byte, error)
	UploadFile(ctx context.Context, key string, data []byte, contentType string) error
	DeleteFile(ctx context.Context, key string) error
}

// Config holds the settings shared by both backends
type Config struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// New returns the backend named by backend: "s3" or "minio".
func New(ctx context.Context, backend string, cfg Config) (ObjectStore, error) {
	switch backend {
	case "s3":
		return NewS3Store(ctx, cfg)
	case "minio":
		store, err := NewMinioStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// validateContentType validates that the content type is supported
func validateContentType(contentType string) error {
	switch contentType {
	case ContentTypeCSV, ContentTypeJSON:
		return nil
	}
	return fmt.Errorf("invalid content type: %s. Supported types: %s, %s", contentType, ContentTypeCSV, ContentTypeJSON)
}
