// Package storage keeps uploaded objects (review photos) in a local
// directory or an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
)

// Storage is the object store used by the services.
type Storage interface {
	// Put stores an object under key, replacing any previous one.
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Delete removes an object. Missing objects are not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the public address of key.
	URL(key string) string
}

const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// Config selects and configures a backend.
type Config struct {
	Driver string

	LocalPath    string
	LocalBaseURL string

	S3Endpoint  string // empty for AWS, set for MinIO or R2
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string // CDN in front of the bucket, optional
}

// New opens the backend named by cfg.Driver.
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Driver {
	case DriverLocal, "":
		return NewLocalStorage(cfg.LocalPath, cfg.LocalBaseURL)
	case DriverS3:
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}
