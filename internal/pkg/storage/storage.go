package storage

import (
	"context"
	"io"
	"time"
)

// Storage abstracts object storage for documents and photos
type Storage interface {
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	GetURL(key string) string
}

// Config for S3-compatible storage
type Config struct {
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string
}

// FileInfo holds object metadata
type FileInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}
