// Package media stores uploaded song audio and artwork in an S3-compatible
// bucket.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"musicapp/internal/metrics"
)

// Kind selects the object prefix.
type Kind string

const (
	KindAudio Kind = "audio"
	KindImage Kind = "images"
)

// ErrNotConfigured is returned by uploads when no endpoint is set.
var ErrNotConfigured = errors.New("media storage not configured")

// File is an upload waiting to be stored.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Config holds connection settings for the object store.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL overrides the base used to build object URLs, e.g. a CDN.
	PublicURL string
}

// MinioStorage uploads objects to a single bucket.
type MinioStorage struct {
	client *minio.Client
	bucket string
	base   string
	newKey func() string
}

// NewMinioStorage connects to the endpoint and makes sure the bucket exists.
func NewMinioStorage(ctx context.Context, cfg Config) (*MinioStorage, error) {
	if cfg.Endpoint == "" {
		return nil, ErrNotConfigured
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect minio: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &MinioStorage{
		client: client,
		bucket: cfg.Bucket,
		base:   publicBase(cfg),
		newKey: uuid.NewString,
	}, nil
}

func publicBase(cfg Config) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + cfg.Endpoint + "/" + cfg.Bucket
}

// ObjectName builds the key for an upload, keeping the original extension.
func ObjectName(kind Kind, key, filename string) string {
	return path.Join(string(kind), key+strings.ToLower(path.Ext(filename)))
}

// ObjectURL joins base and object name, escaping each path segment.
func ObjectURL(base, objectName string) string {
	segments := strings.Split(objectName, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return base + "/" + strings.Join(segments, "/")
}

// Upload stores file and returns its public URL.
func (s *MinioStorage) Upload(ctx context.Context, kind Kind, file File) (string, error) {
	if file.Body == nil {
		return "", errors.New("upload body is required")
	}
	name := ObjectName(kind, s.newKey(), file.Name)
	size := file.Size
	if size <= 0 {
		size = -1
	}
	_, err := s.client.PutObject(ctx, s.bucket, name, file.Body, size, minio.PutObjectOptions{
		ContentType: file.ContentType,
	})
	metrics.RecordMediaUpload(string(kind), err)
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", name, err)
	}
	return ObjectURL(s.base, name), nil
}
