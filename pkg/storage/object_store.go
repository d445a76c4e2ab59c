package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/suteetoe/marketplace/pkg/config"
)

// ObjectStore stores uploaded files and hands out URLs to fetch them.
// URLs are persisted by clients, so they must not expire.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	URL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by cfg.Driver ("local" or "minio").
func New(cfg *config.UploadConfig) (ObjectStore, error) {
	switch cfg.Driver {
	case "local", "":
		return NewFileStore(cfg.Dir, cfg.PublicPath)
	case "minio":
		m := cfg.Minio
		return NewMinioStore(m.Endpoint, m.AccessKey, m.SecretKey, m.Bucket, m.UseSSL, cfg.PublicPath, m.URLExpiry)
	default:
		return nil, fmt.Errorf("unsupported upload driver %q", cfg.Driver)
	}
}

// NewKey returns a unique object key that keeps the sanitized original name as suffix.
func NewKey(filename string) string {
	return uuid.NewString() + "_" + safeFilename(filename)
}

// SafeKey strips any directory part from a client supplied key
func SafeKey(key string) string {
	return safeFilename(key)
}

func safeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.ReplaceAll(name, string(os.PathSeparator), "_")
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "/" {
		return "file"
	}
	return name
}

// Signer issues short-lived direct links to stored objects
type Signer interface {
	SignedURL(ctx context.Context, key string) (string, error)
}

// MinioStore implements ObjectStore for MinIO/S3 compatible storage. Its public
// URLs point at the API (publicPath/key), which redirects to a fresh presigned link.
type MinioStore struct {
	client     *minio.Client
	bucket     string
	publicPath string
	expiry     time.Duration
}

// NewMinioStore connects to MinIO and ensures the bucket exists.
func NewMinioStore(endpoint, accessKey, secretKey, bucket string, useSSL bool, publicPath string, expiry time.Duration) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &MinioStore{client: client, bucket: bucket, publicPath: publicPath, expiry: expiry}, nil
}

// Put uploads an object.
func (m *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

// PublicPath is the URL prefix served by the redirect route
func (m *MinioStore) PublicPath() string {
	return m.publicPath
}

// URL returns the stable API path of an object.
func (m *MinioStore) URL(_ context.Context, key string) (string, error) {
	return path.Join("/", m.publicPath, key), nil
}

// SignedURL generates a pre-signed GET URL valid for the configured expiry.
func (m *MinioStore) SignedURL(ctx context.Context, key string) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, m.expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return u.String(), nil
}

// Delete removes an object.
func (m *MinioStore) Delete(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
