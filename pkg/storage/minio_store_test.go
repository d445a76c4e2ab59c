package storage

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// a fixed region keeps presigning offline
func newOfflineMinioStore(t *testing.T) *MinioStore {
	client, err := minio.New("localhost:9000", &minio.Options{
		Creds:  credentials.NewStaticV4("access", "secret", ""),
		Region: "us-east-1",
	})
	require.NoError(t, err)
	return &MinioStore{client: client, bucket: "uploads", publicPath: "/uploads", expiry: 10 * time.Minute}
}

func TestMinioStoreURLIsStable(t *testing.T) {
	store := newOfflineMinioStore(t)

	u, err := store.URL(context.Background(), "abc_photo.png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/abc_photo.png", u)

	parsed, err := url.Parse(u)
	require.NoError(t, err)
	assert.Empty(t, parsed.RawQuery)
	assert.NotContains(t, u, "X-Amz-Expires")
}

func TestMinioStoreSignedURL(t *testing.T) {
	store := newOfflineMinioStore(t)

	signed, err := store.SignedURL(context.Background(), "abc_photo.png")
	require.NoError(t, err)

	parsed, err := url.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/abc_photo.png", parsed.Path)
	assert.Equal(t, "600", parsed.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, parsed.Query().Get("X-Amz-Signature"))
}

func TestSafeKey(t *testing.T) {
	assert.Equal(t, "abc.png", SafeKey("abc.png"))
	assert.Equal(t, "passwd", SafeKey("../../etc/passwd"))
}
