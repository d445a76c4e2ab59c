package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/marketplace/pkg/config"
)

func TestFileStorePutURLDelete(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir, "uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	key := NewKey("photo.jpg")
	require.NoError(t, fs.Put(ctx, key, strings.NewReader("data"), 4, "image/jpeg"))

	b, err := os.ReadFile(filepath.Join(dir, key))
	require.NoError(t, err)
	assert.Equal(t, "data", string(b))

	url, err := fs.URL(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/"+key, url)

	// keys are never reused for a second write
	assert.Error(t, fs.Put(ctx, key, strings.NewReader("other"), 5, ""))

	require.NoError(t, fs.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(dir, key))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, fs.Delete(ctx, key))
}

func TestNewKeyIsUniqueAndSafe(t *testing.T) {
	a, b := NewKey("../../etc/passwd"), NewKey("../../etc/passwd")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "_passwd"))
	assert.NotContains(t, a, "/")

	assert.True(t, strings.HasSuffix(NewKey(`C:\temp\doc.pdf`), "_doc.pdf"))
	assert.True(t, strings.HasSuffix(NewKey(""), "_file"))
}

func TestNewSelectsDriver(t *testing.T) {
	store, err := New(&config.UploadConfig{Driver: "local", Dir: t.TempDir(), PublicPath: "/files"})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	_, err = New(&config.UploadConfig{Driver: "ftp"})
	assert.Error(t, err)
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	_, err := NewFileStore(" ", "")
	assert.Error(t, err)
}
