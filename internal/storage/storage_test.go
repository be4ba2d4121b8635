package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirUpload(t *testing.T) {
	root := t.TempDir()
	d := NewDir(root, "http://localhost:8088")

	url, err := d.Upload(context.Background(), "photo.jpg", "image/jpeg", strings.NewReader("jpeg bytes"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8088/uploads/photo.jpg", url)

	data, err := os.ReadFile(filepath.Join(root, "photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))
}

func TestNewDirCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "uploads")
	NewDir(root, "")
	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
