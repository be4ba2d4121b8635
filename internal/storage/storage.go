// Package storage persists uploaded images and hands back a URL the
// clients can put in a post's image field.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	gcs "cloud.google.com/go/storage"
)

type Uploader interface {
	Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// Bucket uploads into a Cloud Storage bucket under uploads/.
type Bucket struct {
	bucket *gcs.BucketHandle
	name   string
}

func NewBucket(bucket *gcs.BucketHandle, name string) *Bucket {
	return &Bucket{bucket: bucket, name: name}
}

func (b *Bucket) Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	obj := "uploads/" + name
	w := b.bucket.Object(obj).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", b.name, obj), nil
}

// Dir writes into a local uploads directory, served by the app itself.
// Dev-mode stand-in for Bucket.
type Dir struct {
	root    string
	baseURL string
}

func NewDir(root, baseURL string) *Dir {
	_ = os.MkdirAll(root, 0o755)
	return &Dir{root: root, baseURL: baseURL}
}

func (d *Dir) Upload(_ context.Context, name, _ string, r io.Reader) (string, error) {
	dst := filepath.Join(d.root, name)
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()
	if _, err := io.Copy(out, r); err != nil {
		return "", err
	}
	return d.baseURL + "/uploads/" + name, nil
}
