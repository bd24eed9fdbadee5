package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/labstack/gommon/log"
)

// StorageFS is a filesystem-based blob store. Objects live under Root/bucket/path
// and are served by the web layer below BaseURL/media.
type StorageFS struct {
	Root    string
	BaseURL string
	buckets Buckets
	log     *log.Logger
}

func NewStorageFS(logger *log.Logger, root, baseURL string, buckets []string) (*StorageFS, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(absRoot, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root directory %v (relative path %v): %w", absRoot, root, err)
	}
	return &StorageFS{
		Root:    absRoot,
		BaseURL: baseURL,
		buckets: NewBuckets(buckets),
		log:     logger,
	}, nil
}

func (fs *StorageFS) Put(ctx context.Context, bucket, name string, data []byte, contentType string) (string, error) {
	name, err := fs.buckets.Check(bucket, name)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(fs.Root, bucket, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", err
	}

	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", ErrObjectExists
		}
		return "", err
	}
	_, err = f.Write(data)
	errClose := f.Close()
	if err == nil {
		err = errClose
	}
	if err != nil {
		os.Remove(fullPath)
		return "", err
	}

	fs.log.Infof("Wrote %v/%v (%v bytes, %v)", bucket, name, len(data), contentType)
	return fs.URL(bucket, name), nil
}

func (fs *StorageFS) Delete(ctx context.Context, bucket, name string) error {
	name, err := fs.buckets.Check(bucket, name)
	if err != nil {
		return err
	}
	fs.log.Infof("Deleting %v/%v", bucket, name)
	return os.Remove(filepath.Join(fs.Root, bucket, filepath.FromSlash(name)))
}

func (fs *StorageFS) URL(bucket, name string) string {
	return fs.BaseURL + "/media/" + escapePath(bucket, name)
}
