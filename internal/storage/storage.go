package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

var (
	// ErrObjectExists is returned when a write would replace an existing object
	ErrObjectExists = errors.New("object already exists")
	// ErrInvalidPath is returned for empty, absolute or escaping object paths
	ErrInvalidPath = errors.New("invalid object path")
	// ErrBucketNotAllowed is returned for buckets outside the configured list
	ErrBucketNotAllowed = errors.New("bucket not allowed")
	// ErrNotConfigured is returned when no storage backend was set up
	ErrNotConfigured = errors.New("storage is not configured")
)

// Storage is a create-only blob store addressed by bucket and path
type Storage interface {
	// Put stores data under bucket/path and returns its public URL.
	// It never overwrites: an existing object yields ErrObjectExists.
	Put(ctx context.Context, bucket, name string, data []byte, contentType string) (string, error)

	Delete(ctx context.Context, bucket, name string) error

	URL(bucket, name string) string
}

// Buckets is the allow-list of bucket names a backend accepts
type Buckets map[string]bool

func NewBuckets(names []string) Buckets {
	b := Buckets{}
	for _, n := range names {
		b[n] = true
	}
	return b
}

// Check validates a bucket/path pair and returns the cleaned path
func (b Buckets) Check(bucket, name string) (string, error) {
	if !b[bucket] {
		return "", fmt.Errorf("%w: %q", ErrBucketNotAllowed, bucket)
	}
	return CleanPath(name)
}

// CleanPath normalizes an object path, rejecting anything that could leave the bucket
func CleanPath(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "\\") || strings.HasPrefix(name, "/") {
		return "", ErrInvalidPath
	}
	for _, segment := range strings.Split(name, "/") {
		if segment == ".." {
			return "", ErrInvalidPath
		}
	}
	cleaned := path.Clean(name)
	if cleaned == "." || cleaned == "/" {
		return "", ErrInvalidPath
	}
	return cleaned, nil
}

// escapePath percent-encodes each segment of bucket/name for use in a URL
func escapePath(bucket, name string) string {
	segments := strings.Split(name, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}
