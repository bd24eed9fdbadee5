package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	gcs "cloud.google.com/go/storage"
	"github.com/labstack/gommon/log"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// StorageGCS is a Google Cloud Storage-based blob store. Each allowed bucket name
// maps to a GCS bucket of the same name, which must be publicly readable.
type StorageGCS struct {
	client  *gcs.Client
	buckets Buckets
	log     *log.Logger
}

// NewStorageGCS connects with application default credentials. A non-empty
// endpoint points the client at an emulator instead.
func NewStorageGCS(ctx context.Context, logger *log.Logger, buckets []string, endpoint string) (*StorageGCS, error) {
	var opts []option.ClientOption
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint), option.WithoutAuthentication())
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &StorageGCS{
		client:  client,
		buckets: NewBuckets(buckets),
		log:     logger,
	}, nil
}

func (s *StorageGCS) Put(ctx context.Context, bucket, name string, data []byte, contentType string) (string, error) {
	name, err := s.buckets.Check(bucket, name)
	if err != nil {
		return "", err
	}

	obj := s.client.Bucket(bucket).Object(name).If(gcs.Conditions{DoesNotExist: true})
	w := obj.NewWriter(ctx)
	w.ContentType = contentType

	_, err = io.Copy(w, bytes.NewReader(data))
	errClose := w.Close()
	if err == nil {
		err = errClose
	}
	if err != nil {
		if isPreconditionFailed(err) {
			return "", ErrObjectExists
		}
		return "", err
	}

	s.log.Infof("Uploaded gs://%v/%v (%v bytes)", bucket, name, len(data))
	return s.URL(bucket, name), nil
}

func (s *StorageGCS) Delete(ctx context.Context, bucket, name string) error {
	name, err := s.buckets.Check(bucket, name)
	if err != nil {
		return err
	}
	s.log.Infof("Deleting gs://%v/%v", bucket, name)
	return s.client.Bucket(bucket).Object(name).Delete(ctx)
}

func (s *StorageGCS) URL(bucket, name string) string {
	return "https://storage.googleapis.com/" + escapePath(bucket, name)
}

func (s *StorageGCS) Close() error {
	return s.client.Close()
}

func isPreconditionFailed(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed
}
