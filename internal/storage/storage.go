// Package storage wraps the object store behind a small interface so the
// uploader and pipeline can be tested against fakes.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStore provides the object operations the uploader and pipeline
// need. Bucket lifecycle and listing are peripheral; only Get and Put
// sit on the processing path.
type ObjectStore interface {
	// Get fetches the full contents of an object.
	Get(ctx context.Context, bucket, key string) ([]byte, error)

	// Put writes an object with the given content type and metadata.
	Put(ctx context.Context, bucket, key string, body []byte, contentType string, metadata map[string]string) error

	// EnsureBucket creates the bucket if it does not already exist.
	EnsureBucket(ctx context.Context, bucket string) error

	// List returns the objects under the given key prefix.
	List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
}

// GCSStore is the Google Cloud Storage implementation of ObjectStore.
// It assumes Application Default Credentials are configured.
type GCSStore struct {
	client  *gcs.Client
	project string
}

// NewGCSStore creates a store backed by a new storage client. The
// project is only needed for bucket creation.
func NewGCSStore(ctx context.Context, project string) (*GCSStore, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewGCSStore: create storage client: %w", err)
	}
	return &GCSStore{client: client, project: project}, nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	r, err := s.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage: open reader for %s/%s: %w", bucket, key, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

func (s *GCSStore) Put(ctx context.Context, bucket, key string, body []byte, contentType string, metadata map[string]string) error {
	w := s.client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = metadata

	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return fmt.Errorf("storage: write %s/%s: %w", bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("storage: finalize %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *GCSStore) EnsureBucket(ctx context.Context, bucket string) error {
	bkt := s.client.Bucket(bucket)

	_, err := bkt.Attrs(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gcs.ErrBucketNotExist) {
		return fmt.Errorf("storage: check bucket %q: %w", bucket, err)
	}

	if err := bkt.Create(ctx, s.project, nil); err != nil {
		return fmt.Errorf("storage: create bucket %q: %w", bucket, err)
	}
	return nil
}

func (s *GCSStore) List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	it := s.client.Bucket(bucket).Objects(ctx, &gcs.Query{Prefix: prefix})

	var objects []ObjectInfo
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("storage: list %s/%s: %w", bucket, prefix, err)
		}
		objects = append(objects, ObjectInfo{
			Key:          attrs.Name,
			Size:         attrs.Size,
			LastModified: attrs.Updated,
		})
	}
	return objects, nil
}
