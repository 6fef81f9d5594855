package bucket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const (
	gcsWriteTimeout = 2 * time.Minute
	gcsListTimeout  = 30 * time.Second
)

// GCSStore is a Store backed by a Google Cloud Storage bucket.
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore opens a Store over the named GCS bucket. Credentials come from
// the ambient environment (application default credentials).
func NewGCSStore(ctx context.Context, bucketName string, opts ...option.ClientOption) (*GCSStore, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("bucket: bucket name is required")
	}

	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("bucket: failed to create storage client: %w", err)
	}

	return &GCSStore{client: client, bucket: bucketName}, nil
}

// Close releases the underlying storage client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) Put(ctx context.Context, key string, data io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, gcsWriteTimeout)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := io.Copy(w, data); err != nil {
		_ = w.Close()
		return fmt.Errorf("bucket: failed to write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("bucket: failed to finish writing %s: %w", key, err)
	}
	return nil
}

// Get opens the object for reading. The returned reader carries its own
// cancel; cancelling before the caller reads would truncate the object.
func (s *GCSStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	ctx, cancel := context.WithTimeout(ctx, gcsWriteTimeout)

	r, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		cancel()
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("bucket: failed to open %s: %w", key, err)
	}

	return &cancelReadCloser{ReadCloser: r, cancel: cancel}, nil
}

func (s *GCSStore) List(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, gcsListTimeout)
	defer cancel()

	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	var keys []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("bucket: failed to list %q: %w", prefix, err)
		}
		keys = append(keys, attrs.Name)
	}
	return keys, nil
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, gcsListTimeout)
	defer cancel()

	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("bucket: failed to delete %s: %w", key, err)
	}
	return nil
}

type cancelReadCloser struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *cancelReadCloser) Close() error {
	err := r.ReadCloser.Close()
	r.cancel()
	return err
}
