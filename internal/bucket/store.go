// Package bucket provides object storage for the pipeline's raw and cleaned
// data files. A Store is a flat keyspace of JSON objects; the GCS backend is
// used in deployment and the local backend for development and tests.
package bucket

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"time"
)

// ErrObjectNotFound is returned when a requested object does not exist.
var ErrObjectNotFound = errors.New("bucket: object not found")

// Store is a minimal object store.
type Store interface {
	// Put writes an object, replacing any existing object under the key.
	Put(ctx context.Context, key string, data io.Reader) error

	// Get opens an object for reading. Returns ErrObjectNotFound when the
	// key does not exist.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// List returns all keys under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes an object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// timestampLayout orders object keys chronologically when sorted
// lexicographically.
const timestampLayout = "20060102_150405"

// RawObjectKey names a raw catalog snapshot fetched at the given time.
func RawObjectKey(prefix string, at time.Time) string {
	return path.Join(prefix, fmt.Sprintf("igdb_games_%s.json", at.UTC().Format(timestampLayout)))
}

// CleanedObjectKey names an output file for a cleaning run started at the
// given time.
func CleanedObjectKey(prefix string, at time.Time, name string) string {
	return path.Join(prefix, at.UTC().Format(timestampLayout), name)
}

// LatestKey returns the lexicographically greatest key under prefix, which
// for timestamped keys is the most recent one. Returns ErrObjectNotFound
// when the prefix holds no objects.
func LatestKey(ctx context.Context, store Store, prefix string) (string, error) {
	keys, err := store.List(ctx, prefix)
	if err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "", fmt.Errorf("%w: no objects under %q", ErrObjectNotFound, prefix)
	}
	sort.Strings(keys)
	return keys[len(keys)-1], nil
}

// WriteJSON marshals v and stores it under key.
func WriteJSON(ctx context.Context, store Store, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("bucket: failed to encode %s: %w", key, err)
	}
	return store.Put(ctx, key, bytes.NewReader(data))
}

// ReadJSON fetches the object under key and unmarshals it into v.
func ReadJSON(ctx context.Context, store Store, key string, v interface{}) error {
	reader, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	defer reader.Close()

	if err := json.NewDecoder(reader).Decode(v); err != nil {
		return fmt.Errorf("bucket: failed to decode %s: %w", key, err)
	}
	return nil
}
