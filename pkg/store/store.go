package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/gcerrors"
)

// ErrNotExist is returned by Read when the key does not exist.
var ErrNotExist = errors.New("object does not exist")

// Error records a failed storage operation.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Artifact describes an object written to the store.
type Artifact struct {
	Key      string
	Size     int64
	Checksum string // hex SHA-256 of the content
}

// Options configures how a location is opened.
type Options struct {
	// CreateDir creates a missing local directory instead of failing.
	CreateDir bool

	// ContentType is recorded on every written object.
	// Default: "text/plain"
	ContentType string
}

// Store writes artifacts to a bucket.
type Store struct {
	bucket *blob.Bucket
	owned  bool
	opts   Options
}

// Open opens location, which is a local directory or a bucket URL.
func Open(ctx context.Context, location string, opts Options) (*Store, error) {
	if location == "" {
		location = "."
	}

	var (
		bucket *blob.Bucket
		err    error
	)
	if strings.Contains(location, "://") {
		bucket, err = blob.OpenBucket(ctx, location)
	} else {
		bucket, err = openDir(location, opts.CreateDir)
	}
	if err != nil {
		return nil, &Error{Op: "open", Key: location, Err: err}
	}

	s := New(bucket, opts)
	s.owned = true
	return s, nil
}

// New wraps an already open bucket. Close does not close the bucket.
func New(bucket *blob.Bucket, opts Options) *Store {
	if opts.ContentType == "" {
		opts.ContentType = "text/plain"
	}
	return &Store{bucket: bucket, opts: opts}
}

func openDir(dir string, create bool) (*blob.Bucket, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return fileblob.OpenBucket(abs, &fileblob.Options{
		CreateDir: create,
		NoTempDir: true,
		Metadata:  fileblob.MetadataDontWrite,
	})
}

// Bucket returns the underlying bucket.
func (s *Store) Bucket() *blob.Bucket {
	return s.bucket
}

// Write stores data under key, replacing any existing object.
func (s *Store) Write(ctx context.Context, key string, data []byte) (Artifact, error) {
	sum := sha256.Sum256(data)

	err := s.bucket.WriteAll(ctx, key, data, &blob.WriterOptions{
		ContentType: s.opts.ContentType,
	})
	if err != nil {
		return Artifact{}, &Error{Op: "write", Key: key, Err: err}
	}

	return Artifact{
		Key:      key,
		Size:     int64(len(data)),
		Checksum: hex.EncodeToString(sum[:]),
	}, nil
}

// Read returns the content stored under key.
func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		if isNotExist(err) {
			err = ErrNotExist
		}
		return nil, &Error{Op: "read", Key: key, Err: err}
	}
	return data, nil
}

// Combine concatenates the objects stored under keys, in order, and writes
// the result under dest.
func (s *Store) Combine(ctx context.Context, dest string, keys []string) (Artifact, error) {
	var combined []byte
	for _, key := range keys {
		data, err := s.Read(ctx, key)
		if err != nil {
			return Artifact{}, err
		}
		combined = append(combined, data...)
	}
	return s.Write(ctx, dest, combined)
}

// Exists reports whether an object is stored under key.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := s.bucket.Exists(ctx, key)
	if err != nil {
		return false, &Error{Op: "exists", Key: key, Err: err}
	}
	return ok, nil
}

// Delete removes the object under key. Deleting a missing object is not an
// error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Delete(ctx, key); err != nil && !isNotExist(err) {
		return &Error{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// Close closes the bucket if the store opened it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.bucket.Close()
}

// isNotExist returns true if the error indicates the object doesn't exist.
func isNotExist(err error) bool {
	return gcerrors.Code(err) == gcerrors.NotFound
}
