package storage

import (
	"context"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
)

// Store persists copies of database files in a blob bucket. It
// satisfies interfaces.BackupStore.
type Store struct {
	bucket *blob.Bucket
}

// NewStore wraps an already opened bucket
func NewStore(bucket *blob.Bucket) *Store {
	return &Store{bucket: bucket}
}

// OpenDir opens a local directory as a backup bucket, creating the
// directory if it does not exist. Files are written as-is, without
// metadata sidecars.
func OpenDir(dir string) (*Store, error) {
	bucket, err := fileblob.OpenBucket(dir, &fileblob.Options{
		CreateDir: true,
		Metadata:  fileblob.MetadataDontWrite,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open backup directory", goerr.V("dir", dir))
	}
	return &Store{bucket: bucket}, nil
}

// OpenURL opens a bucket by URL, e.g. "file:///var/backups". The
// scheme must be one of the linked blob drivers.
func OpenURL(ctx context.Context, u string) (*Store, error) {
	bucket, err := blob.OpenBucket(ctx, u)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open backup bucket", goerr.V("url", u))
	}
	return &Store{bucket: bucket}, nil
}

// Save streams r into the bucket under key
func (s *Store) Save(ctx context.Context, key string, r io.Reader) error {
	w, err := s.bucket.NewWriter(ctx, key, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to create backup writer", goerr.V("key", key))
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return goerr.Wrap(err, "failed to write backup", goerr.V("key", key))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize backup", goerr.V("key", key))
	}
	return nil
}

// Close releases the underlying bucket
func (s *Store) Close() error {
	return s.bucket.Close()
}
