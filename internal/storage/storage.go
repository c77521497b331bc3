// Package storage provides temporary file storage on local disk and the
// artifact store adapter used to publish generated media.
package storage

import (
	"context"
	"io"
)

// TempStore manages files that only live for the duration of a job.
type TempStore interface {
	// SaveTemp writes data to a new file under dir and returns its path.
	// The name parameter is used as a hint for the filename.
	SaveTemp(ctx context.Context, dir, name string, data io.Reader) (path string, err error)

	// MakeTempDir creates a new uniquely named directory for one job.
	MakeTempDir(ctx context.Context, name string) (dir string, err error)

	// LoadTemp opens a temporary file for reading.
	// The caller is responsible for closing the returned ReadCloser.
	LoadTemp(ctx context.Context, path string) (io.ReadCloser, error)
}

// ArtifactStore is the durable blob store that generated media is published to.
type ArtifactStore interface {
	// Upload writes body to bucket/key in a single attempt.
	// Every failure is returned as *Error.
	Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) error

	// PublicURL returns the public URL of bucket/key.
	PublicURL(bucket, key string) string
}
