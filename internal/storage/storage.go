// Package storage provides the output directory where commands write their
// results, plus optional export of results to S3.
// It defines the Storage interface (port) and implementations for local disk
// and S3.
package storage

import (
	"context"
	"io"
)

// Storage defines file storage for command inputs and outputs.
type Storage interface {
	// NewOutputPath reserves a unique file in the output directory for the
	// result of operation tag applied to source, and returns its path.
	NewOutputPath(source, tag, ext string) (string, error)

	// SaveTemp saves data to a new file and returns its path.
	// The name parameter is used as a hint for the filename.
	SaveTemp(ctx context.Context, name string, data io.Reader) (path string, err error)

	// LoadTemp opens a file inside the output directory.
	// The caller is responsible for closing the returned ReadCloser.
	LoadTemp(ctx context.Context, path string) (io.ReadCloser, error)

	// CleanupTemp removes the specified files.
	// It continues cleanup even if some files fail to delete.
	CleanupTemp(ctx context.Context, paths []string) error

	// Resolve maps a bare file name to its path inside the output directory.
	Resolve(name string) (string, error)

	// UploadFile uploads a local file to S3 and returns its public URL.
	// Returns ErrS3NotConfigured if S3 is not configured.
	UploadFile(ctx context.Context, key, path string) (url string, err error)
}
