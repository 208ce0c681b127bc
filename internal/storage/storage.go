package storage

// Package storage contains the file storage adapter used for uploaded audio
// and rendered documents. Backends keep two subtrees, audio/ and documents/,
// with system-generated filenames so user input never reaches the path.

import (
	"context"
	"errors"
	"io"
)

// ErrNotExist is returned by Open when the referenced path is gone.
// Callers treat it as a reportable condition, not a crash: downloads map it
// to a 404, deletes tolerate it.
var ErrNotExist = errors.New("storage: file does not exist")

// Storage persists uploaded audio and rendered documents.
// Delete of a non-existent path is a no-op so cleanup stays idempotent.
type Storage interface {
	// SaveAudio stores audio bytes under audio/ with a generated name
	// carrying the given extension, and returns the stored path.
	SaveAudio(ctx context.Context, r io.Reader, ext string) (string, error)

	// SaveDocument stores rendered document bytes under documents/ with the
	// given filename, and returns the stored path.
	SaveDocument(ctx context.Context, r io.Reader, filename string) (string, error)

	// Open returns the content of a previously stored path.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a stored path. Missing paths are not an error.
	Delete(ctx context.Context, path string) error
}
