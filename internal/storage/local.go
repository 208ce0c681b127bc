package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	audioSubdir    = "audio"
	documentSubdir = "documents"
)

// localStorage implements Storage on a managed directory tree. This is the
// deployment default: a single-process service with files next to it.
type localStorage struct {
	baseDir string
}

// NewLocal creates a filesystem-backed Storage rooted at baseDir,
// creating the audio/ and documents/ subtrees if needed.
func NewLocal(baseDir string) (Storage, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("storage base dir is required")
	}
	for _, sub := range []string{audioSubdir, documentSubdir} {
		if err := os.MkdirAll(filepath.Join(baseDir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir %s: %w", sub, err)
		}
	}
	return &localStorage{baseDir: baseDir}, nil
}

var _ Storage = (*localStorage)(nil)

func (s *localStorage) SaveAudio(ctx context.Context, r io.Reader, ext string) (string, error) {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	name := uuid.NewString() + strings.ToLower(ext)
	return s.write(filepath.Join(s.baseDir, audioSubdir, name), r)
}

func (s *localStorage) SaveDocument(ctx context.Context, r io.Reader, filename string) (string, error) {
	// Filenames are system-generated; Base strips anything that is not.
	return s.write(filepath.Join(s.baseDir, documentSubdir, filepath.Base(filename)), r)
}

func (s *localStorage) write(path string, r io.Reader) (string, error) {
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close file: %w", err)
	}
	return path, nil
}

func (s *localStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := s.checkManaged(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotExist
		}
		return nil, err
	}
	return f, nil
}

func (s *localStorage) Delete(ctx context.Context, path string) error {
	if err := s.checkManaged(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// checkManaged rejects paths outside the managed tree. Stored paths are
// system-generated, so a violation means a corrupted or forged reference.
func (s *localStorage) checkManaged(path string) error {
	base, err := filepath.Abs(s.baseDir)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(abs, base+string(filepath.Separator)) {
		return fmt.Errorf("path %s is outside the storage tree", path)
	}
	return nil
}
