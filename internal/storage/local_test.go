package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveAudio(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	path, err := s.SaveAudio(ctx, strings.NewReader("audio-bytes"), ".MP3")
	require.NoError(t, err)

	assert.Equal(t, "audio", filepath.Base(filepath.Dir(path)))
	assert.True(t, strings.HasSuffix(path, ".mp3"), "extension is lowercased: %s", path)

	rc, err := s.Open(ctx, path)
	require.NoError(t, err)
	defer rc.Close()
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "audio-bytes", string(content))
}

func TestLocalStorage_SaveAudio_UniqueNames(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	p1, err := s.SaveAudio(ctx, strings.NewReader("a"), "wav")
	require.NoError(t, err)
	p2, err := s.SaveAudio(ctx, strings.NewReader("b"), "wav")
	require.NoError(t, err)

	assert.NotEqual(t, p1, p2)
}

func TestLocalStorage_SaveDocument(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	path, err := s.SaveDocument(ctx, strings.NewReader("docx-bytes"), "Lecture_20240101_120000.docx")
	require.NoError(t, err)
	assert.Equal(t, "documents", filepath.Base(filepath.Dir(path)))

	rc, err := s.Open(ctx, path)
	require.NoError(t, err)
	rc.Close()
}

func TestLocalStorage_Open_Missing(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocal(dir)
	require.NoError(t, err)

	_, err = s.Open(context.Background(), filepath.Join(dir, "audio", "gone.mp3"))
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestLocalStorage_Delete_Idempotent(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	path, err := s.SaveAudio(ctx, strings.NewReader("x"), ".ogg")
	require.NoError(t, err)

	assert.NoError(t, s.Delete(ctx, path))
	// Second delete of the same path must stay silent.
	assert.NoError(t, s.Delete(ctx, path))
}

func TestLocalStorage_RejectsOutsidePaths(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Open(ctx, "/etc/passwd")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotExist)

	assert.Error(t, s.Delete(ctx, "/etc/passwd"))
}
