package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"voicedoc/internal/model"
	"voicedoc/internal/render"
	"voicedoc/internal/repository"
	"voicedoc/internal/storage"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrNotFound          = errors.New("record not found")
	ErrNoTextToRender    = errors.New("no processed text to render")
	ErrMissingFile       = errors.New("referenced file is missing")
	ErrTitleRequired     = errors.New("title is required")
	ErrReaderNil         = errors.New("reader is nil")
)

// allowedAudioExts is the upload allow-list. Checked before anything is
// stored, so an unsupported upload leaves no row and no file behind.
var allowedAudioExts = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".m4a":  {},
	".ogg":  {},
	".flac": {},
	".webm": {},
}

// RecordUpdate carries the owner-editable fields of a record. Nil means
// "leave unchanged".
type RecordUpdate struct {
	Title         *string
	ProcessedText *string
}

// RecordService defines the owner-facing record lifecycle operations.
// Everything is scoped to the owning principal; a record another user owns
// behaves exactly like a record that does not exist.
type RecordService interface {
	// Create validates the audio extension, stores the file, inserts a
	// pending record and dispatches the processing pipeline.
	Create(ctx context.Context, ownerID, title string, r io.Reader, filename string) (*model.Record, error)

	// List returns the owner's records, newest first.
	List(ctx context.Context, ownerID string) ([]model.RecordSummary, error)

	// Get returns the full record detail.
	Get(ctx context.Context, ownerID, id string) (*model.Record, error)

	// Update overwrites title and/or processed text. Status and the
	// rendered document are left untouched, so an edited text may mismatch
	// the stale document until Regenerate is called.
	Update(ctx context.Context, ownerID, id string, upd RecordUpdate) (*model.Record, error)

	// Delete removes the record's files (best-effort) and then the row.
	Delete(ctx context.Context, ownerID, id string) error

	// Regenerate re-renders only the document from the current title and
	// processed text, replacing the document reference. Status is unchanged.
	Regenerate(ctx context.Context, ownerID, id string) (*model.Record, error)

	// OpenAudio streams the stored audio file for download.
	OpenAudio(ctx context.Context, ownerID, id string) (io.ReadCloser, *model.Record, error)

	// OpenDocument streams the rendered document for download.
	OpenDocument(ctx context.Context, ownerID, id string) (io.ReadCloser, *model.Record, error)
}

// Dispatcher schedules the processing pipeline for a newly created record.
type Dispatcher interface {
	Dispatch(recordID string)
}

type recordService struct {
	store      storage.Storage
	repo       repository.RecordRepository
	renderer   render.Renderer
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewRecordService constructs a RecordService.
func NewRecordService(
	store storage.Storage,
	repo repository.RecordRepository,
	renderer render.Renderer,
	dispatcher Dispatcher,
	logger *slog.Logger,
) RecordService {
	if logger == nil {
		logger = slog.Default()
	}
	return &recordService{
		store:      store,
		repo:       repo,
		renderer:   renderer,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (s *recordService) Create(ctx context.Context, ownerID, title string, r io.Reader, filename string) (*model.Record, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrTitleRequired
	}
	if r == nil {
		return nil, ErrReaderNil
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedAudioExts[ext]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	audioPath, err := s.store.SaveAudio(ctx, r, ext)
	if err != nil {
		return nil, fmt.Errorf("store audio: %w", err)
	}

	now := time.Now().UTC()
	rec := &model.Record{
		ID:            uuid.NewString(),
		UserID:        ownerID,
		Title:         title,
		Status:        model.StatusPending,
		AudioFilePath: audioPath,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	stored, err := s.repo.Create(ctx, rec)
	if err != nil {
		// Rollback: the row never existed, so the file must not either.
		if delErr := s.store.Delete(ctx, audioPath); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	s.dispatcher.Dispatch(stored.ID)
	return stored, nil
}

func (s *recordService) List(ctx context.Context, ownerID string) ([]model.RecordSummary, error) {
	return s.repo.List(ctx, ownerID)
}

func (s *recordService) Get(ctx context.Context, ownerID, id string) (*model.Record, error) {
	return s.findOwned(ctx, id, ownerID)
}

func (s *recordService) Update(ctx context.Context, ownerID, id string, upd RecordUpdate) (*model.Record, error) {
	rec, err := s.findOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		if strings.TrimSpace(*upd.Title) == "" {
			return nil, ErrTitleRequired
		}
		rec.Title = *upd.Title
	}
	if upd.ProcessedText != nil {
		rec.ProcessedText = upd.ProcessedText
	}

	// Narrow write: an owner edit must never touch status or the pipeline's
	// columns, even if the record moved on since the read above.
	return s.repo.UpdateContent(ctx, rec)
}

func (s *recordService) Delete(ctx context.Context, ownerID, id string) error {
	rec, err := s.findOwned(ctx, id, ownerID)
	if err != nil {
		return err
	}

	// Best-effort file cleanup: a missing file is already the end state we
	// want, so it is logged and tolerated, never raised.
	s.removeFile(ctx, rec.ID, rec.AudioFilePath)
	if rec.DocumentFilePath != nil {
		s.removeFile(ctx, rec.ID, *rec.DocumentFilePath)
	}

	return s.repo.Delete(ctx, id, ownerID)
}

func (s *recordService) Regenerate(ctx context.Context, ownerID, id string) (*model.Record, error) {
	rec, err := s.findOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if rec.ProcessedText == nil || strings.TrimSpace(*rec.ProcessedText) == "" {
		return nil, ErrNoTextToRender
	}

	if rec.DocumentFilePath != nil {
		s.removeFile(ctx, rec.ID, *rec.DocumentFilePath)
	}

	docPath, err := s.renderer.Render(ctx, rec.Title, *rec.ProcessedText)
	if err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}

	return s.repo.SetDocumentPath(ctx, id, ownerID, docPath)
}

func (s *recordService) OpenAudio(ctx context.Context, ownerID, id string) (io.ReadCloser, *model.Record, error) {
	rec, err := s.findOwned(ctx, id, ownerID)
	if err != nil {
		return nil, nil, err
	}
	return s.open(ctx, rec, rec.AudioFilePath)
}

func (s *recordService) OpenDocument(ctx context.Context, ownerID, id string) (io.ReadCloser, *model.Record, error) {
	rec, err := s.findOwned(ctx, id, ownerID)
	if err != nil {
		return nil, nil, err
	}
	if rec.DocumentFilePath == nil {
		return nil, nil, ErrMissingFile
	}
	return s.open(ctx, rec, *rec.DocumentFilePath)
}

func (s *recordService) open(ctx context.Context, rec *model.Record, path string) (io.ReadCloser, *model.Record, error) {
	if path == "" {
		return nil, nil, ErrMissingFile
	}
	rc, err := s.store.Open(ctx, path)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, nil, ErrMissingFile
		}
		return nil, nil, err
	}
	return rc, rec, nil
}

func (s *recordService) findOwned(ctx context.Context, id, ownerID string) (*model.Record, error) {
	rec, err := s.repo.FindOwned(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (s *recordService) removeFile(ctx context.Context, recordID, path string) {
	if err := s.store.Delete(ctx, path); err != nil {
		s.logger.Warn("file cleanup failed", "record_id", recordID, "path", path, "error", err)
	}
}
