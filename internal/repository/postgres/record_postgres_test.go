package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"voicedoc/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func recordRows(rec *model.Record) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "title", "status", "original_text", "processed_text",
		"audio_file_path", "document_file_path", "error_message", "created_at", "updated_at",
	}).AddRow(
		rec.ID, rec.UserID, rec.Title, string(rec.Status), rec.OriginalText, rec.ProcessedText,
		rec.AudioFilePath, rec.DocumentFilePath, rec.ErrorMessage, rec.CreatedAt, rec.UpdatedAt,
	)
}

func TestRecordPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRecordPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	rec := &model.Record{
		ID:            "rec-id",
		UserID:        "user-id",
		Title:         "Lecture 1",
		Status:        model.StatusPending,
		AudioFilePath: "audio/rec.mp3",
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	mock.ExpectQuery("INSERT INTO records").
		WithArgs(rec.ID, rec.UserID, rec.Title, string(rec.Status), rec.AudioFilePath, rec.CreatedAt, rec.UpdatedAt).
		WillReturnRows(recordRows(rec))

	stored, err := repo.Create(ctx, rec)

	assert.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, rec.ID, stored.ID)
	assert.Equal(t, model.StatusPending, stored.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRecordPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rec := &model.Record{
			ID:            "rec-id",
			UserID:        "user-id",
			Title:         "Lecture 1",
			Status:        model.StatusCompleted,
			OriginalText:  strptr("hello   world"),
			ProcessedText: strptr("Hello, world."),
			AudioFilePath: "audio/rec.mp3",
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}
		mock.ExpectQuery("SELECT (.+) FROM records").
			WithArgs("rec-id", "user-id").
			WillReturnRows(recordRows(rec))

		got, err := repo.FindOwned(ctx, "rec-id", "user-id")

		assert.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Hello, world.", *got.ProcessedText)
		assert.Nil(t, got.DocumentFilePath)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM records").
			WithArgs("missing", "user-id").
			WillReturnError(sql.ErrNoRows)

		got, err := repo.FindOwned(ctx, "missing", "user-id")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, got)
	})

	t.Run("unscoped pipeline lookup", func(t *testing.T) {
		rec := &model.Record{
			ID:            "rec-id",
			UserID:        "user-id",
			Title:         "Lecture 1",
			Status:        model.StatusPending,
			AudioFilePath: "audio/rec.mp3",
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}
		mock.ExpectQuery("SELECT (.+) FROM records").
			WithArgs("rec-id").
			WillReturnRows(recordRows(rec))

		got, err := repo.FindByID(ctx, "rec-id")

		assert.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "user-id", got.UserID)
	})
}

func TestRecordPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRecordPostgres(db)

	rows := sqlmock.NewRows([]string{"id", "title", "status", "created_at"}).
		AddRow("r2", "Second", "pending", time.Now()).
		AddRow("r1", "First", "completed", time.Now().Add(-time.Hour))

	mock.ExpectQuery("SELECT id, title, status, created_at FROM records").
		WithArgs("user-id").
		WillReturnRows(rows)

	items, err := repo.List(context.Background(), "user-id")

	assert.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "r2", items[0].ID)
	assert.Equal(t, model.StatusPending, items[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRecordPostgres(db)

	rec := &model.Record{
		ID:            "rec-id",
		UserID:        "user-id",
		Title:         "Lecture 1",
		Status:        model.StatusProcessing,
		OriginalText:  strptr("raw"),
		AudioFilePath: "audio/rec.mp3",
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	mock.ExpectQuery("UPDATE records").
		WithArgs(rec.ID, rec.UserID, rec.Title, string(rec.Status), rec.OriginalText,
			rec.ProcessedText, rec.DocumentFilePath, rec.ErrorMessage).
		WillReturnRows(recordRows(rec))

	updated, err := repo.Update(context.Background(), rec)

	assert.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, model.StatusProcessing, updated.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPostgres_UpdateContent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRecordPostgres(db)

	rec := &model.Record{
		ID:            "rec-id",
		UserID:        "user-id",
		Title:         "Renamed",
		Status:        model.StatusCompleted,
		ProcessedText: strptr("edited text"),
		AudioFilePath: "audio/rec.mp3",
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	// The owner edit must not carry status or the pipeline's columns.
	mock.ExpectQuery(`UPDATE records\s+SET title = \$3, processed_text = \$4, updated_at = now\(\)`).
		WithArgs(rec.ID, rec.UserID, rec.Title, rec.ProcessedText).
		WillReturnRows(recordRows(rec))

	updated, err := repo.UpdateContent(context.Background(), rec)

	assert.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Renamed", updated.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPostgres_SetDocumentPath(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRecordPostgres(db)

	rec := &model.Record{
		ID:               "rec-id",
		UserID:           "user-id",
		Title:            "Lecture 1",
		Status:           model.StatusCompleted,
		AudioFilePath:    "audio/rec.mp3",
		DocumentFilePath: strptr("documents/new.docx"),
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	mock.ExpectQuery(`UPDATE records\s+SET document_file_path = \$3, updated_at = now\(\)`).
		WithArgs("rec-id", "user-id", "documents/new.docx").
		WillReturnRows(recordRows(rec))

	updated, err := repo.SetDocumentPath(context.Background(), "rec-id", "user-id", "documents/new.docx")

	assert.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "documents/new.docx", *updated.DocumentFilePath)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRecordPostgres(db)

	t.Run("existing row", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM records").
			WithArgs("rec-id", "user-id").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), "rec-id", "user-id"))
	})

	t.Run("missing row is not an error", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM records").
			WithArgs("gone", "user-id").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.Delete(context.Background(), "gone", "user-id"))
	})
}
