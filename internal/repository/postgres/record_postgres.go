package postgres

import (
	"context"
	"database/sql"

	"voicedoc/internal/model"
	"voicedoc/internal/repository"
)

// RecordPostgres is a PostgreSQL implementation of repository.RecordRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type RecordPostgres struct {
	db *sql.DB
}

// NewRecordPostgres creates a new RecordPostgres repository.
func NewRecordPostgres(db *sql.DB) *RecordPostgres {
	return &RecordPostgres{db: db}
}

var _ repository.RecordRepository = (*RecordPostgres)(nil)

const recordColumns = `id, user_id, title, status, original_text, processed_text,
		audio_file_path, document_file_path, error_message, created_at, updated_at`

func scanRecord(row interface{ Scan(...any) error }) (*model.Record, error) {
	var r model.Record
	if err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.Title,
		&r.Status,
		&r.OriginalText,
		&r.ProcessedText,
		&r.AudioFilePath,
		&r.DocumentFilePath,
		&r.ErrorMessage,
		&r.CreatedAt,
		&r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts a new record row and returns the stored record.
func (r *RecordPostgres) Create(ctx context.Context, rec *model.Record) (*model.Record, error) {
	const q = `
		INSERT INTO records (id, user_id, title, status, audio_file_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + recordColumns
	row := r.db.QueryRowContext(ctx, q,
		rec.ID,
		rec.UserID,
		rec.Title,
		rec.Status,
		rec.AudioFilePath,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	return scanRecord(row)
}

// FindByID fetches a single record regardless of owner.
func (r *RecordPostgres) FindByID(ctx context.Context, id string) (*model.Record, error) {
	const q = `
		SELECT ` + recordColumns + `
		FROM records
		WHERE id = $1
	`
	return scanRecord(r.db.QueryRowContext(ctx, q, id))
}

// FindOwned fetches a single record scoped to its owner.
func (r *RecordPostgres) FindOwned(ctx context.Context, id, userID string) (*model.Record, error) {
	const q = `
		SELECT ` + recordColumns + `
		FROM records
		WHERE id = $1 AND user_id = $2
	`
	return scanRecord(r.db.QueryRowContext(ctx, q, id, userID))
}

// List returns the owner's records ordered newest-first.
func (r *RecordPostgres) List(ctx context.Context, userID string) ([]model.RecordSummary, error) {
	const q = `
		SELECT id, title, status, created_at
		FROM records
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.RecordSummary, 0)
	for rows.Next() {
		var s model.RecordSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Status, &s.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update writes all mutable fields of the record and bumps updated_at.
func (r *RecordPostgres) Update(ctx context.Context, rec *model.Record) (*model.Record, error) {
	const q = `
		UPDATE records
		SET title = $3, status = $4, original_text = $5, processed_text = $6,
		    document_file_path = $7, error_message = $8, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + recordColumns
	row := r.db.QueryRowContext(ctx, q,
		rec.ID,
		rec.UserID,
		rec.Title,
		rec.Status,
		rec.OriginalText,
		rec.ProcessedText,
		rec.DocumentFilePath,
		rec.ErrorMessage,
	)
	return scanRecord(row)
}

// UpdateContent writes only the owner-editable columns and bumps updated_at.
func (r *RecordPostgres) UpdateContent(ctx context.Context, rec *model.Record) (*model.Record, error) {
	const q = `
		UPDATE records
		SET title = $3, processed_text = $4, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + recordColumns
	row := r.db.QueryRowContext(ctx, q,
		rec.ID,
		rec.UserID,
		rec.Title,
		rec.ProcessedText,
	)
	return scanRecord(row)
}

// SetDocumentPath writes only document_file_path and bumps updated_at.
func (r *RecordPostgres) SetDocumentPath(ctx context.Context, id, userID, path string) (*model.Record, error) {
	const q = `
		UPDATE records
		SET document_file_path = $3, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + recordColumns
	return scanRecord(r.db.QueryRowContext(ctx, q, id, userID, path))
}

// Delete removes a record by id. It does not return an error if the row does not exist.
func (r *RecordPostgres) Delete(ctx context.Context, id, userID string) error {
	const q = `DELETE FROM records WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
