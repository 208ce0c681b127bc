package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.

import (
	"context"

	"voicedoc/internal/model"
)

// RecordRepository defines persistence for records using SQL queries only.
// No business logic here — strictly persistence operations. The pipeline
// relies on Update being a single-row transactional write so a concurrent
// reader always observes the latest completed stage.
type RecordRepository interface {
	// Create inserts a new record row and returns the stored record.
	Create(ctx context.Context, rec *model.Record) (*model.Record, error)

	// FindByID returns a record by id regardless of owner. The pipeline uses
	// it: orchestration is keyed by record id only.
	FindByID(ctx context.Context, id string) (*model.Record, error)

	// FindOwned returns a record by id scoped to its owner.
	// Returns sql.ErrNoRows when the row is absent or owned by someone else.
	FindOwned(ctx context.Context, id, userID string) (*model.Record, error)

	// List returns the owner's records ordered newest-first.
	List(ctx context.Context, userID string) ([]model.RecordSummary, error)

	// Update writes all mutable fields of the record and bumps updated_at.
	// Only the pipeline uses it; it owns the status and text columns while
	// a record is in flight.
	Update(ctx context.Context, rec *model.Record) (*model.Record, error)

	// UpdateContent writes only the owner-editable columns (title,
	// processed_text), so an edit racing the pipeline cannot write back a
	// stale status or pipeline output it read earlier.
	UpdateContent(ctx context.Context, rec *model.Record) (*model.Record, error)

	// SetDocumentPath writes only document_file_path, scoped to the owner.
	SetDocumentPath(ctx context.Context, id, userID, path string) (*model.Record, error)

	// Delete removes a record by id. It returns nil if the row was deleted
	// or did not exist.
	Delete(ctx context.Context, id, userID string) error
}

// UserRepository resolves principals for the auth collaborator.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
}
