package model

import "time"

// Status is the lifecycle state of a Record.
// pending and completed/error are the only stable resting states; processing
// is transient and only observable while the pipeline holds the record.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Record is the unit of work: one audio upload tracked through
// transcription, text cleanup and document generation.
// This is a pure domain model with no database-specific dependencies or tags.
type Record struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Title            string    `json:"title"`
	Status           Status    `json:"status"`
	OriginalText     *string   `json:"original_text"`
	ProcessedText    *string   `json:"processed_text"`
	AudioFilePath    string    `json:"audio_file_path"`
	DocumentFilePath *string   `json:"document_file_path"`
	ErrorMessage     *string   `json:"error_message"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// RecordSummary is the listing projection of a Record.
type RecordSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
