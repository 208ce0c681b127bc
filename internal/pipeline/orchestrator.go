package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"voicedoc/internal/model"
	"voicedoc/internal/normalize"
	"voicedoc/internal/render"
	"voicedoc/internal/repository"
	"voicedoc/internal/transcribe"
)

// Orchestrator drives a single record through the three-stage pipeline:
// transcription, text cleanup, document rendering. The record row is
// persisted after every stage boundary, so a concurrent reader always sees
// the latest completed stage and a crash mid-pipeline leaves the record in
// an inspectable state.
//
// Any fault — a port error, a persist error, even a panic — is contained
// inside Run and converted into status=error on the record. Nothing escapes
// to the caller: by the time a stage fails, the upload request that created
// the record has long been answered.
type Orchestrator struct {
	records     repository.RecordRepository
	transcriber transcribe.Transcriber
	normalizer  normalize.Normalizer
	renderer    render.Renderer
	logger      *slog.Logger
}

// NewOrchestrator wires the pipeline stages together.
func NewOrchestrator(
	records repository.RecordRepository,
	transcriber transcribe.Transcriber,
	normalizer normalize.Normalizer,
	renderer render.Renderer,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		records:     records,
		transcriber: transcriber,
		normalizer:  normalizer,
		renderer:    renderer,
		logger:      logger,
	}
}

// Run executes the pipeline for one record. A record that no longer exists
// is a silent no-op: it may have been deleted between dispatch and run.
//
// There is no automatic retry. A failed record stays in status=error until
// the owner re-uploads (or, for the render stage only, regenerates).
func (o *Orchestrator) Run(ctx context.Context, recordID string) {
	rec, err := o.records.FindByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			o.logger.Info("record gone before pipeline start", "record_id", recordID)
			return
		}
		o.logger.Error("pipeline could not load record", "record_id", recordID, "error", err)
		return
	}

	if err := o.process(ctx, rec); err != nil {
		o.fail(ctx, rec, err)
	}
}

// process runs the stages in order, persisting after each. Each stage's
// input is the previous stage's persisted output, so the sequencing is
// strict: no stage starts before the prior write returned.
func (o *Orchestrator) process(ctx context.Context, rec *model.Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panic: %v", r)
		}
	}()

	rec.Status = model.StatusProcessing
	if rec, err = o.persist(ctx, rec); err != nil {
		return err
	}
	o.logger.Info("pipeline started", "record_id", rec.ID)

	originalText, err := o.transcriber.Transcribe(ctx, rec.AudioFilePath)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}
	rec.OriginalText = &originalText
	if rec, err = o.persist(ctx, rec); err != nil {
		return err
	}
	o.logger.Info("transcription done", "record_id", rec.ID, "chars", len(originalText))

	processedText, err := o.normalizer.Normalize(ctx, originalText)
	if err != nil {
		return fmt.Errorf("text cleanup failed: %w", err)
	}
	rec.ProcessedText = &processedText
	if rec, err = o.persist(ctx, rec); err != nil {
		return err
	}
	o.logger.Info("text cleanup done", "record_id", rec.ID, "chars", len(processedText))

	docPath, err := o.renderer.Render(ctx, rec.Title, processedText)
	if err != nil {
		return fmt.Errorf("document rendering failed: %w", err)
	}
	rec.DocumentFilePath = &docPath
	rec.Status = model.StatusCompleted
	if _, err = o.persist(ctx, rec); err != nil {
		return err
	}
	o.logger.Info("pipeline completed", "record_id", rec.ID, "document", docPath)

	return nil
}

// persist writes the record and folds the stored row back into the same
// struct, so the caller (and fail, which shares the pointer) always sees the
// latest persisted state.
func (o *Orchestrator) persist(ctx context.Context, rec *model.Record) (*model.Record, error) {
	updated, err := o.records.Update(ctx, rec)
	if err != nil {
		return rec, fmt.Errorf("persist record state: %w", err)
	}
	*rec = *updated
	return rec, nil
}

// fail records the terminal error state. If even that write fails there is
// nothing left to do but log: the record stays in its last persisted state.
func (o *Orchestrator) fail(ctx context.Context, rec *model.Record, cause error) {
	o.logger.Error("pipeline failed", "record_id", rec.ID, "error", cause)

	msg := cause.Error()
	rec.Status = model.StatusError
	rec.ErrorMessage = &msg
	if _, err := o.records.Update(ctx, rec); err != nil {
		o.logger.Error("could not persist pipeline failure", "record_id", rec.ID, "error", err)
	}
}
