package logging

import (
	"context"
	"log/slog"

	"nmsmc/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one build run across the log, work directory, and history.
	FieldRunID = "run_id"
	// FieldStage names the orchestrator stage (extract, decompile, patch, compile, pack).
	FieldStage = "stage"
	// FieldContainer is the output pak path.
	FieldContainer = "container"
	// FieldArchive is the source archive a document is extracted from.
	FieldArchive = "archive"
	// FieldDocument is the document identifier within an archive.
	FieldDocument = "document"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to try next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 5)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if container, ok := services.ContainerFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldContainer, container))
	}
	if archive, ok := services.ArchiveFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldArchive, archive))
	}
	if document, ok := services.DocumentFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldDocument, document))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
