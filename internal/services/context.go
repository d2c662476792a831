package services

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	stageKey     contextKey = "stage"
	containerKey contextKey = "container"
	archiveKey   contextKey = "archive"
	documentKey  contextKey = "document"
)

// WithRunID annotates context with the build run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the build run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, runIDKey)
}

// WithStage annotates context with the build stage name (extract, patch, pack).
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, stageKey)
}

// WithContainer annotates context with the output archive being built.
func WithContainer(ctx context.Context, output string) context.Context {
	if output == "" {
		return ctx
	}
	return context.WithValue(ctx, containerKey, output)
}

// ContainerFromContext returns the output archive path if present.
func ContainerFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, containerKey)
}

// WithArchive annotates context with the source archive being read.
func WithArchive(ctx context.Context, source string) context.Context {
	if source == "" {
		return ctx
	}
	return context.WithValue(ctx, archiveKey, source)
}

// ArchiveFromContext returns the source archive path if present.
func ArchiveFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, archiveKey)
}

// WithDocument annotates context with the document identifier being patched.
func WithDocument(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, documentKey, id)
}

// DocumentFromContext returns the document identifier if present.
func DocumentFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, documentKey)
}

func stringValue(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
