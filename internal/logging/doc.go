// Package logging assembles the slog loggers used by nmsmc.
//
// New builds a console or JSON handler writing to stderr, optionally mirrored
// as JSON to a log file. Context helpers tag records with the run id and the
// container, archive, and document being processed, and WarnWithContext
// keeps warnings carrying an event type, a hint, and the user-facing impact.
// NewNop serves tests and wiring code that has no logger.
package logging
