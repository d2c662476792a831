// Package services defines shared utilities consumed by the build runner and
// the external tool clients.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, stages, and the unit being
//     processed (container, archive, document) for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent history statuses (failed vs invalid vs canceled).
//   - The Executor abstraction that makes subprocess execution of psar and
//     MBINCompiler testable.
//
// Use these helpers when wiring new tool integrations so operational
// behaviour (error handling, observability, timeouts) stays uniform.
package services
