// Package services defines shared utilities consumed by the episode pipeline
// stages and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp episode IDs, show names, stage names, and run
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify per-episode
//     failures into history outcomes (metadata, source, transfer).
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
