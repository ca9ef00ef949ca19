// Package logging assembles structured slog loggers and formatting helpers
// used across castfetch.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so pipeline code can automatically tag
// log lines with episode IDs, show names, stages, and run IDs. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
package logging
