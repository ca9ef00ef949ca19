// Package progress defines the injectable progress-reporting surface for the
// download pipeline.
//
// A Reporter offers exactly two operations: channel-tagged announcements and
// scoped transfer tasks. Stages receive a Reporter explicitly instead of
// touching global display state, so console rendering stays a single-writer
// concern updated only at well-defined suspension points (after each chunk,
// at stage transitions).
package progress
