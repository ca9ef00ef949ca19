// Package ffprobe provides a typed wrapper around the external ffprobe
// binary for audio codec detection.
//
// This package has no castfetch-specific dependencies and could be extracted
// as a standalone library.
//
// Primary entry point:
//   - DetectCodec: executes ffprobe and returns the stream's codec name
//
// A missing binary is reported as ErrBinaryMissing so callers can degrade
// gracefully instead of failing the pipeline.
package ffprobe
