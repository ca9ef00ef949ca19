// Package finalize renames completed temporary downloads to their detected
// codec extension.
//
// Finalization is atomic from the caller's perspective: either the
// codec-qualified destination exists as a complete file, or the pipeline has
// already failed and only the .tmp path may be partial.
package finalize
