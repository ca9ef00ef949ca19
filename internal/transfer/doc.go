// Package transfer owns the byte-moving half of the pipeline: deciding
// whether a prior output already satisfies a request, and streaming a source
// plan's payload into a temporary file.
//
// Real-time pacing is advisory throttling of the producer side only: it
// suspends the single pipeline worker between chunks and never drops or
// reorders bytes, so disabling it yields identical output at full bandwidth.
package transfer
