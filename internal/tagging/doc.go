// Package tagging stamps downloaded episodes with metadata and cover art.
//
// All writes go through ffmpeg stream copies so the audio payload is never
// re-encoded, and each rewrite lands in a hidden sibling file that replaces
// the original only after the tool exits cleanly. Tagging failures are
// surfaced to callers as warnings material, not pipeline failures.
package tagging
