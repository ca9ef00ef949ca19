// Package pipeline sequences episode acquisition: metadata resolution, name
// filtering, existence checking, source selection, paced transfer,
// finalization and tagging.
//
// Episodes run strictly sequentially. Every per-episode error is contained
// at the episode boundary and converted to a terminal Outcome; a failed
// episode never aborts the show run. Context cancellation is the single
// exemption from that containment.
package pipeline
