// Package catalog implements the network collaborator for the download
// pipeline: episode metadata resolution, show episode enumeration, the
// partner descriptor carrying candidate direct URLs, and authenticated
// content-stream sessions.
//
// Wire formats are internal to this package; the rest of the pipeline only
// sees normalized EpisodeMetadata, PartnerDescriptor, and ContentStream
// values.
package catalog
