// Package history records the outcome of every episode a run touches in a
// SQLite database under the state directory.
//
// Beyond reporting, the store doubles as the source of size hints: the byte
// count recorded for a past download lets the existence probe judge whether
// a file on disk is complete before any network call is made.
package history
