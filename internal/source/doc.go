// Package source models audio source selection as an explicit tagged plan.
//
// A Plan carries exactly one active variant: a direct bulk-download URL or
// an open encrypted content-stream session with its declared size. The
// Selector makes the choice once per episode from the partner descriptor's
// candidate URL and preview marker, so the decision is a single testable
// function instead of conditionals scattered through transfer code.
package source
