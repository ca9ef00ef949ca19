// Package textutil provides text processing utilities for filename
// sanitization and human-readable duration formatting.
//
// Episode and show names arrive from the catalog API with arbitrary unicode
// and filesystem-unsafe punctuation; SanitizeFileName normalizes and strips
// them so they are safe as path segments on every supported platform.
package textutil
