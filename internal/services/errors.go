package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMetadataUnavailable marks episodes whose catalog metadata could not
	// be fetched or parsed.
	ErrMetadataUnavailable = errors.New("metadata unavailable")
	// ErrSourceUnavailable marks episodes for which no playable audio source
	// could be resolved.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrTransfer marks network or IO failures mid-download.
	ErrTransfer = errors.New("transfer error")
	// ErrExternalTool marks failures of external binaries (ffprobe, ffmpeg).
	ErrExternalTool = errors.New("external tool error")
	// ErrConfiguration marks unusable configuration values.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransient marks failures with no more specific classification.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later outcome classification. The marker
// should be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureKind maps a pipeline error to the short outcome label persisted in
// the download history and surfaced in skip/failure announcements.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, ErrMetadataUnavailable):
		return "metadata"
	case errors.Is(err, ErrSourceUnavailable):
		return "source"
	case errors.Is(err, ErrTransfer):
		return "transfer"
	case errors.Is(err, ErrExternalTool):
		return "tool"
	case errors.Is(err, ErrConfiguration):
		return "config"
	default:
		return "error"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
