package ffprobe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrBinaryMissing reports that no ffprobe executable could be located. The
// pipeline treats this as recoverable: codec detection degrades to an assumed
// default extension instead of failing the episode.
var ErrBinaryMissing = errors.New("ffprobe binary not found")

// DetectCodec executes ffprobe against the provided path and returns the
// first audio stream's codec name.
func DetectCodec(ctx context.Context, binary, logLevel, path string) (string, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("ffprobe detect: empty path")
	}
	logLevel = strings.TrimSpace(logLevel)
	if logLevel == "" {
		logLevel = "error"
	}

	if _, err := exec.LookPath(binary); err != nil {
		return "", fmt.Errorf("%w: %q", ErrBinaryMissing, binary)
	}

	cmd := exec.CommandContext(ctx, binary,
		"-hide_banner",
		"-loglevel", logLevel,
		"-show_entries", "stream=codec_name",
		"-of", "default=noprint_wrappers=1",
		"--", path,
	)
	output, err := cmd.Output()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if exitErr := new(exec.ExitError); errors.As(err, &exitErr) {
			detail = strings.TrimSpace(string(exitErr.Stderr))
		}
		return "", fmt.Errorf("ffprobe detect: %w: %s", err, detail)
	}

	codec, err := parseCodecName(string(output))
	if err != nil {
		return "", fmt.Errorf("ffprobe detect: %w", err)
	}
	return codec, nil
}

// parseCodecName extracts the value field of the first codec_name line.
func parseCodecName(output string) (string, error) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found || strings.TrimSpace(key) != "codec_name" {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			break
		}
		return value, nil
	}
	return "", errors.New("no codec_name in output")
}
