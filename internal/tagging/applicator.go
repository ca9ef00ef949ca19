package tagging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"castfetch/internal/catalog"
	"castfetch/internal/config"
	"castfetch/internal/fileutil"
	"castfetch/internal/logging"
	"castfetch/internal/services"
)

// podcastGenre is written into every tagged episode.
const podcastGenre = "Podcast"

type commandRunner func(ctx context.Context, name string, args ...string) error

// Applicator writes episode metadata and cover art into finalized audio
// files by re-muxing them with ffmpeg. The audio payload is never
// re-encoded.
type Applicator struct {
	binary     string
	logLevel   string
	logger     *slog.Logger
	run        commandRunner
	httpClient *http.Client
}

// NewApplicator constructs a tag applicator from application configuration.
func NewApplicator(cfg *config.Config, logger *slog.Logger) *Applicator {
	return &Applicator{
		binary:     cfg.FFmpegBinary(),
		logLevel:   cfg.Tools.FFmpegLogLevel,
		logger:     logging.NewComponentLogger(logger, "tagging"),
		run:        defaultCommandRunner,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (a *Applicator) WithCommandRunner(r commandRunner) {
	if a != nil && r != nil {
		a.run = r
	}
}

// WithHTTPClient allows injecting the client used for cover art fetches.
func (a *Applicator) WithHTTPClient(client *http.Client) {
	if a != nil && client != nil {
		a.httpClient = client
	}
}

// Apply writes metadata tags and, when the container supports it, embedded
// cover art into the file at path. The file is replaced atomically; on
// failure the original is left untouched.
func (a *Applicator) Apply(ctx context.Context, path string, meta catalog.EpisodeMetadata) error {
	if strings.TrimSpace(path) == "" {
		return services.Wrap(services.ErrConfiguration, "tagging", "apply tags", "empty target path", nil)
	}
	if _, err := os.Stat(path); err != nil {
		return services.Wrap(services.ErrTransfer, "tagging", "apply tags", path, err)
	}

	if err := a.applyTags(ctx, path, meta); err != nil {
		return err
	}
	if meta.ImageURL == "" {
		return nil
	}
	return a.applyThumbnail(ctx, path, meta.ImageURL)
}

func (a *Applicator) applyTags(ctx context.Context, path string, meta catalog.EpisodeMetadata) error {
	tmpPath := tempSibling(path, ".tag")
	defer os.Remove(tmpPath)

	args := []string{
		"-y", "-hide_banner", "-loglevel", a.logLevel,
		"-i", path,
		"-map", "0",
		"-c", "copy",
	}
	for key, value := range metadataEntries(meta) {
		if value == "" {
			continue
		}
		args = append(args, "-metadata", key+"="+value)
	}
	args = append(args, tmpPath)

	a.logger.Debug("writing metadata tags",
		logging.String("path", path),
		logging.String("title", meta.Name),
	)
	if err := a.run(ctx, a.binary, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "tagging", "write tags", path, err)
	}
	if err := fileutil.ReplaceFile(tmpPath, path); err != nil {
		return services.Wrap(services.ErrTransfer, "tagging", "replace tagged file", path, err)
	}
	return nil
}

func (a *Applicator) applyThumbnail(ctx context.Context, path, imageURL string) error {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if !supportsEmbeddedArt(ext) {
		a.logger.Debug("container does not support embedded art",
			logging.String("path", path),
			logging.String("extension", ext),
		)
		return nil
	}

	imagePath, err := a.fetchImage(ctx, imageURL)
	if err != nil {
		return err
	}
	defer os.Remove(imagePath)

	tmpPath := tempSibling(path, ".art")
	defer os.Remove(tmpPath)

	args := []string{
		"-y", "-hide_banner", "-loglevel", a.logLevel,
		"-i", path,
		"-i", imagePath,
		"-map", "0", "-map", "1",
		"-c", "copy",
		"-disposition:v", "attached_pic",
		tmpPath,
	}
	if err := a.run(ctx, a.binary, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "tagging", "embed cover art", path, err)
	}
	if err := fileutil.ReplaceFile(tmpPath, path); err != nil {
		return services.Wrap(services.ErrTransfer, "tagging", "replace tagged file", path, err)
	}
	return nil
}

func (a *Applicator) fetchImage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", services.Wrap(services.ErrTransfer, "tagging", "fetch cover art", url, err)
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransfer, "tagging", "fetch cover art", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrTransfer, "tagging", "fetch cover art",
			fmt.Sprintf("unexpected status %s for %s", resp.Status, url), nil)
	}

	file, err := os.CreateTemp("", "castfetch-cover-*.jpg")
	if err != nil {
		return "", services.Wrap(services.ErrTransfer, "tagging", "fetch cover art", "", err)
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		_ = file.Close()
		_ = os.Remove(file.Name())
		return "", services.Wrap(services.ErrTransfer, "tagging", "fetch cover art", url, err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(file.Name())
		return "", services.Wrap(services.ErrTransfer, "tagging", "fetch cover art", url, err)
	}
	return file.Name(), nil
}

func metadataEntries(meta catalog.EpisodeMetadata) map[string]string {
	entries := map[string]string{
		"title":  meta.Name,
		"album":  meta.Album,
		"artist": strings.Join(meta.Artists, ", "),
		"genre":  podcastGenre,
	}
	if meta.Album == "" {
		entries["album"] = meta.Show
	}
	if entries["artist"] == "" {
		entries["artist"] = meta.Show
	}
	if meta.Year != "" {
		entries["date"] = meta.Year
	}
	if meta.Description != "" {
		entries["comment"] = meta.Description
	}
	return entries
}

// supportsEmbeddedArt reports whether ffmpeg can attach a picture stream to
// the container without re-encoding.
func supportsEmbeddedArt(ext string) bool {
	switch ext {
	case "mp3", "m4a":
		return true
	default:
		return false
	}
}

func tempSibling(path, marker string) string {
	dir := filepath.Dir(path)
	return filepath.Join(dir, "."+filepath.Base(path)+marker+".tmp")
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if len(output) > 0 {
			return fmt.Errorf("%s failed: %w: %s", name, err, strings.TrimSpace(string(output)))
		}
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}
