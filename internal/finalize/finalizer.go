package finalize

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"castfetch/internal/config"
	"castfetch/internal/fileutil"
	"castfetch/internal/logging"
	"castfetch/internal/media/ffprobe"
	"castfetch/internal/progress"
)

// FinalizedFile describes the completed, codec-qualified output file.
// Ownership transfers to the tagging collaborator after finalization.
type FinalizedFile struct {
	Path      string
	Extension string
	Size      int64
}

// Finalizer renames a completed temporary download to its codec-qualified
// extension. It has no failure path for prober problems: a missing or
// failing prober degrades to the default extension with a warning.
type Finalizer struct {
	binary   string
	logLevel string
	logger   *slog.Logger
	reporter progress.Reporter

	missingWarn sync.Once
}

// New constructs the finalizer from application configuration.
func New(cfg *config.Config, logger *slog.Logger, reporter progress.Reporter) *Finalizer {
	if reporter == nil {
		reporter = progress.Noop()
	}
	return &Finalizer{
		binary:   cfg.FFprobeBinary(),
		logLevel: cfg.Tools.FFmpegLogLevel,
		logger:   logging.NewComponentLogger(logger, "finalize"),
		reporter: reporter,
	}
}

// Finalize detects the codec of the temporary file at tmpPath and renames it
// to "<base>.<ext>". Any file already at the destination is removed first;
// the new download always wins. Only a rename failure is returned as an
// error.
func (f *Finalizer) Finalize(ctx context.Context, tmpPath string) (FinalizedFile, error) {
	logger := logging.WithContext(ctx, f.logger)

	ext := fallbackExtension
	codec, err := ffprobe.DetectCodec(ctx, f.binary, f.logLevel, tmpPath)
	switch {
	case err == nil:
		ext = ExtensionFor(codec)
		logger.Debug("codec detected", logging.String("codec", codec), logging.String("extension", ext))
	case errors.Is(err, ffprobe.ErrBinaryMissing):
		f.missingWarn.Do(func() {
			f.reporter.Announce(progress.ChannelWarnings,
				"FFPROBE NOT FOUND\nSKIPPING CODEC ANALYSIS - OUTPUT ASSUMED MP3")
			logger.Warn("ffprobe unavailable, assuming mp3", logging.Error(err))
		})
	default:
		logger.Warn("codec detection failed, assuming mp3", logging.Error(err))
	}

	base := strings.TrimSuffix(tmpPath, ".tmp")
	finalPath := base + "." + ext
	if err := fileutil.ReplaceFile(tmpPath, finalPath); err != nil {
		return FinalizedFile{}, err
	}
	return FinalizedFile{
		Path:      finalPath,
		Extension: ext,
		Size:      fileutil.FileSize(finalPath),
	}, nil
}
