package transfer

import (
	"log/slog"

	"github.com/spf13/afero"

	"castfetch/internal/finalize"
	"castfetch/internal/logging"
)

// existingSizeTolerance is how much smaller than the declared raw stream
// size a persisted file may be and still satisfy the request. Container and
// encoding overhead make the two differ slightly; an exact match would cause
// unnecessary re-downloads.
const existingSizeTolerance = 1024

// ExistingFileProbe decides whether a prior output already satisfies a
// download request.
type ExistingFileProbe struct {
	fs           afero.Fs
	skipExisting bool
	logger       *slog.Logger
}

// NewExistingFileProbe builds a probe over the OS filesystem.
func NewExistingFileProbe(skipExisting bool, logger *slog.Logger) *ExistingFileProbe {
	return NewExistingFileProbeWithFs(afero.NewOsFs(), skipExisting, logger)
}

// NewExistingFileProbeWithFs allows injecting the filesystem (used in tests).
func NewExistingFileProbeWithFs(fs afero.Fs, skipExisting bool, logger *slog.Logger) *ExistingFileProbe {
	return &ExistingFileProbe{
		fs:           fs,
		skipExisting: skipExisting,
		logger:       logging.NewComponentLogger(logger, "existence"),
	}
}

// Satisfied scans every known codec extension at basePath and reports the
// first prior output that satisfies the request. With a positive declared
// size the file must be within the size tolerance; with an unknown declared
// size any non-empty file counts. A .tmp leftover never satisfies.
func (p *ExistingFileProbe) Satisfied(basePath string, declaredSize int64) (string, bool) {
	if !p.skipExisting {
		return "", false
	}
	for _, ext := range finalize.KnownExtensions() {
		candidate := basePath + "." + ext
		info, err := p.fs.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		p.logger.Debug("existing file found",
			logging.String("path", candidate),
			logging.Int64("file_size", info.Size()),
			logging.Int64("declared_size", declaredSize),
		)
		if declaredSize > 0 {
			if info.Size() >= declaredSize-existingSizeTolerance {
				return candidate, true
			}
			continue
		}
		if info.Size() > 0 {
			return candidate, true
		}
	}
	return "", false
}
