package transfer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"castfetch/internal/config"
	"castfetch/internal/logging"
	"castfetch/internal/progress"
	"castfetch/internal/services"
	"castfetch/internal/source"
)

// emptyReadTolerance is how many consecutive empty chunk reads are treated
// as end of stream. The transport may signal completion via a short run of
// empty reads rather than a single sentinel.
const emptyReadTolerance = 5

// Writer copies a source plan's payload into a temporary file, optionally
// throttling stream transfers to approximate real-time playback speed.
type Writer struct {
	chunkSize  int
	realTime   bool
	httpClient *http.Client
	reporter   progress.Reporter
	logger     *slog.Logger

	now   func() time.Time
	sleep func(time.Duration)
}

// NewWriter constructs the paced stream writer from application configuration.
func NewWriter(cfg *config.Config, reporter progress.Reporter, logger *slog.Logger) *Writer {
	if reporter == nil {
		reporter = progress.Noop()
	}
	return &Writer{
		chunkSize:  cfg.Download.ChunkSize,
		realTime:   cfg.Download.RealTime,
		httpClient: &http.Client{},
		reporter:   reporter,
		logger:     logging.NewComponentLogger(logger, "transfer"),
		now:        time.Now,
		sleep:      time.Sleep,
	}
}

// Download writes the complete payload to tmpPath and returns total bytes
// written. duration is the episode's playback duration, used only for
// pacing; pacing is disabled when it is zero.
func (w *Writer) Download(ctx context.Context, plan *source.Plan, tmpPath, label string, duration time.Duration) (int64, error) {
	switch plan.Kind {
	case source.KindDirectHTTP:
		return w.downloadDirect(ctx, plan.DirectURL, tmpPath, label)
	case source.KindEncryptedStream:
		return w.downloadStream(ctx, plan, tmpPath, label, duration)
	default:
		return 0, services.Wrap(services.ErrTransfer, "downloading", "select variant",
			fmt.Sprintf("unknown source plan kind %q", plan.Kind), nil)
	}
}

func (w *Writer) downloadDirect(ctx context.Context, url, tmpPath, label string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, services.Wrap(services.ErrTransfer, "downloading", "build request", url, err)
	}
	resp, err := w.httpClient.Do(req)
	if err != nil {
		return 0, services.Wrap(services.ErrTransfer, "downloading", "direct fetch", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, services.Wrap(services.ErrTransfer, "downloading", "direct fetch",
			fmt.Sprintf("unexpected status %s for %s", resp.Status, url), nil)
	}

	file, err := os.Create(tmpPath)
	if err != nil {
		return 0, services.Wrap(services.ErrTransfer, "downloading", "create temp file", tmpPath, err)
	}

	task := w.reporter.StartTask(label, resp.ContentLength)
	defer task.Close()

	written, err := io.Copy(io.MultiWriter(file, taskWriter{task}), resp.Body)
	if err != nil {
		_ = file.Close()
		return written, services.Wrap(services.ErrTransfer, "downloading", "direct copy", url, err)
	}
	if err := file.Close(); err != nil {
		return written, services.Wrap(services.ErrTransfer, "downloading", "close temp file", tmpPath, err)
	}
	return written, nil
}

func (w *Writer) downloadStream(ctx context.Context, plan *source.Plan, tmpPath, label string, duration time.Duration) (int64, error) {
	file, err := os.Create(tmpPath)
	if err != nil {
		return 0, services.Wrap(services.ErrTransfer, "downloading", "create temp file", tmpPath, err)
	}

	task := w.reporter.StartTask(label, plan.TotalSizeBytes)
	defer task.Close()

	var written int64
	start := w.now()
	emptyReads := 0
	buf := make([]byte, w.chunkSize)

	for emptyReads < emptyReadTolerance {
		if err := ctx.Err(); err != nil {
			_ = file.Close()
			return written, services.Wrap(services.ErrTransfer, "downloading", "stream copy", "canceled", err)
		}

		n, err := plan.Stream.ReadChunk(buf)
		if err != nil {
			_ = file.Close()
			return written, services.Wrap(services.ErrTransfer, "downloading", "read chunk", "", err)
		}
		if n == 0 {
			emptyReads++
			continue
		}
		emptyReads = 0

		if _, err := file.Write(buf[:n]); err != nil {
			_ = file.Close()
			return written, services.Wrap(services.ErrTransfer, "downloading", "write chunk", tmpPath, err)
		}
		written += int64(n)
		task.Advance(int64(n))

		if w.realTime && duration > 0 && plan.TotalSizeBytes > 0 {
			wanted := time.Duration(float64(written) / float64(plan.TotalSizeBytes) * float64(duration))
			if actual := w.now().Sub(start); wanted > actual {
				w.sleep(wanted - actual)
			}
		}
	}

	if err := file.Close(); err != nil {
		return written, services.Wrap(services.ErrTransfer, "downloading", "close temp file", tmpPath, err)
	}
	w.logger.Debug("stream transfer complete",
		logging.Int64("bytes", written),
		logging.Int64("declared", plan.TotalSizeBytes),
		logging.Duration("elapsed", w.now().Sub(start)),
	)
	return written, nil
}

type taskWriter struct {
	task progress.Task
}

func (t taskWriter) Write(p []byte) (int, error) {
	t.task.Advance(int64(len(p)))
	return len(p), nil
}
