package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"castfetch/internal/logging"
	"castfetch/internal/notifications"
	"castfetch/internal/progress"
	"castfetch/internal/services"
)

// EpisodeLister enumerates a show's episode identifiers.
type EpisodeLister interface {
	ShowEpisodeIDs(ctx context.Context, showID string) ([]string, error)
}

// RunReport aggregates a show run's terminal outcomes.
type RunReport struct {
	RunID      string
	ShowID     string
	Show       string
	Downloaded int
	Skipped    int
	Failed     int
	Duration   time.Duration
	Outcomes   []Outcome
}

// ShowPipeline drives the episode pipeline sequentially over every episode
// of a show. A failed episode never aborts the run; only context
// cancellation does.
type ShowPipeline struct {
	lister   EpisodeLister
	episodes *EpisodePipeline
	notifier notifications.Service
	reporter progress.Reporter
	logger   *slog.Logger
	runID    string
	now      func() time.Time
}

// NewShowPipeline wires a show runner over an existing episode pipeline.
func NewShowPipeline(lister EpisodeLister, episodes *EpisodePipeline, notifier notifications.Service, reporter progress.Reporter, logger *slog.Logger, runID string) *ShowPipeline {
	if reporter == nil {
		reporter = progress.Noop()
	}
	return &ShowPipeline{
		lister:   lister,
		episodes: episodes,
		notifier: notifier,
		reporter: reporter,
		logger:   logging.NewComponentLogger(logger, "show"),
		runID:    runID,
		now:      time.Now,
	}
}

// Run fetches the complete episode list up front, then processes each
// episode in order. The returned report covers every episode touched before
// completion or cancellation.
func (s *ShowPipeline) Run(ctx context.Context, showID string) (RunReport, error) {
	ctx = services.WithRunID(ctx, s.runID)
	report := RunReport{RunID: s.runID, ShowID: showID}
	start := s.now()

	ids, err := s.lister.ShowEpisodeIDs(ctx, showID)
	if err != nil {
		return report, err
	}

	s.logger.Info("show run started",
		logging.String(logging.FieldRunID, s.runID),
		logging.String("show_id", showID),
		logging.Int("episodes", len(ids)),
	)
	s.reporter.Announce(progress.ChannelInfo, fmt.Sprintf("Fetching %d episodes", len(ids)))
	if s.notifier != nil {
		if notifyErr := s.notifier.NotifyRunStarted(ctx, showID, len(ids)); notifyErr != nil {
			s.logger.Warn("notification failed", logging.Error(notifyErr))
		}
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		outcome := s.episodes.Run(ctx, id)
		report.Outcomes = append(report.Outcomes, outcome)
		if report.Show == "" && outcome.Show != "" {
			report.Show = outcome.Show
		}
		switch outcome.State {
		case StateDone:
			report.Downloaded++
		case StateSkipped:
			report.Skipped++
		default:
			report.Failed++
		}
	}

	report.Duration = s.now().Sub(start)
	showName := report.Show
	if showName == "" {
		showName = showID
	}

	s.logger.Info("show run completed",
		logging.String(logging.FieldRunID, s.runID),
		logging.Int("downloaded", report.Downloaded),
		logging.Int("skipped", report.Skipped),
		logging.Int("failed", report.Failed),
		logging.Duration("elapsed", report.Duration),
	)
	s.reporter.Announce(progress.ChannelInfo, fmt.Sprintf(
		"%s: %d downloaded, %d skipped, %d failed",
		showName, report.Downloaded, report.Skipped, report.Failed,
	))
	if s.notifier != nil {
		if notifyErr := s.notifier.NotifyRunCompleted(ctx, showName, report.Downloaded, report.Skipped, report.Failed, report.Duration); notifyErr != nil {
			s.logger.Warn("notification failed", logging.Error(notifyErr))
		}
	}

	return report, ctx.Err()
}
