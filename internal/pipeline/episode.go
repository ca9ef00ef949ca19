package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"castfetch/internal/catalog"
	"castfetch/internal/config"
	"castfetch/internal/fileutil"
	"castfetch/internal/finalize"
	"castfetch/internal/history"
	"castfetch/internal/logging"
	"castfetch/internal/notifications"
	"castfetch/internal/progress"
	"castfetch/internal/services"
	"castfetch/internal/source"
	"castfetch/internal/tagging"
	"castfetch/internal/textutil"
	"castfetch/internal/transfer"
)

// State identifies a step in the per-episode state machine.
type State string

const (
	StateResolving       State = "resolving"
	StateFiltering       State = "filtering"
	StateExistenceCheck  State = "existence_check"
	StateSourceResolving State = "source_resolving"
	StateDownloading     State = "downloading"
	StateFinalizing      State = "finalizing"
	StateTagging         State = "tagging"
	StateDone            State = "done"
	StateSkipped         State = "skipped"
	StateFailed          State = "failed"
)

// SkipReason explains why an episode ended in StateSkipped.
type SkipReason string

const (
	SkipReasonFilter SkipReason = "filter_match"
	SkipReasonExists SkipReason = "already_exists"
)

// Outcome is the terminal result of one episode run.
type Outcome struct {
	EpisodeID   string
	Show        string
	Episode     string
	State       State
	SkipReason  SkipReason
	FailureKind string
	FinalPath   string
	SizeBytes   int64
	Err         error
}

// MetadataResolver yields episode metadata from the catalog.
type MetadataResolver interface {
	EpisodeMetadata(ctx context.Context, episodeID string) (*catalog.EpisodeMetadata, error)
}

// SourceResolver chooses the transport for one episode.
type SourceResolver interface {
	Resolve(ctx context.Context, episodeID string) (*source.Plan, error)
}

// ExistenceProbe decides whether a prior output already satisfies a request.
type ExistenceProbe interface {
	Satisfied(basePath string, declaredSize int64) (string, bool)
}

// Downloader moves the plan's payload into a temporary file.
type Downloader interface {
	Download(ctx context.Context, plan *source.Plan, tmpPath, label string, duration time.Duration) (int64, error)
}

// Finalizer renames a completed temporary file to its codec extension.
type Finalizer interface {
	Finalize(ctx context.Context, tmpPath string) (finalize.FinalizedFile, error)
}

// Tagger stamps a finalized file with metadata and cover art.
type Tagger interface {
	Apply(ctx context.Context, path string, meta catalog.EpisodeMetadata) error
}

// EpisodePipeline drives one episode through resolve, filter, existence
// check, source selection, transfer, finalization and tagging. All
// per-episode errors terminate in an Outcome; none escape Run.
type EpisodePipeline struct {
	podcastDir   string
	filter       *regexp.Regexp
	betweenDelay time.Duration

	metadata MetadataResolver
	selector SourceResolver
	probe    ExistenceProbe
	writer   Downloader
	finalize Finalizer
	tagger   Tagger

	store    *history.Store
	notifier notifications.Service
	reporter progress.Reporter
	logger   *slog.Logger
	runID    string

	sleep func(time.Duration)
}

// NewEpisodePipeline wires the default collaborators from configuration.
// store may be nil when history is disabled.
func NewEpisodePipeline(cfg *config.Config, client *catalog.Client, store *history.Store, notifier notifications.Service, reporter progress.Reporter, logger *slog.Logger, runID string) *EpisodePipeline {
	if reporter == nil {
		reporter = progress.Noop()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	return &EpisodePipeline{
		podcastDir:   cfg.Paths.PodcastDir,
		filter:       cfg.EpisodeFilter(),
		betweenDelay: time.Duration(cfg.Download.BetweenSeconds) * time.Second,
		metadata:     client,
		selector:     source.NewSelector(client, cfg, logger),
		probe:        transfer.NewExistingFileProbe(cfg.Download.SkipExisting, logger),
		writer:       transfer.NewWriter(cfg, reporter, logger),
		finalize:     finalize.New(cfg, logger, reporter),
		tagger:       tagging.NewApplicator(cfg, logger),
		store:        store,
		notifier:     notifier,
		reporter:     reporter,
		logger:       logging.NewComponentLogger(logger, "pipeline"),
		runID:        runID,
		sleep:        time.Sleep,
	}
}

// WithCollaborators replaces individual stage collaborators. Nil arguments
// keep the current implementation. Used in tests.
func (p *EpisodePipeline) WithCollaborators(metadata MetadataResolver, selector SourceResolver, probe ExistenceProbe, writer Downloader, finalizer Finalizer, tagger Tagger) {
	if p == nil {
		return
	}
	if metadata != nil {
		p.metadata = metadata
	}
	if selector != nil {
		p.selector = selector
	}
	if probe != nil {
		p.probe = probe
	}
	if writer != nil {
		p.writer = writer
	}
	if finalizer != nil {
		p.finalize = finalizer
	}
	if tagger != nil {
		p.tagger = tagger
	}
}

// Run executes the state machine for one episode and always returns a
// terminal Outcome. The fixed inter-episode delay runs before returning so
// callers can loop without tracking request pacing themselves.
func (p *EpisodePipeline) Run(ctx context.Context, episodeID string) Outcome {
	outcome := p.run(ctx, episodeID)
	p.record(ctx, outcome)
	if p.betweenDelay > 0 && ctx.Err() == nil {
		p.sleep(p.betweenDelay)
	}
	return outcome
}

func (p *EpisodePipeline) run(ctx context.Context, episodeID string) Outcome {
	ctx = services.WithEpisodeID(ctx, episodeID)

	meta, err := p.metadata.EpisodeMetadata(ctx, episodeID)
	if err != nil {
		return p.fail(ctx, Outcome{EpisodeID: episodeID, State: StateResolving}, err)
	}

	ctx = services.WithShow(ctx, meta.Show)
	outcome := Outcome{EpisodeID: episodeID, Show: meta.Show, Episode: meta.Name}
	label := fmt.Sprintf("%s - %s", meta.Show, meta.Name)
	logger := p.logger.With(
		logging.String(logging.FieldEpisodeID, episodeID),
		logging.String(logging.FieldShow, meta.Show),
	)

	if p.filter != nil && p.filter.MatchString(meta.Name) {
		logger.Info("episode name matched filter",
			logging.String("episode", meta.Name),
			logging.String("groups", filterGroups(p.filter, meta.Name)),
		)
		p.reporter.Announce(progress.ChannelSkips, fmt.Sprintf("SKIPPING: %s (FILTER MATCH)", label))
		outcome.State = StateSkipped
		outcome.SkipReason = SkipReasonFilter
		return outcome
	}

	basePath := p.basePath(meta)
	sizeHint, err := p.store.LastKnownSize(ctx, episodeID)
	if err != nil {
		logger.Warn("size hint lookup failed", logging.Error(err))
		sizeHint = 0
	}
	if existing, ok := p.probe.Satisfied(basePath, sizeHint); ok {
		logger.Info("episode already downloaded", logging.String("path", existing))
		p.reporter.Announce(progress.ChannelSkips, fmt.Sprintf("SKIPPING: %s (EPISODE ALREADY DOWNLOADED)", label))
		outcome.State = StateSkipped
		outcome.SkipReason = SkipReasonExists
		outcome.FinalPath = existing
		return outcome
	}

	plan, err := p.selector.Resolve(ctx, episodeID)
	if err != nil {
		return p.fail(ctx, withState(outcome, StateSourceResolving), err)
	}
	defer plan.Close()

	if err := fileutil.EnsureDir(filepath.Dir(basePath)); err != nil {
		return p.fail(ctx, withState(outcome, StateDownloading),
			services.Wrap(services.ErrTransfer, "downloading", "create show directory", filepath.Dir(basePath), err))
	}

	tmpPath := basePath + ".tmp"
	written, err := p.writer.Download(ctx, plan, tmpPath, label, meta.Duration())
	if err != nil {
		return p.fail(ctx, withState(outcome, StateDownloading), err)
	}

	final, err := p.finalize.Finalize(ctx, tmpPath)
	if err != nil {
		return p.fail(ctx, withState(outcome, StateFinalizing), err)
	}
	outcome.FinalPath = final.Path
	outcome.SizeBytes = written

	if err := p.tagger.Apply(ctx, final.Path, *meta); err != nil {
		logger.Warn("tagging failed", logging.Error(err))
		p.reporter.Announce(progress.ChannelWarnings, fmt.Sprintf("TAGGING FAILED: %s: %v", label, err))
	}

	logger.Info("episode downloaded",
		logging.String("path", final.Path),
		logging.Int64("bytes", written),
	)
	p.reporter.Announce(progress.ChannelDownloads, fmt.Sprintf("Downloaded: %s", label))
	if err := p.notifier.NotifyEpisodeDownloaded(ctx, meta.Show, meta.Name, final.Path); err != nil {
		logger.Warn("notification failed", logging.Error(err))
	}

	outcome.State = StateDone
	return outcome
}

func (p *EpisodePipeline) fail(ctx context.Context, outcome Outcome, err error) Outcome {
	failedStage := outcome.State
	outcome.State = StateFailed
	outcome.FailureKind = services.FailureKind(err)
	outcome.Err = err

	label := outcome.EpisodeID
	if outcome.Show != "" || outcome.Episode != "" {
		label = fmt.Sprintf("%s - %s", outcome.Show, outcome.Episode)
	}
	p.logger.Error("episode failed",
		logging.String(logging.FieldEpisodeID, outcome.EpisodeID),
		logging.String(logging.FieldStage, string(failedStage)),
		logging.String("failure_kind", outcome.FailureKind),
		logging.Error(err),
	)
	p.reporter.Announce(progress.ChannelErrors, fmt.Sprintf("FAILED: %s: %v", label, err))
	if notifyErr := p.notifier.NotifyEpisodeFailed(ctx, outcome.Show, outcome.Episode, err); notifyErr != nil {
		p.logger.Warn("notification failed", logging.Error(notifyErr))
	}
	return outcome
}

func (p *EpisodePipeline) record(ctx context.Context, outcome Outcome) {
	rec := history.Record{
		RunID:       p.runID,
		EpisodeID:   outcome.EpisodeID,
		Show:        outcome.Show,
		Episode:     outcome.Episode,
		FailureKind: outcome.FailureKind,
		Path:        outcome.FinalPath,
		SizeBytes:   outcome.SizeBytes,
	}
	switch outcome.State {
	case StateDone:
		rec.Status = history.StatusDownloaded
	case StateSkipped:
		rec.Status = history.StatusSkipped
		rec.Detail = string(outcome.SkipReason)
	default:
		rec.Status = history.StatusFailed
		if outcome.Err != nil {
			rec.Detail = outcome.Err.Error()
		}
	}
	if _, err := p.store.RecordOutcome(ctx, rec); err != nil {
		p.logger.Warn("history record failed", logging.Error(err))
	}
}

func (p *EpisodePipeline) basePath(meta *catalog.EpisodeMetadata) string {
	show := textutil.SanitizeFileName(meta.Show)
	episode := textutil.SanitizeFileName(meta.Name)
	return filepath.Join(p.podcastDir, show, fmt.Sprintf("%s - %s", show, episode))
}

func withState(outcome Outcome, state State) Outcome {
	outcome.State = state
	return outcome
}

// filterGroups renders the filter's named capture groups for diagnostics.
func filterGroups(filter *regexp.Regexp, name string) string {
	match := filter.FindStringSubmatch(name)
	if match == nil {
		return ""
	}
	var parts []string
	for i, groupName := range filter.SubexpNames() {
		if i == 0 || groupName == "" || i >= len(match) {
			continue
		}
		parts = append(parts, groupName+"="+match[i])
	}
	return strings.Join(parts, " ")
}
