package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"castfetch/internal/catalog"
	"castfetch/internal/config"
	"castfetch/internal/history"
	"castfetch/internal/logging"
	"castfetch/internal/notifications"
	"castfetch/internal/pipeline"
	"castfetch/internal/progress"
)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolvedPath, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolvedPath
		c.configExists = exists
	})
	return c.config, c.configErr
}

// downloadRuntime bundles the collaborators a download command needs.
type downloadRuntime struct {
	cfg      *config.Config
	logger   *slog.Logger
	reporter progress.Reporter
	client   *catalog.Client
	store    *history.Store
	notifier notifications.Service
	runID    string
}

func (r *downloadRuntime) episodePipeline() *pipeline.EpisodePipeline {
	return pipeline.NewEpisodePipeline(r.cfg, r.client, r.store, r.notifier, r.reporter, r.logger, r.runID)
}

// withRuntime builds the shared download runtime, holds the single-run lock
// for the duration of fn and tears everything down afterwards. The context
// passed to fn is canceled on SIGINT or SIGTERM.
func (c *commandContext) withRuntime(fn func(ctx context.Context, rt *downloadRuntime) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	lock := flock.New(filepath.Join(cfg.Paths.StateDir, "castfetch.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another castfetch run is already active (lock: %s)", lock.Path())
	}
	defer func() {
		_ = lock.Unlock()
	}()

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(cfg)
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		defer func() {
			_ = store.Close()
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt := &downloadRuntime{
		cfg:      cfg,
		logger:   logger,
		reporter: progress.NewConsole(progress.ConsoleOptions{DisableBars: cfg.Download.DisableProgress}),
		client:   catalog.New(cfg, logger),
		store:    store,
		notifier: notifications.NewService(cfg),
		runID:    uuid.NewString(),
	}
	return fn(ctx, rt)
}
