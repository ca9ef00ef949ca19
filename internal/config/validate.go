package config

import (
	"errors"
	"fmt"
	"strings"
)

var knownQualities = map[string]struct{}{
	"auto":      {},
	"normal":    {},
	"high":      {},
	"very_high": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.PodcastDir) == "" {
		return errors.New("paths.podcast_dir must be set")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.RequestTimeout <= 0 {
		return errors.New("catalog.request_timeout must be positive (seconds)")
	}
	if _, ok := knownQualities[c.Catalog.Quality]; !ok {
		return fmt.Errorf("catalog.quality: unsupported value %q (auto, normal, high, very_high)", c.Catalog.Quality)
	}
	return nil
}

func (c *Config) validateDownload() error {
	if c.Download.ChunkSize <= 0 {
		return errors.New("download.chunk_size must be positive (bytes)")
	}
	if c.Download.BetweenSeconds < 0 {
		return errors.New("download.between_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (console, json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q (debug, info, warn, error)", c.Logging.Level)
	}
	return nil
}
