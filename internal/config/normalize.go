package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeCatalog(); err != nil {
		return err
	}
	if err := c.normalizeDownload(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.PodcastDir, err = expandPath(c.Paths.PodcastDir); err != nil {
		return fmt.Errorf("paths.podcast_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCatalog() error {
	if c.Catalog.Token == "" {
		if value, ok := os.LookupEnv("CASTFETCH_TOKEN"); ok {
			c.Catalog.Token = value
		}
	}
	c.Catalog.BaseURL = strings.TrimRight(strings.TrimSpace(c.Catalog.BaseURL), "/")
	if c.Catalog.BaseURL == "" {
		c.Catalog.BaseURL = defaultCatalogBaseURL
	}
	c.Catalog.PartnerURL = strings.TrimSpace(c.Catalog.PartnerURL)
	if c.Catalog.PartnerURL == "" {
		c.Catalog.PartnerURL = defaultPartnerURL
	}
	c.Catalog.Quality = strings.ToLower(strings.TrimSpace(c.Catalog.Quality))
	if c.Catalog.Quality == "" {
		c.Catalog.Quality = defaultQuality
	}
	hosts := make([]string, 0, len(c.Catalog.AnonymousHosts))
	for _, host := range c.Catalog.AnonymousHosts {
		if host = strings.ToLower(strings.TrimSpace(host)); host != "" {
			hosts = append(hosts, host)
		}
	}
	if len(hosts) == 0 {
		hosts = append(hosts, defaultAnonymousHosts...)
	}
	c.Catalog.AnonymousHosts = hosts
	return nil
}

func (c *Config) normalizeDownload() error {
	if c.Download.ChunkSize == 0 {
		c.Download.ChunkSize = defaultChunkSize
	}
	filter := strings.TrimSpace(c.Download.EpisodeFilter)
	c.Download.EpisodeFilter = filter
	if filter != "" {
		compiled, err := regexp.Compile(filter)
		if err != nil {
			return fmt.Errorf("download.episode_filter: %w", err)
		}
		c.episodeFilter = compiled
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	c.Tools.FFmpegLogLevel = strings.ToLower(strings.TrimSpace(c.Tools.FFmpegLogLevel))
	if c.Tools.FFmpegLogLevel == "" {
		c.Tools.FFmpegLogLevel = defaultFFmpegLogLevel
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
