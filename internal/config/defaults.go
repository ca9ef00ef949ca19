package config

const (
	defaultPodcastDir     = "~/podcasts"
	defaultStateDir       = "~/.local/share/castfetch"
	defaultLogDir         = "~/.local/share/castfetch/logs"
	defaultCatalogBaseURL = "https://api.spclient.example/v1"
	defaultPartnerURL     = "https://partner.spclient.example/pathfinder/v1/query"
	defaultQuality        = "high"
	defaultRequestTimeout = 30
	defaultChunkSize      = 50000
	defaultBetweenSeconds = 1
	defaultFFmpegLogLevel = "error"
	defaultNtfyTimeout    = 10
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// defaultAnonymousHosts lists delivery hosts whose URLs are previews rather
// than genuine audio assets; a candidate direct URL on one of these hosts
// forces the authenticated stream path.
var defaultAnonymousHosts = []string{"anon-podcast.scdn.co"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			PodcastDir: defaultPodcastDir,
			StateDir:   defaultStateDir,
			LogDir:     defaultLogDir,
		},
		Catalog: Catalog{
			BaseURL:        defaultCatalogBaseURL,
			PartnerURL:     defaultPartnerURL,
			Quality:        defaultQuality,
			RequestTimeout: defaultRequestTimeout,
			AnonymousHosts: append([]string(nil), defaultAnonymousHosts...),
		},
		Download: Download{
			ChunkSize:      defaultChunkSize,
			SkipExisting:   true,
			BetweenSeconds: defaultBetweenSeconds,
		},
		Tools: Tools{
			FFmpeg:         "ffmpeg",
			FFprobe:        "ffprobe",
			FFmpegLogLevel: defaultFFmpegLogLevel,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
