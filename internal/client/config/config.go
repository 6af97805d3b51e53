package config

import "time"

// Config holds runtime settings for the clipshelf CLI.
//
// Fields:
//   - DatabasePath: SQLite file holding the library (":memory:" for a scratch run).
//   - MediaDir: where captured clips and thumbnails are stored.
//   - PageSize: records per page for listings.
//   - SearchDebounce: pause after the last keystroke before a search runs.
//   - FFmpegPath: ffmpeg binary used for thumbnails; empty means PATH lookup.
//   - LogLevel, LogFile: verbosity and optional rotating log file.
type Config struct {
	DatabasePath   string
	MediaDir       string
	PageSize       int
	SearchDebounce time.Duration
	FFmpegPath     string
	LogLevel       string
	LogFile        string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "videos.db"
	c.MediaDir = "media"
	c.PageSize = 10
	c.SearchDebounce = 300 * time.Millisecond
	c.FFmpegPath = ""
	c.LogLevel = "info"
	c.LogFile = ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
