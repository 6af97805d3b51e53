package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/clipshelf/internal/flagx"
	"github.com/dmitrijs2005/clipshelf/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify the debounce either as a
// string like "300ms" or as integer nanoseconds.
type JsonConfig struct {
	DatabasePath   string         `json:"database_path"`
	MediaDir       string         `json:"media_dir"`
	PageSize       int            `json:"page_size"`
	SearchDebounce timex.Duration `json:"search_debounce"`
	FFmpegPath     string         `json:"ffmpeg_path"`
	LogLevel       string         `json:"log_level"`
	LogFile        string         `json:"log_file"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The file is named by -c or -config on the command line; without one the
// function returns. Read or unmarshal errors panic. Keys that are absent or
// zero leave the current value in place.
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.MediaDir, jc.MediaDir)
	setString(&cfg.FFmpegPath, jc.FFmpegPath)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFile, jc.LogFile)
	if jc.PageSize > 0 {
		cfg.PageSize = jc.PageSize
	}
	if jc.SearchDebounce.Duration > 0 {
		cfg.SearchDebounce = jc.SearchDebounce.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
