// Package config loads runtime configuration for the clipshelf CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   path of the SQLite database
//	-m string   media directory for clips and thumbnails
//	-p int      page size for listings
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the debounce, so it can be either a
// string like "300ms" or integer nanoseconds. Absent keys keep their defaults:
//
//	{
//	  "database_path": "videos.db",
//	  "media_dir": "media",
//	  "page_size": 10,
//	  "search_debounce": "300ms",
//	  "ffmpeg_path": "/usr/bin/ffmpeg",
//	  "log_level": "debug",
//	  "log_file": "clipshelf.log"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
