package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrNoThumbnailer is returned by NopThumbnailer.
var ErrNoThumbnailer = errors.New("thumbnail generation disabled")

// Thumbnailer extracts one still frame of source, at offset seconds, into dst.
type Thumbnailer interface {
	Thumbnail(ctx context.Context, source string, offset float64, dst string) error
}

// FFmpegThumbnailer shells out to ffmpeg.
type FFmpegThumbnailer struct {
	// Path is the ffmpeg binary; empty means "ffmpeg" from PATH.
	Path string
}

func (f FFmpegThumbnailer) binary() string {
	if f.Path == "" {
		return "ffmpeg"
	}
	return f.Path
}

// Available reports whether the ffmpeg binary can be found.
func (f FFmpegThumbnailer) Available() bool {
	_, err := exec.LookPath(f.binary())
	return err == nil
}

func (f FFmpegThumbnailer) Thumbnail(ctx context.Context, source string, offset float64, dst string) error {
	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-ss", strconv.FormatFloat(offset, 'f', 3, 64),
		"-i", source,
		"-frames:v", "1",
		"-q:v", "4",
		dst,
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.binary(), args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("ffmpeg: %w: %s", err, msg)
		}
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}

// NopThumbnailer never produces a still.
type NopThumbnailer struct{}

func (NopThumbnailer) Thumbnail(context.Context, string, float64, string) error {
	return ErrNoThumbnailer
}

// Pick returns an FFmpegThumbnailer for path when ffmpeg is installed, and a
// NopThumbnailer otherwise.
func Pick(path string) Thumbnailer {
	f := FFmpegThumbnailer{Path: path}
	if f.Available() {
		return f
	}
	return NopThumbnailer{}
}
