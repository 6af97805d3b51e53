// Package media turns a picked source video into a stored clip: the file is
// copied into the media directory, a thumbnail is extracted and a VideoRecord
// describing both is built. Trimming is not performed; the crop window is
// kept on the record as information.
package media

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/clipshelf/internal/client/models"
	"github.com/dmitrijs2005/clipshelf/internal/client/validation"
	"github.com/dmitrijs2005/clipshelf/internal/common"
	"github.com/dmitrijs2005/clipshelf/internal/filex"
	"github.com/dmitrijs2005/clipshelf/internal/logging"
	"github.com/google/uuid"
)

// NewID returns a record id of the form video_<unix ms>_<8 hex>.
func NewID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("video_%d_%s", now.UnixMilli(), suffix)
}

type Option func(*Processor)

func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

func WithIDGenerator(gen func(time.Time) string) Option {
	return func(p *Processor) { p.newID = gen }
}

type Processor struct {
	dir    string
	thumbs Thumbnailer
	log    logging.Logger
	now    func() time.Time
	newID  func(time.Time) string
}

// NewProcessor stores clips under dir, creating it on first use.
func NewProcessor(dir string, thumbs Thumbnailer, log logging.Logger, opts ...Option) *Processor {
	p := &Processor{
		dir:    dir,
		thumbs: thumbs,
		log:    log.With("component", "media"),
		now:    time.Now,
		newID:  NewID,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Process validates the request, stores a copy of source and returns the
// record describing it. The record is not persisted.
func (p *Processor) Process(ctx context.Context, source string, window models.CropWindow, meta models.Metadata) (models.VideoRecord, error) {
	meta, err := validation.Metadata(meta)
	if err != nil {
		return models.VideoRecord{}, err
	}
	if err := validation.Crop(window); err != nil {
		return models.VideoRecord{}, err
	}
	if !filex.Exists(source) {
		return models.VideoRecord{}, fmt.Errorf("%w: source video %s", common.ErrNotFound, source)
	}

	dir, err := filex.EnsureDir(p.dir)
	if err != nil {
		return models.VideoRecord{}, fmt.Errorf("failed to prepare media dir: %w", err)
	}

	now := p.now().UTC()
	stamp := now.UnixMilli()
	for filex.Exists(filepath.Join(dir, videoName(stamp))) {
		stamp++
	}
	video := filepath.Join(dir, videoName(stamp))

	p.log.Info(ctx, "storing clip", "source", source, "dest", video,
		"start", window.StartTime, "end", window.EndTime)
	if err := filex.CopyFile(source, video); err != nil {
		return models.VideoRecord{}, fmt.Errorf("failed to copy video: %w", err)
	}

	thumb := filepath.Join(dir, fmt.Sprintf("thumb_%d.jpg", stamp))
	if err := p.thumbs.Thumbnail(ctx, video, window.StartTime, thumb); err != nil {
		if errors.Is(err, ErrNoThumbnailer) {
			p.log.Debug(ctx, "thumbnail skipped", "video", video)
		} else {
			p.log.Warn(ctx, "thumbnail generation failed", "video", video, "error", err)
		}
		_, _ = filex.RemoveIfExists(thumb)
		thumb = ""
	} else if !filex.Exists(thumb) {
		p.log.Warn(ctx, "thumbnailer produced no file", "video", video)
		thumb = ""
	}

	if !filex.Exists(video) {
		_, _ = filex.RemoveIfExists(thumb)
		return models.VideoRecord{}, fmt.Errorf("output video %s was not created", video)
	}

	return models.VideoRecord{
		ID:                p.newID(now),
		Name:              meta.Name,
		Description:       meta.Description,
		VideoLocation:     video,
		ThumbnailLocation: thumb,
		Duration:          window.Duration,
		CropInfo:          window.Info(),
		CreatedAt:         now,
	}, nil
}

func videoName(stamp int64) string {
	return fmt.Sprintf("cropped_video_%d.mp4", stamp)
}

// DeleteFiles removes the clip and thumbnail of r. Failures are logged only.
func DeleteFiles(ctx context.Context, log logging.Logger, r models.VideoRecord) {
	for _, path := range []string{r.VideoLocation, r.ThumbnailLocation} {
		removed, err := filex.RemoveIfExists(path)
		switch {
		case err != nil:
			log.Warn(ctx, "failed to delete clip file", "id", r.ID, "path", path, "error", err)
		case removed:
			log.Debug(ctx, "deleted clip file", "id", r.ID, "path", path)
		}
	}
}
