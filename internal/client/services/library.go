package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/clipshelf/internal/client/media"
	"github.com/dmitrijs2005/clipshelf/internal/client/models"
	"github.com/dmitrijs2005/clipshelf/internal/client/repositories/videos"
	"github.com/dmitrijs2005/clipshelf/internal/client/store"
	"github.com/dmitrijs2005/clipshelf/internal/common"
	"github.com/dmitrijs2005/clipshelf/internal/logging"
)

// CaptureRequest describes a picked source video and what to keep of it.
type CaptureRequest struct {
	Source   string
	Window   models.CropWindow
	Metadata models.Metadata
}

// Processor produces a stored clip and its record from a source video.
type Processor interface {
	Process(ctx context.Context, source string, window models.CropWindow, meta models.Metadata) (models.VideoRecord, error)
}

type LibraryService interface {
	Capture(ctx context.Context, req CaptureRequest) (models.VideoRecord, error)
	Delete(ctx context.Context, ids ...string) error
	Page(ctx context.Context, n int) (models.Page, error)
	Stats(ctx context.Context) (models.Stats, error)
	Since(ctx context.Context, d time.Duration) ([]models.VideoRecord, error)
	Seed(ctx context.Context, path string) (int, error)
	Healthy(ctx context.Context) bool
}

type libraryService struct {
	store     *store.Store
	repo      videos.Repository
	processor Processor
	log       logging.Logger
	pageSize  int
	now       func() time.Time
	newID     func(time.Time) string
}

func NewLibraryService(st *store.Store, repo videos.Repository, processor Processor, log logging.Logger, pageSize int) LibraryService {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &libraryService{
		store:     st,
		repo:      repo,
		processor: processor,
		log:       log.With("component", "library"),
		pageSize:  pageSize,
		now:       time.Now,
		newID:     media.NewID,
	}
}

// Capture stores the clip described by req and adds its record to the
// library. Files produced for a record that could not be saved are removed.
func (s *libraryService) Capture(ctx context.Context, req CaptureRequest) (models.VideoRecord, error) {
	r, err := s.processor.Process(ctx, req.Source, req.Window, req.Metadata)
	if err != nil {
		return models.VideoRecord{}, fmt.Errorf("failed to process video: %w", err)
	}

	if err := s.store.Add(ctx, r); err != nil {
		media.DeleteFiles(ctx, s.log, r)
		return models.VideoRecord{}, fmt.Errorf("failed to save video: %w", err)
	}

	s.log.Info(ctx, "clip captured", "id", r.ID, "name", r.Name)
	return r, nil
}

// Delete removes the records with ids and then their files.
func (s *libraryService) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	victims := make([]models.VideoRecord, 0, len(ids))
	for _, id := range ids {
		if r, ok := s.store.FindByID(id); ok {
			victims = append(victims, r)
			continue
		}
		r, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to look up video: %w", err)
		}
		if r != nil {
			victims = append(victims, *r)
		}
	}

	var err error
	if len(ids) == 1 {
		err = s.store.Remove(ctx, ids[0])
	} else {
		err = s.store.RemoveMany(ctx, ids)
	}
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}

	for _, r := range victims {
		media.DeleteFiles(ctx, s.log, r)
	}
	return nil
}

// Page returns page n (starting at 1) of the newest-first listing.
func (s *libraryService) Page(ctx context.Context, n int) (models.Page, error) {
	if n < 1 {
		return models.Page{}, fmt.Errorf("%w: page %d", common.ErrInvalidArgument, n)
	}
	return s.repo.GetPage(ctx, s.pageSize, (n-1)*s.pageSize)
}

func (s *libraryService) Stats(ctx context.Context) (models.Stats, error) {
	return s.repo.GetStats(ctx)
}

// Since lists records created within the last d.
func (s *libraryService) Since(ctx context.Context, d time.Duration) ([]models.VideoRecord, error) {
	if d <= 0 {
		return nil, fmt.Errorf("%w: window %s", common.ErrInvalidArgument, d)
	}
	to := s.now()
	return s.repo.GetByDateRange(ctx, to.Add(-d), to)
}

func (s *libraryService) Healthy(ctx context.Context) bool {
	return s.repo.HealthCheck(ctx)
}

type seedRecord struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	VideoURI     string           `json:"videoUri"`
	ThumbnailURI string           `json:"thumbnailUri"`
	Duration     float64          `json:"duration"`
	CreatedAt    time.Time        `json:"createdAt"`
	CropInfo     *models.CropInfo `json:"cropInfo"`
}

// Seed imports a JSON array of records from path in one batch and returns how
// many were added. Missing ids and creation times are generated.
func (s *libraryService) Seed(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var in []seedRecord
	if err := json.Unmarshal(data, &in); err != nil {
		return 0, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if len(in) == 0 {
		return 0, errors.New("seed file holds no records")
	}

	now := s.now().UTC()
	recs := make([]models.VideoRecord, 0, len(in))
	for i, sr := range in {
		created := sr.CreatedAt
		if created.IsZero() {
			created = now.Add(time.Duration(i) * time.Millisecond)
		}
		id := sr.ID
		if id == "" {
			id = s.newID(created)
		}
		recs = append(recs, models.VideoRecord{
			ID:                id,
			Name:              sr.Name,
			Description:       sr.Description,
			VideoLocation:     sr.VideoURI,
			ThumbnailLocation: sr.ThumbnailURI,
			Duration:          sr.Duration,
			CropInfo:          sr.CropInfo,
			CreatedAt:         created.UTC(),
		})
	}

	if err := s.store.AddMany(ctx, recs); err != nil {
		return 0, fmt.Errorf("failed to seed library: %w", err)
	}
	return len(recs), nil
}
