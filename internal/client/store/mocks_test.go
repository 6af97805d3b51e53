package store

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrijs2005/clipshelf/internal/client/models"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) Initialize(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *RepoMock) GetAll(ctx context.Context) ([]models.VideoRecord, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]models.VideoRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) GetByID(ctx context.Context, id string) (*models.VideoRecord, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.VideoRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) Insert(ctx context.Context, r models.VideoRecord) error {
	return m.Called(ctx, r).Error(0)
}

func (m *RepoMock) InsertBatch(ctx context.Context, rs []models.VideoRecord) error {
	return m.Called(ctx, rs).Error(0)
}

func (m *RepoMock) Update(ctx context.Context, id string, p models.Patch) (time.Time, error) {
	args := m.Called(ctx, id, p)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *RepoMock) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *RepoMock) DeleteBatch(ctx context.Context, ids []string) error {
	return m.Called(ctx, ids).Error(0)
}

func (m *RepoMock) Search(ctx context.Context, q string) ([]models.VideoRecord, error) {
	args := m.Called(ctx, q)
	if v := args.Get(0); v != nil {
		return v.([]models.VideoRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) GetByDateRange(ctx context.Context, from, to time.Time) ([]models.VideoRecord, error) {
	args := m.Called(ctx, from, to)
	if v := args.Get(0); v != nil {
		return v.([]models.VideoRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) GetPage(ctx context.Context, limit, offset int) (models.Page, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).(models.Page), args.Error(1)
}

func (m *RepoMock) GetStats(ctx context.Context) (models.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Stats), args.Error(1)
}

func (m *RepoMock) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *RepoMock) HealthCheck(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *RepoMock) Close() error {
	return m.Called().Error(0)
}
