package videos

import (
	"context"
	"time"

	"github.com/dmitrijs2005/clipshelf/internal/client/models"
)

// Repository describes durable CRUD and query operations for VideoRecord.
// Listings are ordered by CreatedAt, newest first.
type Repository interface {
	// Initialize creates the schema if absent. Safe to call any number of times.
	Initialize(ctx context.Context) error

	GetAll(ctx context.Context) ([]models.VideoRecord, error)

	// GetByID returns (nil, nil) when id is unknown.
	GetByID(ctx context.Context, id string) (*models.VideoRecord, error)

	// Insert fails with common.ErrAlreadyExists when the id is taken.
	Insert(ctx context.Context, r models.VideoRecord) error

	// InsertBatch inserts all records or none.
	InsertBatch(ctx context.Context, rs []models.VideoRecord) error

	// Update applies the non-nil patch fields, stamps updated_at and returns
	// the stamp. Unknown ids fail with common.ErrNotFound.
	Update(ctx context.Context, id string, p models.Patch) (time.Time, error)

	// Delete removes id; unknown ids are a no-op.
	Delete(ctx context.Context, id string) error

	// DeleteBatch removes all ids or none.
	DeleteBatch(ctx context.Context, ids []string) error

	// Search matches q case-insensitively against name or description.
	Search(ctx context.Context, q string) ([]models.VideoRecord, error)

	// GetByDateRange returns records created within [from, to].
	GetByDateRange(ctx context.Context, from, to time.Time) ([]models.VideoRecord, error)

	GetPage(ctx context.Context, limit, offset int) (models.Page, error)

	GetStats(ctx context.Context) (models.Stats, error)

	// Clear removes every record.
	Clear(ctx context.Context) error

	// HealthCheck reports whether a trivial query round-trips.
	HealthCheck(ctx context.Context) bool

	Close() error
}
