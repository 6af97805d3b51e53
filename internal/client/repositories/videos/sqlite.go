package videos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/clipshelf/internal/client/migrations"
	"github.com/dmitrijs2005/clipshelf/internal/client/models"
	"github.com/dmitrijs2005/clipshelf/internal/common"
	"github.com/dmitrijs2005/clipshelf/internal/dbx"
	"github.com/dmitrijs2005/clipshelf/internal/logging"
	"github.com/jmoiron/sqlx"
)

const selectColumns = `id, name, description, video_uri, thumbnail_uri, duration,
	crop_start_time, crop_end_time, crop_duration, created_at, updated_at`

const insertQuery = `INSERT INTO videos (id, name, description, video_uri, thumbnail_uri, duration,
		crop_start_time, crop_end_time, crop_duration, created_at, updated_at)
	VALUES (:id, :name, :description, :video_uri, :thumbnail_uri, :duration,
		:crop_start_time, :crop_end_time, :crop_duration, :created_at, :updated_at)`

// newestFirst breaks created_at ties by insertion order.
const newestFirst = ` ORDER BY created_at DESC, rowid DESC`

// videoRow mirrors one row of the videos table.
type videoRow struct {
	ID           string          `db:"id"`
	Name         string          `db:"name"`
	Description  string          `db:"description"`
	VideoURI     string          `db:"video_uri"`
	ThumbnailURI sql.NullString  `db:"thumbnail_uri"`
	Duration     float64         `db:"duration"`
	CropStart    sql.NullFloat64 `db:"crop_start_time"`
	CropEnd      sql.NullFloat64 `db:"crop_end_time"`
	CropDuration sql.NullFloat64 `db:"crop_duration"`
	CreatedAt    string          `db:"created_at"`
	UpdatedAt    sql.NullString  `db:"updated_at"`
}

// Option configures a SQLiteRepository.
type Option func(*SQLiteRepository)

// WithClock overrides the time source used for updated_at stamps and for
// records inserted without CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(r *SQLiteRepository) { r.now = now }
}

// SQLiteRepository implements Repository on a sqlx handle over SQLite.
type SQLiteRepository struct {
	db  *sqlx.DB
	log logging.Logger
	now func() time.Time

	mu          sync.Mutex
	initialized bool
}

var _ Repository = (*SQLiteRepository)(nil)

// NewSQLiteRepository returns a repository bound to db. The schema is applied
// lazily on first use.
func NewSQLiteRepository(db *sqlx.DB, log logging.Logger, opts ...Option) *SQLiteRepository {
	r := &SQLiteRepository{
		db:  db,
		log: log.With("component", "videos"),
		now: time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Initialize applies pending migrations once per repository.
func (r *SQLiteRepository) Initialize(ctx context.Context) error {
	start := time.Now()
	return r.observe(ctx, "initialize", start, r.ensure(ctx))
}

func (r *SQLiteRepository) ensure(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return nil
	}
	if err := migrations.Up(ctx, r.db.DB); err != nil {
		return err
	}
	r.initialized = true
	return nil
}

// observe logs the outcome of op and wraps a failure into *PersistenceError.
func (r *SQLiteRepository) observe(ctx context.Context, op string, start time.Time, err error) error {
	elapsed := time.Since(start)
	if err != nil {
		r.log.Error(ctx, "video operation failed", "op", op, "elapsed", elapsed, "error", err)
		return &PersistenceError{Op: op, Err: err}
	}
	r.log.Debug(ctx, "video operation done", "op", op, "elapsed", elapsed)
	return nil
}

func (r *SQLiteRepository) selectRecords(ctx context.Context, q dbx.DBTX, query string, args ...any) ([]models.VideoRecord, error) {
	var rows []videoRow
	if err := q.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	result := make([]models.VideoRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, nil
}

// GetAll returns every record, newest first.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.VideoRecord, error) {
	start := time.Now()
	if err := r.ensure(ctx); err != nil {
		return nil, r.observe(ctx, "get all", start, err)
	}

	list, err := r.selectRecords(ctx, r.db, `SELECT `+selectColumns+` FROM videos`+newestFirst)
	if err != nil {
		return nil, r.observe(ctx, "get all", start, err)
	}
	return list, r.observe(ctx, "get all", start, nil)
}

// GetByID returns the record with id, or nil when there is none.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.VideoRecord, error) {
	start := time.Now()
	if err := r.ensure(ctx); err != nil {
		return nil, r.observe(ctx, "get", start, err)
	}

	var row videoRow
	err := r.db.GetContext(ctx, &row, `SELECT `+selectColumns+` FROM videos WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.observe(ctx, "get", start, nil)
	}
	if err != nil {
		return nil, r.observe(ctx, "get", start, err)
	}

	rec, err := row.record()
	if err != nil {
		return nil, r.observe(ctx, "get", start, err)
	}
	return &rec, r.observe(ctx, "get", start, nil)
}

// Insert stores a new record.
func (r *SQLiteRepository) Insert(ctx context.Context, rec models.VideoRecord) error {
	start := time.Now()
	if err := r.ensure(ctx); err != nil {
		return r.observe(ctx, "insert", start, err)
	}

	_, err := r.db.NamedExecContext(ctx, insertQuery, r.toRow(rec))
	return r.observe(ctx, "insert", start, classify(err))
}

// InsertBatch stores all records in one transaction.
func (r *SQLiteRepository) InsertBatch(ctx context.Context, recs []models.VideoRecord) error {
	start := time.Now()
	if len(recs) == 0 {
		return nil
	}
	if err := r.ensure(ctx); err != nil {
		return r.observe(ctx, "insert batch", start, err)
	}

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		stmt, err := tx.PrepareNamedContext(ctx, insertQuery)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range recs {
			if _, err := stmt.ExecContext(ctx, r.toRow(rec)); err != nil {
				return fmt.Errorf("record %s: %w", rec.ID, classify(err))
			}
		}
		return nil
	})
	return r.observe(ctx, "insert batch", start, err)
}

// Update applies the non-nil fields of p to the record with id and stamps
// updated_at. The stamp is returned so callers can mirror it.
func (r *SQLiteRepository) Update(ctx context.Context, id string, p models.Patch) (time.Time, error) {
	start := time.Now()
	if err := r.ensure(ctx); err != nil {
		return time.Time{}, r.observe(ctx, "update", start, err)
	}

	stamp := r.stamp()

	var (
		sets []string
		args []any
	)
	if p.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *p.Name)
	}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Description)
	}
	if p.ThumbnailLocation != nil {
		sets = append(sets, "thumbnail_uri = ?")
		args = append(args, nullString(*p.ThumbnailLocation))
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, stamp.Format(models.TimeLayout), id)

	query := `UPDATE videos SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return time.Time{}, r.observe(ctx, "update", start, err)
	}

	ra, err := res.RowsAffected()
	if err != nil {
		return time.Time{}, r.observe(ctx, "update", start, fmt.Errorf("failed to get rows affected: %w", err))
	}
	if ra == 0 {
		return time.Time{}, r.observe(ctx, "update", start, fmt.Errorf("%w: %s", common.ErrNotFound, id))
	}

	return stamp, r.observe(ctx, "update", start, nil)
}

// Delete removes the record with id. Unknown ids are ignored.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	if err := r.ensure(ctx); err != nil {
		return r.observe(ctx, "delete", start, err)
	}

	_, err := r.db.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id)
	return r.observe(ctx, "delete", start, err)
}

// DeleteBatch removes every id in one transaction.
func (r *SQLiteRepository) DeleteBatch(ctx context.Context, ids []string) error {
	start := time.Now()
	if len(ids) == 0 {
		return nil
	}
	if err := r.ensure(ctx); err != nil {
		return r.observe(ctx, "delete batch", start, err)
	}

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		stmt, err := tx.PreparexContext(ctx, `DELETE FROM videos WHERE id = ?`)
		if err != nil {
			return fmt.Errorf("failed to prepare delete: %w", err)
		}
		defer stmt.Close()

		for _, id := range ids {
			if _, err := stmt.ExecContext(ctx, id); err != nil {
				return fmt.Errorf("record %s: %w", id, err)
			}
		}
		return nil
	})
	return r.observe(ctx, "delete batch", start, err)
}

// Search returns records whose name or description contains q, ignoring
// case. Wildcard characters in q match literally.
func (r *SQLiteRepository) Search(ctx context.Context, q string) ([]models.VideoRecord, error) {
	start := time.Now()
	if err := r.ensure(ctx); err != nil {
		return nil, r.observe(ctx, "search", start, err)
	}

	list, err := r.selectRecords(ctx, r.db,
		`SELECT `+selectColumns+` FROM videos
		WHERE fold_contains(name, ?) OR fold_contains(description, ?)`+newestFirst, q, q)
	if err != nil {
		return nil, r.observe(ctx, "search", start, err)
	}
	return list, r.observe(ctx, "search", start, nil)
}

// GetByDateRange returns records created within [from, to], newest first.
func (r *SQLiteRepository) GetByDateRange(ctx context.Context, from, to time.Time) ([]models.VideoRecord, error) {
	start := time.Now()
	if err := r.ensure(ctx); err != nil {
		return nil, r.observe(ctx, "get by date range", start, err)
	}

	list, err := r.selectRecords(ctx, r.db,
		`SELECT `+selectColumns+` FROM videos WHERE created_at BETWEEN ? AND ?`+newestFirst,
		formatTime(from), formatTime(to))
	if err != nil {
		return nil, r.observe(ctx, "get by date range", start, err)
	}
	return list, r.observe(ctx, "get by date range", start, nil)
}

// GetPage returns limit records starting at offset of the newest-first
// listing, with the collection size.
func (r *SQLiteRepository) GetPage(ctx context.Context, limit, offset int) (models.Page, error) {
	start := time.Now()
	if limit <= 0 || offset < 0 {
		return models.Page{}, r.observe(ctx, "get page", start,
			fmt.Errorf("%w: limit %d, offset %d", common.ErrInvalidArgument, limit, offset))
	}
	if err := r.ensure(ctx); err != nil {
		return models.Page{}, r.observe(ctx, "get page", start, err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM videos`); err != nil {
		return models.Page{}, r.observe(ctx, "get page", start, err)
	}

	list, err := r.selectRecords(ctx, r.db,
		`SELECT `+selectColumns+` FROM videos`+newestFirst+` LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return models.Page{}, r.observe(ctx, "get page", start, err)
	}

	page := models.Page{
		Records: list,
		HasMore: offset+limit < total,
		Total:   total,
	}
	return page, r.observe(ctx, "get page", start, nil)
}

// GetStats aggregates the whole collection.
func (r *SQLiteRepository) GetStats(ctx context.Context) (models.Stats, error) {
	start := time.Now()
	if err := r.ensure(ctx); err != nil {
		return models.Stats{}, r.observe(ctx, "get stats", start, err)
	}

	var row struct {
		Count         int            `db:"count"`
		TotalDuration float64        `db:"total_duration"`
		Oldest        sql.NullString `db:"oldest"`
		Newest        sql.NullString `db:"newest"`
	}
	err := r.db.GetContext(ctx, &row, `SELECT COUNT(*) AS count,
		COALESCE(SUM(duration), 0) AS total_duration,
		MIN(created_at) AS oldest,
		MAX(created_at) AS newest
		FROM videos`)
	if err != nil {
		return models.Stats{}, r.observe(ctx, "get stats", start, err)
	}

	stats := models.Stats{Count: row.Count, TotalDuration: row.TotalDuration}
	if stats.OldestCreatedAt, err = parseNullTime(row.Oldest); err != nil {
		return models.Stats{}, r.observe(ctx, "get stats", start, err)
	}
	if stats.NewestCreatedAt, err = parseNullTime(row.Newest); err != nil {
		return models.Stats{}, r.observe(ctx, "get stats", start, err)
	}
	return stats, r.observe(ctx, "get stats", start, nil)
}

// Clear removes every record.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	start := time.Now()
	if err := r.ensure(ctx); err != nil {
		return r.observe(ctx, "clear", start, err)
	}

	_, err := r.db.ExecContext(ctx, `DELETE FROM videos`)
	return r.observe(ctx, "clear", start, err)
}

// HealthCheck reports whether the database answers a trivial query.
func (r *SQLiteRepository) HealthCheck(ctx context.Context) bool {
	if err := r.ensure(ctx); err != nil {
		r.log.Warn(ctx, "health check failed", "error", err)
		return false
	}

	var one int
	if err := r.db.GetContext(ctx, &one, `SELECT 1`); err != nil {
		r.log.Warn(ctx, "health check failed", "error", err)
		return false
	}
	return one == 1
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return &PersistenceError{Op: "close", Err: err}
	}
	return nil
}

func (r *SQLiteRepository) stamp() time.Time {
	return r.now().UTC()
}

func (r *SQLiteRepository) toRow(rec models.VideoRecord) videoRow {
	created := rec.CreatedAt
	if created.IsZero() {
		created = r.stamp()
	}

	row := videoRow{
		ID:           rec.ID,
		Name:         rec.Name,
		Description:  rec.Description,
		VideoURI:     rec.VideoLocation,
		ThumbnailURI: nullString(rec.ThumbnailLocation),
		Duration:     rec.Duration,
		CreatedAt:    formatTime(created),
	}
	if rec.UpdatedAt != nil {
		row.UpdatedAt = sql.NullString{String: formatTime(*rec.UpdatedAt), Valid: true}
	}
	if c := rec.CropInfo; c != nil {
		row.CropStart = sql.NullFloat64{Float64: c.StartTime, Valid: true}
		row.CropEnd = sql.NullFloat64{Float64: c.EndTime, Valid: true}
		row.CropDuration = sql.NullFloat64{Float64: c.Duration, Valid: true}
	}
	return row
}

func (row videoRow) record() (models.VideoRecord, error) {
	created, err := time.Parse(models.TimeLayout, row.CreatedAt)
	if err != nil {
		return models.VideoRecord{}, fmt.Errorf("record %s: bad created_at %q: %w", row.ID, row.CreatedAt, err)
	}

	rec := models.VideoRecord{
		ID:                row.ID,
		Name:              row.Name,
		Description:       row.Description,
		VideoLocation:     row.VideoURI,
		ThumbnailLocation: row.ThumbnailURI.String,
		Duration:          row.Duration,
		CreatedAt:         created,
	}
	if rec.UpdatedAt, err = parseNullTime(row.UpdatedAt); err != nil {
		return models.VideoRecord{}, fmt.Errorf("record %s: %w", row.ID, err)
	}
	if row.CropStart.Valid && row.CropEnd.Valid && row.CropDuration.Valid {
		rec.CropInfo = &models.CropInfo{
			StartTime: row.CropStart.Float64,
			EndTime:   row.CropEnd.Float64,
			Duration:  row.CropDuration.Float64,
		}
	}
	return rec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(models.TimeLayout)
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(models.TimeLayout, s.String)
	if err != nil {
		return nil, fmt.Errorf("bad timestamp %q: %w", s.String, err)
	}
	return &t, nil
}

// nullString stores an empty location as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
