// Package videos provides the client-side persistence layer for saved clips.
//
// # Overview
//
// The package defines a Repository interface for CRUD and query operations on
// VideoRecord models (see internal/client/models). A SQLite-backed
// implementation (SQLiteRepository) persists data in a single videos table
// through sqlx.
//
// # Schema
//
// The schema is owned by internal/client/migrations. Initialize applies it and
// is called implicitly by every other method, so a repository over a fresh
// database heals itself on first use.
//
// # Errors
//
// Every storage fault is returned as *PersistenceError carrying the operation
// name. Conditions callers branch on are wrapped inside it and matched with
// errors.Is: common.ErrAlreadyExists (duplicate id on insert) and
// common.ErrNotFound (update of an unknown id). Lookups by id never fail for a
// missing row; they return (nil, nil).
//
// # Concurrency
//
// Each call is atomic at the statement level; InsertBatch and DeleteBatch run
// in one transaction. Nothing orders independent calls: two concurrent
// updates of the same id leave whichever committed last.
//
// Typical Usage
//
//	repo := videos.NewSQLiteRepository(db, logger)
//	_ = repo.Insert(ctx, rec)
//	list, _ := repo.GetAll(ctx)
//	page, _ := repo.GetPage(ctx, 10, 0)
//	_ = repo.Delete(ctx, rec.ID)
package videos
