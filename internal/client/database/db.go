// Package database opens the local SQLite database that backs the clip
// library.
//
// The handle is a *sqlx.DB on the pure-Go modernc.org/sqlite driver, limited
// to a single connection: SQLite serialises writers anyway, and one connection
// keeps ":memory:" databases coherent across calls.
//
// Open also registers the fold_contains(haystack, needle) SQL function, a
// substring test under Unicode case folding (golang.org/x/text/cases) used by
// search. It shares models.FoldContains with the in-memory search.
package database

import (
	"context"
	"database/sql/driver"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/clipshelf/internal/client/models"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

var (
	registerOnce sync.Once
	registerErr  error
)

func init() {
	sqlx.BindDriver(DriverName, sqlx.QUESTION)
}

// Open opens (creating if needed) the database at dsn. The schema is not
// touched; repositories apply migrations on first use.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	if err := registerFunctions(); err != nil {
		return nil, err
	}

	db, err := sqlx.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	return db, nil
}

func registerFunctions() error {
	registerOnce.Do(func() {
		registerErr = sqlite.RegisterDeterministicScalarFunction("fold_contains", 2, foldContains)
		if registerErr != nil {
			registerErr = fmt.Errorf("failed to register fold_contains: %w", registerErr)
		}
	})
	return registerErr
}

// foldContains implements fold_contains(haystack, needle). NULL arguments
// never match.
func foldContains(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	haystack, ok1 := args[0].(string)
	needle, ok2 := args[1].(string)
	if !ok1 || !ok2 {
		return int64(0), nil
	}
	if models.FoldContains(haystack, needle) {
		return int64(1), nil
	}
	return int64(0), nil
}
