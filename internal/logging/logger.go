// Package logging defines the structured-logging interface used across
// clipshelf. The repository and the store report every operation through it,
// so the concrete sink (stderr, a rotating file, nothing) is chosen only at the
// application root.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "video inserted", "id", id, "elapsed", d)
type Logger interface {
	// Debug logs routine operation outcomes.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}
