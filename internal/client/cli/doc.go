// Package cli provides the interactive clipshelf command-line client.
//
// It wires configuration, the SQLite-backed library, the clip store, the
// media pipeline and a debounced search session behind a line-oriented REPL.
// When stdin is not a terminal, prompts are suppressed so that commands and
// answers can be piped in.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits or
// input ends. See App and runREPL for details.
package cli
