package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	List(ctx context.Context) error
	Page(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Recent(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
	Seed(ctx context.Context, args []string) error
	Clear(ctx context.Context) error
	Health(ctx context.Context) error
}

var commands = []string{
	"help", "list", "page", "show", "add", "edit", "delete",
	"search", "recent", "stats", "seed", "clear", "health", "exit", "quit",
}

const helpText = `Available commands:
  (l)ist              list the library (or current search results)
  page <n>            show page n of the library
  show <id>           show one clip
  add                 capture a clip from a video file
  edit <id>           change name or description
  delete <id...>      delete clips and their files
  search [query]      search by name or description; no query clears
  recent <duration>   clips created within e.g. 24h
  stats               library totals
  seed <file.json>    import records from a JSON array
  clear               delete every clip
  health              check the database
  exit | quit         leave the program`

// runREPL starts a simple read–eval–print loop for the clipshelf CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a' with the remaining tokens as arguments.
// Unknown commands get a suggestion when one is close enough. The loop exits
// on EOF or when the user types "exit" or "quit".
//
// Any errors returned by command handlers are printed and otherwise ignored,
// which keeps the loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("clips %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			printlnFn(helpText)
		case "l", "list":
			cmdErr = a.List(ctx)
		case "page":
			cmdErr = a.Page(ctx, args)
		case "show":
			cmdErr = a.Show(ctx, args)
		case "add":
			cmdErr = a.Add(ctx)
		case "edit":
			cmdErr = a.Edit(ctx, args)
		case "delete", "rm":
			cmdErr = a.Delete(ctx, args)
		case "search":
			cmdErr = a.Search(ctx, args)
		case "recent":
			cmdErr = a.Recent(ctx, args)
		case "stats":
			cmdErr = a.Stats(ctx)
		case "seed":
			cmdErr = a.Seed(ctx, args)
		case "clear":
			cmdErr = a.Clear(ctx)
		case "health":
			cmdErr = a.Health(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			if s := suggest(cmd); s != "" {
				printlnFn(fmt.Sprintf("Unknown command: %s (did you mean %q?)", cmd, s))
			} else {
				printlnFn("Unknown command:", cmd)
			}
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
		if err != nil {
			return
		}
	}
}

// suggest returns the known command closest to cmd, or "" when none is close.
func suggest(cmd string) string {
	ranks := fuzzy.RankFindFold(cmd, commands)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	best, bestDist := "", 3
	for _, c := range commands {
		if d := fuzzy.LevenshteinDistance(strings.ToLower(cmd), c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
