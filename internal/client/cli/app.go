package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/clipshelf/internal/client/config"
	"github.com/dmitrijs2005/clipshelf/internal/client/database"
	"github.com/dmitrijs2005/clipshelf/internal/client/media"
	"github.com/dmitrijs2005/clipshelf/internal/client/repositories/videos"
	"github.com/dmitrijs2005/clipshelf/internal/client/search"
	"github.com/dmitrijs2005/clipshelf/internal/client/services"
	"github.com/dmitrijs2005/clipshelf/internal/client/store"
	"github.com/dmitrijs2005/clipshelf/internal/logging"
)

type App struct {
	config  *config.Config
	log     logging.Logger
	store   *store.Store
	library services.LibraryService
	search  *search.Session
	closer  io.Closer

	reader *bufio.Reader
	out    io.Writer
	// prompts is where interactive prompts go; io.Discard when stdin is piped.
	prompts io.Writer
}

// NewApp opens the library database and wires the store, media pipeline and
// search session on top of it.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := database.Open(ctx, c.DatabasePath)
	if err != nil {
		return nil, err
	}

	repo := videos.NewSQLiteRepository(db, log)
	if err := repo.Initialize(ctx); err != nil {
		_ = repo.Close()
		return nil, err
	}

	thumbs := media.Pick(c.FFmpegPath)
	if _, ok := thumbs.(media.NopThumbnailer); ok {
		log.Warn(ctx, "ffmpeg not found, clips will have no thumbnails")
	}

	st := store.New(repo, log)
	processor := media.NewProcessor(c.MediaDir, thumbs, log)
	library := services.NewLibraryService(st, repo, processor, log, c.PageSize)

	prompts := io.Writer(os.Stdout)
	if !isTerminal(int(os.Stdin.Fd())) {
		prompts = io.Discard
	}

	return &App{
		config:  c,
		log:     log,
		store:   st,
		library: library,
		search:  search.NewSession(ctx, st, c.SearchDebounce),
		closer:  repo,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		prompts: prompts,
	}, nil
}

// Run loads the library and serves commands from stdin until exit or EOF.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	if err := a.store.Load(ctx); err != nil {
		fmt.Fprintf(a.out, "Could not load the library: %v\n", err)
	}

	printlnFn("clipshelf (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) Close() {
	if a.search != nil {
		a.search.Close()
	}
	if a.closer != nil {
		if err := a.closer.Close(); err != nil {
			a.log.Error(context.Background(), "failed to close library", "error", err)
		}
	}
}

func (a *App) getStatus() string {
	st := a.store.Snapshot()
	s := fmt.Sprintf("%d clips", len(st.Records))
	if st.IsLoading {
		s += ", loading"
	}
	if q := a.search.View(); q.Active {
		s += fmt.Sprintf(", search %q", q.Query)
	}
	return "(" + s + ")"
}
