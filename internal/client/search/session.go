// Package search implements a debounced search over the clip library: typing
// reschedules a single pending query, and only the last one runs.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/clipshelf/internal/client/models"
	"github.com/dmitrijs2005/clipshelf/internal/client/store"
)

// DefaultDelay is the pause after the last keystroke before a search runs.
const DefaultDelay = 300 * time.Millisecond

// Searcher is the part of store.Store a Session needs.
type Searcher interface {
	Search(ctx context.Context, q string) store.SearchResult
	Snapshot() store.State
}

var _ Searcher = (*store.Store)(nil)

// Stats summarises the current results.
type Stats struct {
	Total         int
	TotalDuration float64
}

// View is what a screen renders. Display holds the results while a search is
// active and the whole library otherwise. Stats is nil when not active.
type View struct {
	Query     string
	Searching bool
	Active    bool
	Local     bool
	Results   []models.VideoRecord
	Display   []models.VideoRecord
	Stats     *Stats
}

type Session struct {
	ctx   context.Context
	src   Searcher
	delay time.Duration

	mu        sync.Mutex
	query     string
	gen       uint64
	timer     *time.Timer
	searching bool
	active    bool
	local     bool
	results   []models.VideoRecord
}

// NewSession returns a session searching src. Searches run with ctx; a
// non-positive delay means DefaultDelay.
func NewSession(ctx context.Context, src Searcher, delay time.Duration) *Session {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Session{ctx: ctx, src: src, delay: delay}
}

// SetQuery records q and schedules a search after the delay, replacing any
// pending one. A blank q clears the results at once.
func (s *Session) SetQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.query = q
	s.gen++
	s.stopLocked()

	if strings.TrimSpace(q) == "" {
		s.active, s.local, s.results = false, false, nil
		return
	}

	gen := s.gen
	s.timer = time.AfterFunc(s.delay, func() { s.run(gen) })
}

// Flush runs the pending search now, if there is one, and waits for it.
func (s *Session) Flush() {
	s.mu.Lock()
	pending := s.timer != nil && s.timer.Stop()
	s.timer = nil
	gen := s.gen
	s.mu.Unlock()

	if pending {
		s.run(gen)
	}
}

// Clear drops the query, any pending search and the results.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.stopLocked()
	s.query = ""
	s.active, s.local, s.results = false, false, nil
}

// Close cancels a pending search.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.stopLocked()
}

func (s *Session) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) run(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.searching = true
	q := s.query
	s.mu.Unlock()

	res := s.src.Search(s.ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.searching = false
	// a newer query or a Clear made this result stale
	if gen != s.gen {
		return
	}
	s.timer = nil
	s.active, s.local, s.results = true, res.Local, res.Records
}

func (s *Session) View() View {
	s.mu.Lock()
	v := View{
		Query:     s.query,
		Searching: s.searching,
		Active:    s.active,
		Local:     s.local,
		Results:   append([]models.VideoRecord(nil), s.results...),
	}
	s.mu.Unlock()

	if !v.Active {
		v.Display = s.src.Snapshot().Records
		return v
	}

	v.Display = v.Results
	st := &Stats{Total: len(v.Results)}
	for _, r := range v.Results {
		st.TotalDuration += r.Duration
	}
	v.Stats = st
	return v
}
