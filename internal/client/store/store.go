// Package store keeps the in-memory view of the clip library and writes every
// change through a videos.Repository.
//
// Memory changes only after the durable write succeeded. The internal mutex
// guards the cached slice and is never held across a repository call, so two
// concurrent updates of one record resolve as last writer wins.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/clipshelf/internal/client/models"
	"github.com/dmitrijs2005/clipshelf/internal/client/repositories/videos"
	"github.com/dmitrijs2005/clipshelf/internal/client/validation"
	"github.com/dmitrijs2005/clipshelf/internal/logging"
)

// State is a point-in-time copy of the store.
type State struct {
	Records   []models.VideoRecord
	IsLoading bool
	// Error holds the message of the last failed operation, empty otherwise.
	Error string
}

// SearchResult is the outcome of Store.Search. Local is set when the
// repository failed and the cached records were filtered instead.
type SearchResult struct {
	Query   string
	Records []models.VideoRecord
	Local   bool
}

type Store struct {
	repo videos.Repository
	log  logging.Logger

	mu      sync.Mutex
	records []models.VideoRecord
	pending int
	lastErr string
	subs    map[int]func(State)
	nextSub int
}

func New(repo videos.Repository, log logging.Logger) *Store {
	return &Store{
		repo:    repo,
		log:     log.With("component", "store"),
		records: []models.VideoRecord{},
		subs:    make(map[int]func(State)),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	recs := make([]models.VideoRecord, len(s.records))
	copy(recs, s.records)
	return State{Records: recs, IsLoading: s.pending > 0, Error: s.lastErr}
}

// Subscribe registers fn to receive the state after every change. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// mutate runs fn under the lock, then notifies subscribers outside it.
func (s *Store) mutate(fn func()) {
	s.mu.Lock()
	fn()
	st := s.snapshotLocked()
	subs := make([]func(State), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(st)
	}
}

func (s *Store) begin() {
	s.mutate(func() {
		s.pending++
		s.lastErr = ""
	})
}

// finish closes an operation opened by begin, applying fn on success or
// recording err otherwise.
func (s *Store) finish(ctx context.Context, op string, err error, fn func()) error {
	if err != nil {
		s.log.Error(ctx, "store operation failed", "op", op, "error", err)
	}
	s.mutate(func() {
		s.pending--
		if err != nil {
			s.lastErr = err.Error()
			return
		}
		if fn != nil {
			fn()
		}
	})
	return err
}

// fail records an error raised before any repository call.
func (s *Store) fail(ctx context.Context, op string, err error) error {
	s.log.Warn(ctx, "store operation rejected", "op", op, "error", err)
	s.mutate(func() { s.lastErr = err.Error() })
	return err
}

// Load replaces the cached records with the repository contents. On failure
// the previous records are kept.
func (s *Store) Load(ctx context.Context) error {
	s.begin()
	list, err := s.repo.GetAll(ctx)
	return s.finish(ctx, "load", err, func() {
		if list == nil {
			list = []models.VideoRecord{}
		}
		s.records = list
	})
}

// Add stores r and puts it at the head of the cache.
func (s *Store) Add(ctx context.Context, r models.VideoRecord) error {
	if err := validation.Record(r); err != nil {
		return s.fail(ctx, "add", err)
	}

	s.begin()
	err := s.repo.Insert(ctx, r)
	return s.finish(ctx, "add", err, func() {
		s.records = append([]models.VideoRecord{r}, s.records...)
	})
}

// AddMany stores rs atomically and merges them into the cache by creation
// time, newest first, whatever order rs is in.
func (s *Store) AddMany(ctx context.Context, rs []models.VideoRecord) error {
	for _, r := range rs {
		if err := validation.Record(r); err != nil {
			return s.fail(ctx, "add many", err)
		}
	}
	if len(rs) == 0 {
		return nil
	}

	s.begin()
	err := s.repo.InsertBatch(ctx, rs)
	return s.finish(ctx, "add many", err, func() {
		s.records = mergeNewestFirst(rs, s.records)
	})
}

// mergeNewestFirst inserts batch into cached, which is newest first. On equal
// creation times later batch entries come first and batch entries precede
// cached ones, matching the repository's rowid tie-break.
func mergeNewestFirst(batch, cached []models.VideoRecord) []models.VideoRecord {
	head := make([]models.VideoRecord, 0, len(batch))
	for i := len(batch) - 1; i >= 0; i-- {
		head = append(head, batch[i])
	}
	sort.SliceStable(head, func(i, j int) bool {
		return head[i].CreatedAt.After(head[j].CreatedAt)
	})

	out := make([]models.VideoRecord, 0, len(head)+len(cached))
	i, j := 0, 0
	for i < len(head) && j < len(cached) {
		if cached[j].CreatedAt.After(head[i].CreatedAt) {
			out = append(out, cached[j])
			j++
		} else {
			out = append(out, head[i])
			i++
		}
	}
	out = append(out, head[i:]...)
	return append(out, cached[j:]...)
}

// Update applies p to the record with id and mirrors the change in memory.
// A record missing from the cache is updated in storage only.
func (s *Store) Update(ctx context.Context, id string, p models.Patch) error {
	if err := validation.Patch(p); err != nil {
		return s.fail(ctx, "update", err)
	}

	s.begin()
	stamp, err := s.repo.Update(ctx, id, p)
	return s.finish(ctx, "update", err, func() {
		for i := range s.records {
			if s.records[i].ID == id {
				s.records[i] = s.records[i].Apply(p, stamp)
				return
			}
		}
	})
}

// Remove deletes the record with id.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.begin()
	err := s.repo.Delete(ctx, id)
	return s.finish(ctx, "remove", err, func() {
		s.drop(map[string]struct{}{id: {}})
	})
}

// RemoveMany deletes every id atomically.
func (s *Store) RemoveMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	s.begin()
	err := s.repo.DeleteBatch(ctx, ids)
	return s.finish(ctx, "remove many", err, func() {
		set := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		s.drop(set)
	})
}

func (s *Store) drop(ids map[string]struct{}) {
	kept := s.records[:0:0]
	for _, r := range s.records {
		if _, ok := ids[r.ID]; !ok {
			kept = append(kept, r)
		}
	}
	s.records = kept
}

// Clear deletes every record.
func (s *Store) Clear(ctx context.Context) error {
	s.begin()
	err := s.repo.Clear(ctx)
	return s.finish(ctx, "clear", err, func() {
		s.records = []models.VideoRecord{}
	})
}

// FindByID looks id up in the cache only.
func (s *Store) FindByID(id string) (models.VideoRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.ID == id {
			return r, true
		}
	}
	return models.VideoRecord{}, false
}

// Search asks the repository for records matching q. The cached records are
// left untouched. When the repository fails the cache is filtered with the
// same matching rules and the failure is recorded in State.Error; a successful
// search leaves State.Error as it was.
func (s *Store) Search(ctx context.Context, q string) SearchResult {
	if strings.TrimSpace(q) == "" {
		return SearchResult{Query: q, Records: []models.VideoRecord{}}
	}

	list, err := s.repo.Search(ctx, q)
	if err == nil {
		if list == nil {
			list = []models.VideoRecord{}
		}
		return SearchResult{Query: q, Records: list}
	}

	s.log.Warn(ctx, "search fell back to cached records", "query", q, "error", err)

	var local []models.VideoRecord
	s.mutate(func() {
		s.lastErr = err.Error()
		local = make([]models.VideoRecord, 0)
		for _, r := range s.records {
			if r.Matches(q) {
				local = append(local, r)
			}
		}
	})
	return SearchResult{Query: q, Records: local, Local: true}
}
