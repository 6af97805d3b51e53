package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/clipshelf/internal/client/models"
	"github.com/dmitrijs2005/clipshelf/internal/common"
	"github.com/dmitrijs2005/clipshelf/internal/logging"
)

var created = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func rec(id, name string) models.VideoRecord {
	return models.VideoRecord{
		ID:            id,
		Name:          name,
		VideoLocation: "/videos/" + id + ".mp4",
		Duration:      models.ClipLength,
		CreatedAt:     created,
	}
}

func ids(list []models.VideoRecord) []string {
	out := make([]string, 0, len(list))
	for _, r := range list {
		out = append(out, r.ID)
	}
	return out
}

func newStore(t *testing.T) (*Store, *RepoMock) {
	t.Helper()
	repo := &RepoMock{}
	t.Cleanup(func() { repo.AssertExpectations(t) })
	return New(repo, logging.Nop()), repo
}

func loaded(t *testing.T, recs ...models.VideoRecord) (*Store, *RepoMock) {
	t.Helper()
	s, repo := newStore(t)
	repo.On("GetAll", mock.Anything).Return(recs, nil).Once()
	require.NoError(t, s.Load(context.Background()))
	return s, repo
}

func TestNew_EmptyState(t *testing.T) {
	s, _ := newStore(t)

	st := s.Snapshot()
	assert.NotNil(t, st.Records)
	assert.Empty(t, st.Records)
	assert.False(t, st.IsLoading)
	assert.Empty(t, st.Error)
}

func TestLoad_ReplacesRecords(t *testing.T) {
	s, repo := loaded(t, rec("a", "A"))

	repo.On("GetAll", mock.Anything).Return([]models.VideoRecord{rec("b", "B"), rec("c", "C")}, nil).Once()
	require.NoError(t, s.Load(context.Background()))

	st := s.Snapshot()
	assert.Equal(t, []string{"b", "c"}, ids(st.Records))
	assert.False(t, st.IsLoading)
	assert.Empty(t, st.Error)
}

func TestLoad_FailureKeepsRecords(t *testing.T) {
	s, repo := loaded(t, rec("a", "A"))
	boom := errors.New("disk gone")

	repo.On("GetAll", mock.Anything).Return(nil, boom).Once()
	err := s.Load(context.Background())
	require.ErrorIs(t, err, boom)

	st := s.Snapshot()
	assert.Equal(t, []string{"a"}, ids(st.Records))
	assert.False(t, st.IsLoading)
	assert.Equal(t, "disk gone", st.Error)
}

func TestLoad_SuccessClearsPreviousError(t *testing.T) {
	s, repo := newStore(t)

	repo.On("GetAll", mock.Anything).Return(nil, errors.New("boom")).Once()
	require.Error(t, s.Load(context.Background()))
	repo.On("GetAll", mock.Anything).Return([]models.VideoRecord{}, nil).Once()
	require.NoError(t, s.Load(context.Background()))

	assert.Empty(t, s.Snapshot().Error)
}

func TestLoad_IsLoadingWhileInFlight(t *testing.T) {
	s, repo := newStore(t)

	var during State
	repo.On("GetAll", mock.Anything).Run(func(mock.Arguments) {
		during = s.Snapshot()
	}).Return([]models.VideoRecord{}, nil).Once()

	require.NoError(t, s.Load(context.Background()))
	assert.True(t, during.IsLoading)
	assert.False(t, s.Snapshot().IsLoading)
}

func TestAdd_Prepends(t *testing.T) {
	s, repo := loaded(t, rec("a", "A"))
	b := rec("b", "B")

	repo.On("Insert", mock.Anything, b).Return(nil).Once()
	require.NoError(t, s.Add(context.Background(), b))

	assert.Equal(t, []string{"b", "a"}, ids(s.Snapshot().Records))
}

func TestAdd_FailureLeavesMemory(t *testing.T) {
	s, repo := loaded(t, rec("a", "A"))
	dup := rec("a", "again")
	boom := errors.New("already exists")

	repo.On("Insert", mock.Anything, dup).Return(boom).Once()
	err := s.Add(context.Background(), dup)
	require.ErrorIs(t, err, boom)

	st := s.Snapshot()
	assert.Equal(t, []string{"a"}, ids(st.Records))
	assert.Equal(t, "already exists", st.Error)
	assert.False(t, st.IsLoading)
}

func TestAdd_InvalidRecordNeverReachesRepository(t *testing.T) {
	s, _ := newStore(t)

	bad := rec("a", "")
	err := s.Add(context.Background(), bad)
	require.ErrorIs(t, err, common.ErrValidation)
	assert.NotEmpty(t, s.Snapshot().Error)
	assert.Empty(t, s.Snapshot().Records)
}

func TestAddMany_PrependsNewestFirst(t *testing.T) {
	s, repo := loaded(t, rec("a", "A"))
	batch := []models.VideoRecord{rec("b", "B"), rec("c", "C")}

	repo.On("InsertBatch", mock.Anything, batch).Return(nil).Once()
	require.NoError(t, s.AddMany(context.Background(), batch))

	assert.Equal(t, []string{"c", "b", "a"}, ids(s.Snapshot().Records))
}

func TestAddMany_OrdersByCreationTime(t *testing.T) {
	day := func(id string, n int) models.VideoRecord {
		r := rec(id, id)
		r.CreatedAt = created.AddDate(0, 0, n)
		return r
	}

	s, repo := newStore(t)
	newestFirst := []models.VideoRecord{day("d3", 3), day("d2", 2), day("d1", 1)}
	repo.On("InsertBatch", mock.Anything, newestFirst).Return(nil).Once()
	require.NoError(t, s.AddMany(context.Background(), newestFirst))
	assert.Equal(t, []string{"d3", "d2", "d1"}, ids(s.Snapshot().Records))

	s, repo = loaded(t, day("mid", 2))
	mixed := []models.VideoRecord{day("old", 1), day("new", 3)}
	repo.On("InsertBatch", mock.Anything, mixed).Return(nil).Once()
	require.NoError(t, s.AddMany(context.Background(), mixed))
	assert.Equal(t, []string{"new", "mid", "old"}, ids(s.Snapshot().Records))
}

func TestAddMany_FailureLeavesMemory(t *testing.T) {
	s, repo := loaded(t, rec("a", "A"))
	batch := []models.VideoRecord{rec("b", "B")}

	repo.On("InsertBatch", mock.Anything, batch).Return(errors.New("tx failed")).Once()
	require.Error(t, s.AddMany(context.Background(), batch))

	assert.Equal(t, []string{"a"}, ids(s.Snapshot().Records))
}

func TestUpdate_MergesPatchAndStamp(t *testing.T) {
	a := rec("a", "A")
	a.Description = "old"
	s, repo := loaded(t, a)
	stamp := created.Add(time.Hour)
	p := models.Patch{Name: models.Ptr("renamed")}

	repo.On("Update", mock.Anything, "a", p).Return(stamp, nil).Once()
	require.NoError(t, s.Update(context.Background(), "a", p))

	got, ok := s.FindByID("a")
	require.True(t, ok)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, "old", got.Description)
	require.NotNil(t, got.UpdatedAt)
	assert.Equal(t, stamp, *got.UpdatedAt)
}

func TestUpdate_AbsentInMemoryIsNoop(t *testing.T) {
	s, repo := loaded(t, rec("a", "A"))
	p := models.Patch{Description: models.Ptr("x")}

	repo.On("Update", mock.Anything, "other", p).Return(created, nil).Once()
	require.NoError(t, s.Update(context.Background(), "other", p))

	assert.Equal(t, []string{"a"}, ids(s.Snapshot().Records))
	got, _ := s.FindByID("a")
	assert.Nil(t, got.UpdatedAt)
}

func TestUpdate_FailureLeavesMemory(t *testing.T) {
	s, repo := loaded(t, rec("a", "A"))
	p := models.Patch{Name: models.Ptr("renamed")}

	repo.On("Update", mock.Anything, "a", p).Return(time.Time{}, common.ErrNotFound).Once()
	err := s.Update(context.Background(), "a", p)
	require.ErrorIs(t, err, common.ErrNotFound)

	got, _ := s.FindByID("a")
	assert.Equal(t, "A", got.Name)
	assert.Equal(t, "not found", s.Snapshot().Error)
}

func TestUpdate_InvalidPatch(t *testing.T) {
	s, _ := loaded(t, rec("a", "A"))

	err := s.Update(context.Background(), "a", models.Patch{Name: models.Ptr("  ")})
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestRemove(t *testing.T) {
	s, repo := loaded(t, rec("a", "A"), rec("b", "B"))

	repo.On("Delete", mock.Anything, "a").Return(nil).Once()
	require.NoError(t, s.Remove(context.Background(), "a"))

	assert.Equal(t, []string{"b"}, ids(s.Snapshot().Records))
	_, ok := s.FindByID("a")
	assert.False(t, ok)
}

func TestRemove_FailureLeavesMemory(t *testing.T) {
	s, repo := loaded(t, rec("a", "A"))

	repo.On("Delete", mock.Anything, "a").Return(errors.New("locked")).Once()
	require.Error(t, s.Remove(context.Background(), "a"))

	assert.Equal(t, []string{"a"}, ids(s.Snapshot().Records))
}

func TestRemoveMany(t *testing.T) {
	s, repo := loaded(t, rec("a", "A"), rec("b", "B"), rec("c", "C"))

	repo.On("DeleteBatch", mock.Anything, []string{"a", "c"}).Return(nil).Once()
	require.NoError(t, s.RemoveMany(context.Background(), []string{"a", "c"}))

	assert.Equal(t, []string{"b"}, ids(s.Snapshot().Records))
	require.NoError(t, s.RemoveMany(context.Background(), nil))
}

func TestClear(t *testing.T) {
	s, repo := loaded(t, rec("a", "A"))

	repo.On("Clear", mock.Anything).Return(nil).Once()
	require.NoError(t, s.Clear(context.Background()))
	assert.Empty(t, s.Snapshot().Records)
}

func TestClear_Failure(t *testing.T) {
	s, repo := loaded(t, rec("a", "A"))

	repo.On("Clear", mock.Anything).Return(errors.New("readonly")).Once()
	require.Error(t, s.Clear(context.Background()))
	assert.Len(t, s.Snapshot().Records, 1)
}

func TestFindByID_NoIO(t *testing.T) {
	s, _ := loaded(t, rec("a", "A"))

	got, ok := s.FindByID("a")
	require.True(t, ok)
	assert.Equal(t, "A", got.Name)

	_, ok = s.FindByID("zzz")
	assert.False(t, ok)
}

func TestSearch_UsesRepository(t *testing.T) {
	s, repo := loaded(t, rec("a", "Beach"), rec("b", "Dog"))
	found := []models.VideoRecord{rec("x", "Beach party")}

	repo.On("Search", mock.Anything, "beach").Return(found, nil).Once()
	res := s.Search(context.Background(), "beach")

	assert.Equal(t, []string{"x"}, ids(res.Records))
	assert.False(t, res.Local)
	assert.Equal(t, []string{"a", "b"}, ids(s.Snapshot().Records))
}

func TestSearch_FallsBackToMemory(t *testing.T) {
	s, repo := loaded(t, rec("a", "Beach Sunset"), rec("b", "Dog"))

	repo.On("Search", mock.Anything, "SUNSET").Return(nil, errors.New("broken")).Once()
	res := s.Search(context.Background(), "SUNSET")

	assert.True(t, res.Local)
	assert.Equal(t, []string{"a"}, ids(res.Records))
	assert.Equal(t, "broken", s.Snapshot().Error)
}

func TestSearch_KeepsEarlierError(t *testing.T) {
	s, repo := loaded(t, rec("a", "Beach"))

	repo.On("Delete", mock.Anything, "a").Return(errors.New("disk full")).Once()
	require.Error(t, s.Remove(context.Background(), "a"))

	var notified int
	s.Subscribe(func(State) { notified++ })

	repo.On("Search", mock.Anything, "beach").Return([]models.VideoRecord{rec("a", "Beach")}, nil).Once()
	res := s.Search(context.Background(), "beach")

	assert.False(t, res.Local)
	assert.Equal(t, "disk full", s.Snapshot().Error)
	assert.Zero(t, notified)
}

func TestSearch_BlankQuery(t *testing.T) {
	s, _ := loaded(t, rec("a", "A"))

	res := s.Search(context.Background(), "   ")
	assert.NotNil(t, res.Records)
	assert.Empty(t, res.Records)
}

func TestSnapshot_IsACopy(t *testing.T) {
	s, _ := loaded(t, rec("a", "A"))

	st := s.Snapshot()
	st.Records[0].Name = "mutated"

	got, _ := s.FindByID("a")
	assert.Equal(t, "A", got.Name)
}

func TestSubscribe(t *testing.T) {
	s, repo := newStore(t)

	var (
		mu     sync.Mutex
		states []State
	)
	unsubscribe := s.Subscribe(func(st State) {
		mu.Lock()
		states = append(states, st)
		mu.Unlock()
	})

	repo.On("GetAll", mock.Anything).Return([]models.VideoRecord{rec("a", "A")}, nil).Once()
	require.NoError(t, s.Load(context.Background()))

	mu.Lock()
	require.Len(t, states, 2)
	assert.True(t, states[0].IsLoading)
	assert.False(t, states[1].IsLoading)
	assert.Equal(t, []string{"a"}, ids(states[1].Records))
	mu.Unlock()

	unsubscribe()
	unsubscribe()

	repo.On("Clear", mock.Anything).Return(nil).Once()
	require.NoError(t, s.Clear(context.Background()))

	mu.Lock()
	assert.Len(t, states, 2)
	mu.Unlock()
}

func TestConcurrentMutations(t *testing.T) {
	s, repo := newStore(t)
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := rec(string(rune('a'+i)), "clip")
			assert.NoError(t, s.Add(context.Background(), r))
		}(i)
	}
	wg.Wait()

	st := s.Snapshot()
	assert.Len(t, st.Records, 20)
	assert.False(t, st.IsLoading)
}
