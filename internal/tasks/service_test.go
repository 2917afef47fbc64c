package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/pokeduel-backend/internal/storage"
)

var created = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func newService(t *testing.T, store storage.DocumentStore) *Service {
	t.Helper()
	s, err := New(context.Background(), store, "", WithClock(func() time.Time { return created }))
	require.NoError(t, err)
	return s
}

func taskIDs(ts []Task) []int {
	out := make([]int, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func TestCreate_AssignsCountBasedIDs(t *testing.T) {
	s := newService(t, storage.NewMemoryStore())
	ctx := context.Background()

	task, err := s.Create(ctx, "catch pikachu")
	require.NoError(t, err)
	assert.Equal(t, Task{ID: 1, Title: "catch pikachu", CreatedAt: created}, task)

	_, err = s.Create(ctx, "   ")
	assert.ErrorIs(t, err, ErrInvalidTitle)
	assert.Len(t, s.List(), 1)
}

func TestDelete_ThenCreateReusesID(t *testing.T) {
	s := newService(t, storage.NewMemoryStore())
	ctx := context.Background()
	for _, title := range []string{"a", "b", "c"} {
		_, err := s.Create(ctx, title)
		require.NoError(t, err)
	}

	require.NoError(t, s.Delete(ctx, 2))
	assert.Equal(t, []int{1, 3}, taskIDs(s.List()))

	// count-based ids collide with the surviving task 3
	task, err := s.Create(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, 3, task.ID)
	assert.Equal(t, []int{1, 3, 3}, taskIDs(s.List()))
}

func TestDelete_MissingIsNoop(t *testing.T) {
	s := newService(t, storage.NewMemoryStore())
	ctx := context.Background()
	_, err := s.Create(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, 42))
	assert.Len(t, s.List(), 1)
}

func TestUpdate_PartialMerge(t *testing.T) {
	s := newService(t, storage.NewMemoryStore())
	ctx := context.Background()
	_, err := s.Create(ctx, "train")
	require.NoError(t, err)

	done := true
	task, err := s.Update(ctx, 1, Patch{Completed: &done})
	require.NoError(t, err)
	assert.Equal(t, "train", task.Title)
	assert.True(t, task.Completed)

	title := "train harder"
	task, err = s.Update(ctx, 1, Patch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "train harder", task.Title)
	assert.True(t, task.Completed)

	_, err = s.Update(ctx, 9, Patch{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_MirrorsToStore(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	s := newService(t, store)
	_, err := s.Create(ctx, "a")
	require.NoError(t, err)
	_, err = s.Create(ctx, "b")
	require.NoError(t, err)

	reloaded := newService(t, store)
	assert.Equal(t, s.List(), reloaded.List())

	require.NoError(t, s.Delete(ctx, 1))
	var onDisk []Task
	require.NoError(t, storage.LoadJSON(ctx, store, DefaultKey, &onDisk))
	assert.Equal(t, []int{2}, taskIDs(onDisk))
}

func TestNew_CorruptDocumentFails(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), DefaultKey, []byte("{")))

	_, err := New(context.Background(), store, DefaultKey)
	assert.Error(t, err)
}
