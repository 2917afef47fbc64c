package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Round int      `json:"round"`
	Names []string `json:"names"`
}

func backends(t *testing.T) map[string]DocumentStore {
	t.Helper()
	dir := t.TempDir()

	fileStore, err := NewFileStore(filepath.Join(dir, "files"))
	require.NoError(t, err)
	sqliteStore, err := OpenSQLite(filepath.Join(dir, "db", "state.db"))
	require.NoError(t, err)

	stores := map[string]DocumentStore{
		"file":   fileStore,
		"sqlite": sqliteStore,
		"memory": NewMemoryStore(),
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestDocumentStore_MissingAndReplace(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var got sample
			err := LoadJSON(ctx, s, "swipe", &got)
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, SaveJSON(ctx, s, "swipe", sample{Round: 1, Names: []string{"Eevee", "Mew"}}))
			require.NoError(t, LoadJSON(ctx, s, "swipe", &got))
			assert.Equal(t, sample{Round: 1, Names: []string{"Eevee", "Mew"}}, got)

			// whole-document replace, no merge
			require.NoError(t, SaveJSON(ctx, s, "swipe", sample{Round: 2}))
			got = sample{}
			require.NoError(t, LoadJSON(ctx, s, "swipe", &got))
			assert.Equal(t, sample{Round: 2}, got)

			_, err = s.Get(ctx, "tournament")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestLoadJSON_CorruptDocument(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Put(context.Background(), "tasks", []byte("{not json")))

	var got sample
	err := LoadJSON(context.Background(), s, "tasks", &got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFileStore_WritesReadableJSON(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, SaveJSON(context.Background(), s, "tasks", []int{1, 2}))

	b, err := os.ReadFile(filepath.Join(dir, "tasks.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2]`, string(b))
}

func TestOpen_SelectsBackend(t *testing.T) {
	s, err := Open(Options{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(Options{Backend: BackendFile, DataDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = Open(Options{Backend: "etcd"})
	assert.Error(t, err)

	_, err = Open(Options{Backend: BackendPostgres})
	assert.Error(t, err)
}
