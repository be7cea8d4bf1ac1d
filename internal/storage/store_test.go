package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartRow struct {
	ID string `json:"id"`
}

func storeContract(t *testing.T, store Store) {
	ctx := context.Background()

	_, ok, err := store.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, Save(ctx, store, KeyCart, []cartRow{{ID: "a"}, {ID: "b"}}))
	got := Load(ctx, store, KeyCart, []cartRow{})
	assert.Equal(t, []cartRow{{ID: "a"}, {ID: "b"}}, got)

	require.NoError(t, store.Set(ctx, KeyFavorites, []byte(`{not json`)))
	favs := Load(ctx, store, KeyFavorites, []cartRow{})
	assert.NotNil(t, favs)
	assert.Empty(t, favs)

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyCart, KeyFavorites}, keys)

	require.NoError(t, store.Delete(ctx, KeyCart))
	require.NoError(t, store.Delete(ctx, KeyCart), "deleting a missing key is not an error")
	assert.Empty(t, Load(ctx, store, KeyCart, []cartRow{}))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	storeContract(t, store)

	require.NoError(t, store.Close())
	_, _, err := store.Get(context.Background(), KeyCart)
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, "fallback", Load(context.Background(), store, KeyCart, "fallback"))
	assert.Error(t, Save(context.Background(), store, KeyCart, "x"))
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	storeContract(t, store)

	err = store.Set(context.Background(), "../escape", []byte(`1`))
	assert.Error(t, err)
}

func TestLibSQLStore(t *testing.T) {
	store, err := NewLibSQLStore(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer store.Close()
	storeContract(t, store)
}

func TestLoadNilStore(t *testing.T) {
	assert.Equal(t, 7, Load(context.Background(), nil, KeyCart, 7))
	assert.NoError(t, Save(context.Background(), nil, KeyCart, 7))
}

func TestFileStoreWatchIgnoresOwnWrites(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := store.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, KeyCart, []byte(`[]`)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, KeyFavorites+fileExt), []byte(`["x"]`), 0644))

	select {
	case key := <-changes:
		assert.Equal(t, KeyFavorites, key)
	case <-time.After(3 * time.Second):
		t.Fatal("expected an external change notification")
	}
}

func TestOpen(t *testing.T) {
	pm := NewPathManager(t.TempDir())

	store, err := Open(DriverFile, pm)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	store, err = Open(DriverMemory, pm)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	_, err = Open("redis", pm)
	assert.Error(t, err)
}
