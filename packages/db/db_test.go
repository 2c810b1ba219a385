package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "captures.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpen_ConnectionStringForms(t *testing.T) {
	tmpDir := t.TempDir()

	for _, conn := range []string{
		"sqlite://" + filepath.Join(tmpDir, "a.db"),
		"sqlite:" + filepath.Join(tmpDir, "b.db"),
		filepath.Join(tmpDir, "nested", "dir", "c.db"),
	} {
		store, err := Open(conn)
		require.NoError(t, err, conn)
		assert.NotEmpty(t, store.Path())
		require.NoError(t, store.Close())
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "dev", "token", "abc"))
	require.NoError(t, store.SaveAll(ctx, "dev", map[string]string{"id": "1", "etag": `"v1"`}))
	require.NoError(t, store.Save(ctx, "other", "token", "xyz"))

	values, err := store.Load(ctx, "dev")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"token": "abc", "id": "1", "etag": `"v1"`}, values)

	values, err = store.Load(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"token": "xyz"}, values)

	values, err = store.Load(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestStore_SaveOverwrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, DefaultSession, "token", "old"))
	require.NoError(t, store.Save(ctx, DefaultSession, "token", "new"))

	captures, err := store.List(ctx, DefaultSession)
	require.NoError(t, err)
	require.Len(t, captures, 1)
	assert.Equal(t, "new", captures[0].Value)
	assert.Equal(t, DefaultSession, captures[0].Session)
	assert.False(t, captures[0].UpdatedAt.IsZero())
}

func TestStore_SessionsAndClear(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveAll(ctx, "b", map[string]string{"x": "1", "y": "2"}))
	require.NoError(t, store.Save(ctx, "a", "x", "1"))

	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, sessions)

	removed, err := store.Clear(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	sessions, err = store.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, sessions)
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "dev", "token", "kept"))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	values, err := store.Load(ctx, "dev")
	require.NoError(t, err)
	assert.Equal(t, "kept", values["token"])
}
