package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends returns one instance of every backend, each cleaned up with t.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	fs, err := NewFileStore(filepath.Join(dir, "files"))
	require.NoError(t, err)

	sq, err := OpenSQLite(ctx, filepath.Join(dir, "db", "taskgrid.db"))
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rs, err := OpenRedis(ctx, Options{RedisAddr: mr.Addr()})
	require.NoError(t, err)

	all := map[string]Store{
		DriverFile:   fs,
		DriverSQLite: sq,
		DriverRedis:  rs,
	}
	t.Cleanup(func() {
		for _, s := range all {
			_ = s.Close()
		}
	})
	return all
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "taskGridV2")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Put(ctx, "taskGridV2", []byte(`{"v":1}`)))
			got, err := s.Get(ctx, "taskGridV2")
			require.NoError(t, err)
			assert.Equal(t, `{"v":1}`, string(got))

			// Writes replace the whole value.
			require.NoError(t, s.Put(ctx, "taskGridV2", []byte(`{"v":2}`)))
			got, err = s.Get(ctx, "taskGridV2")
			require.NoError(t, err)
			assert.Equal(t, `{"v":2}`, string(got))

			require.NoError(t, s.Delete(ctx, "taskGridV2"))
			_, err = s.Get(ctx, "taskGridV2")
			assert.True(t, IsNotFound(err))

			// Deleting again is fine.
			assert.NoError(t, s.Delete(ctx, "taskGridV2"))
		})
	}
}

func TestStoreKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put(ctx, "a", []byte("one")))
			require.NoError(t, s.Put(ctx, "b", []byte("two")))

			got, err := s.Get(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, "one", string(got))
		})
	}
}

func TestStoreRejectsEmptyKey(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, s.Put(ctx, " ", []byte("x")))
			_, err := s.Get(ctx, "")
			assert.Error(t, err)
			assert.False(t, IsNotFound(err))
		})
	}
}

func TestFileStoreLayout(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Put(context.Background(), "team/goal", []byte("{}")))
	assert.Equal(t, filepath.Join(dir, "team_goal.json"), s.Path("team/goal"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files should not be left behind")
	assert.Equal(t, "team_goal.json", entries[0].Name())
}

func TestSQLiteStorePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "k", []byte("persisted")))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(got))
}

func TestRedisStoreNamespacesKeys(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	s, err := OpenRedis(ctx, Options{RedisAddr: mr.Addr(), RedisPrefix: "grid"})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(ctx, "taskGridV2", []byte("v")))
	got, err := mr.Get("grid:taskGridV2")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(ctx, Options{Driver: "file", Path: dir})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)
	s.Close()

	s, err = Open(ctx, Options{Driver: "SQLite", Path: filepath.Join(dir, "x.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	s.Close()

	mr := miniredis.RunT(t)
	s, err = Open(ctx, Options{Driver: "redis", RedisAddr: mr.Addr()})
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)
	s.Close()

	_, err = Open(ctx, Options{Driver: "etcd"})
	assert.ErrorContains(t, err, "unknown storage driver")
}

func TestOpenRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := OpenRedis(context.Background(), Options{RedisAddr: addr})
	assert.Error(t, err)
}
