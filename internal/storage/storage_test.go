// AngelaMos | 2026
// storage_test.go

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]KV {
	t.Helper()
	file, err := NewFile(filepath.Join(t.TempDir(), "kv"))
	require.NoError(t, err)

	return map[string]KV{
		"memory": NewMemory(),
		"file":   file,
	}
}

func TestKVRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := kv.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrKeyNotFound)

			require.NoError(t, kv.Set(ctx, "learnhub:db", []byte(`{"users":[]}`)))
			got, err := kv.Get(ctx, "learnhub:db")
			require.NoError(t, err)
			assert.JSONEq(t, `{"users":[]}`, string(got))

			require.NoError(t, kv.Set(ctx, "learnhub:db", []byte(`{"users":[1]}`)))
			got, err = kv.Get(ctx, "learnhub:db")
			require.NoError(t, err)
			assert.JSONEq(t, `{"users":[1]}`, string(got))

			require.NoError(t, kv.Delete(ctx, "learnhub:db"))
			require.NoError(t, kv.Delete(ctx, "learnhub:db"))
			_, err = kv.Get(ctx, "learnhub:db")
			assert.ErrorIs(t, err, ErrKeyNotFound)

			assert.NoError(t, kv.Ping(ctx))
			assert.Equal(t, name, kv.Name())
		})
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

	value := []byte("abc")
	require.NoError(t, kv.Set(ctx, "k", value))
	value[0] = 'z'

	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFileKeysStayInsideDir(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFile(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(kv.path("../../etc/passwd")))
	assert.Equal(t, dir, filepath.Dir(kv.path("learnhub:session")))
}
