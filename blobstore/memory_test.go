package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	t.Run("OpenMissing", func(t *testing.T) {
		_, err := store.Open(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("PutThenOpen", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "a.jsonl", []byte("hello")))

		rc, err := store.Open(ctx, "a.jsonl")
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), data)
	})

	t.Run("PutCopiesData", func(t *testing.T) {
		data := []byte("mutable")
		require.NoError(t, store.Put(ctx, "b.jsonl", data))
		data[0] = 'X'

		rc, err := store.Open(ctx, "b.jsonl")
		require.NoError(t, err)
		defer rc.Close()

		got, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, []byte("mutable"), got)
	})

	t.Run("ListByPrefix", func(t *testing.T) {
		fresh := NewMemoryStore()
		require.NoError(t, fresh.Put(ctx, "run/chunk_00001.jsonl", nil))
		require.NoError(t, fresh.Put(ctx, "run/chunk_00002.jsonl", nil))
		require.NoError(t, fresh.Put(ctx, "other/x.jsonl", nil))

		names, err := fresh.List(ctx, "run/")
		require.NoError(t, err)
		assert.Equal(t, []string{"run/chunk_00001.jsonl", "run/chunk_00002.jsonl"}, names)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "gone.jsonl", []byte("x")))
		require.NoError(t, store.Delete(ctx, "gone.jsonl"))

		_, err := store.Open(ctx, "gone.jsonl")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
