package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	ctx := context.Background()

	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	t.Run("OpenMissing", func(t *testing.T) {
		_, err := store.Open(ctx, "missing.jsonl")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("PutThenOpen", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "chunk_00001.jsonl", []byte("line\n")))

		rc, err := store.Open(ctx, "chunk_00001.jsonl")
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, []byte("line\n"), data)
	})

	t.Run("PutNested", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "run-1/chunk_00001.jsonl", []byte("x")))

		names, err := store.List(ctx, "run-1/")
		require.NoError(t, err)
		assert.Equal(t, []string{"run-1/chunk_00001.jsonl"}, names)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "ow.jsonl", []byte("first")))
		require.NoError(t, store.Put(ctx, "ow.jsonl", []byte("second")))

		rc, err := store.Open(ctx, "ow.jsonl")
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), data)
	})

	t.Run("DeleteMissingIsNoop", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, "never-existed.jsonl"))
	})

	t.Run("NoTempFilesLeftBehind", func(t *testing.T) {
		dir := t.TempDir()
		fresh, err := NewLocalStore(dir)
		require.NoError(t, err)

		require.NoError(t, fresh.Put(ctx, "a.jsonl", []byte("data")))

		names, err := fresh.List(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"a.jsonl"}, names)
	})
}
