package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	storage "blogforge/internal/storage/filestorage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T, maxSize int64) *storage.LocalBlobStorage {
	t.Helper()

	s, err := storage.NewLocalBlobStorage(t.TempDir(), "http://localhost:8080/uploads/", maxSize)
	require.NoError(t, err)

	return s
}

func TestLocalBlobStorage_Put(t *testing.T) {
	ctx := context.Background()

	t.Run("writes file and returns public url", func(t *testing.T) {
		s := newTestStorage(t, 0)

		url, err := s.Put(ctx, "assets/blog-1/pic.png", []byte("png-bytes"), true)

		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080/uploads/assets/blog-1/pic.png", url)

		data, err := os.ReadFile(s.GetFullPath("assets/blog-1/pic.png"))
		require.NoError(t, err)
		assert.Equal(t, []byte("png-bytes"), data)
	})

	t.Run("creates nested directories", func(t *testing.T) {
		s := newTestStorage(t, 0)

		_, err := s.Put(ctx, "a/b/c/d.bin", []byte{1}, true)

		require.NoError(t, err)
		assert.FileExists(t, s.GetFullPath(filepath.Join("a", "b", "c", "d.bin")))
	})

	t.Run("rejects payload over the limit", func(t *testing.T) {
		s := newTestStorage(t, 4)

		_, err := s.Put(ctx, "big.bin", []byte("too large"), true)

		assert.ErrorIs(t, err, storage.ErrFileTooLarge)
	})

	t.Run("refuses to clobber without overwrite", func(t *testing.T) {
		s := newTestStorage(t, 0)

		_, err := s.Put(ctx, "same.txt", []byte("first"), true)
		require.NoError(t, err)

		_, err = s.Put(ctx, "same.txt", []byte("second"), false)
		assert.Error(t, err)

		data, err := os.ReadFile(s.GetFullPath("same.txt"))
		require.NoError(t, err)
		assert.Equal(t, []byte("first"), data)
	})

	t.Run("overwrite replaces content", func(t *testing.T) {
		s := newTestStorage(t, 0)

		_, err := s.Put(ctx, "same.txt", []byte("first"), true)
		require.NoError(t, err)

		_, err = s.Put(ctx, "same.txt", []byte("second"), true)
		require.NoError(t, err)

		data, err := os.ReadFile(s.GetFullPath("same.txt"))
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), data)
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		s := newTestStorage(t, 0)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := s.Put(cancelled, "x.txt", []byte{1}, true)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLocalBlobStorage_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes stored file", func(t *testing.T) {
		s := newTestStorage(t, 0)

		_, err := s.Put(ctx, "gone.txt", []byte{1}, true)
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, "gone.txt"))
		assert.NoFileExists(t, s.GetFullPath("gone.txt"))
	})

	t.Run("missing file", func(t *testing.T) {
		s := newTestStorage(t, 0)

		err := s.Delete(ctx, "never-there.txt")

		assert.ErrorIs(t, err, storage.ErrFileNotFound)
	})
}

func TestLocalBlobStorage_BaseURL(t *testing.T) {
	s := newTestStorage(t, 0)

	assert.Equal(t, "http://localhost:8080/uploads", s.BaseURL())
}
