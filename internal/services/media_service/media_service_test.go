package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"testing"

	"blogforge/internal/domain/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// fakeBlobStorage записывает загрузки в память
type fakeBlobStorage struct {
	puts    map[string][]byte
	baseURL string
	err     error
}

func newFakeBlobStorage() *fakeBlobStorage {
	return &fakeBlobStorage{
		puts:    make(map[string][]byte),
		baseURL: "https://cdn.example.com",
	}
}

func (f *fakeBlobStorage) Put(ctx context.Context, blobPath string, data []byte, overwrite bool) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.puts[blobPath] = data
	return fmt.Sprintf("%s/%s", f.baseURL, blobPath), nil
}

func (f *fakeBlobStorage) Delete(ctx context.Context, blobPath string) error {
	delete(f.puts, blobPath)
	return nil
}

func (f *fakeBlobStorage) BaseURL() string {
	return f.baseURL
}

func TestMediaService_MaterializeCover(t *testing.T) {
	ctx := context.Background()

	t.Run("pending cover is uploaded and stripped", func(t *testing.T) {
		blob := newFakeBlobStorage()
		service := NewMediaService(slog.Default(), blob)

		post := &models.BlogPost{
			ID:       uuid.New(),
			AuthorID: uuid.New(),
			CoverAttachment: &models.RawAttachment{
				Filename: "cover.png",
				Data:     []byte("png-bytes"),
			},
		}

		err := service.MaterializeCover(ctx, post)

		assert.NoError(t, err)
		assert.Nil(t, post.CoverAttachment)
		assert.Contains(t, post.CoverURL, blob.baseURL)
		assert.Len(t, blob.puts, 1)

		pattern := regexp.MustCompile(fmt.Sprintf(`^%s/covers/%s-\d+\.png$`, post.AuthorID, post.ID))
		for path := range blob.puts {
			assert.Regexp(t, pattern, path)
		}
	})

	t.Run("new post uses placeholder path segment", func(t *testing.T) {
		blob := newFakeBlobStorage()
		service := NewMediaService(slog.Default(), blob)

		post := &models.BlogPost{
			AuthorID: uuid.New(),
			CoverAttachment: &models.RawAttachment{
				Filename: "cover.jpg",
				Data:     []byte("jpg-bytes"),
			},
		}

		err := service.MaterializeCover(ctx, post)

		assert.NoError(t, err)
		for path := range blob.puts {
			assert.Regexp(t, `/covers/new-\d+\.jpg$`, path)
		}
	})

	t.Run("no pending cover is a no-op", func(t *testing.T) {
		blob := newFakeBlobStorage()
		service := NewMediaService(slog.Default(), blob)

		post := &models.BlogPost{CoverURL: "https://cdn.example.com/existing.png"}

		err := service.MaterializeCover(ctx, post)

		assert.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/existing.png", post.CoverURL)
		assert.Empty(t, blob.puts)
	})

	t.Run("upload failure wraps ErrMediaUpload", func(t *testing.T) {
		blob := newFakeBlobStorage()
		blob.err = errors.New("bucket unavailable")
		service := NewMediaService(slog.Default(), blob)

		post := &models.BlogPost{
			AuthorID:        uuid.New(),
			CoverAttachment: &models.RawAttachment{Filename: "c.png", Data: []byte{1}},
		}

		err := service.MaterializeCover(ctx, post)

		assert.ErrorIs(t, err, ErrMediaUpload)
	})
}

func TestMediaService_MaterializeAsset(t *testing.T) {
	ctx := context.Background()
	blogID := uuid.New()

	t.Run("attachment uploaded, url rewritten", func(t *testing.T) {
		blob := newFakeBlobStorage()
		service := NewMediaService(slog.Default(), blob)

		asset := models.BlogAsset{
			Type:       "image",
			Attachment: &models.RawAttachment{Filename: "photo.webp", Data: []byte("webp")},
		}

		got, err := service.MaterializeAsset(ctx, blogID, asset)

		assert.NoError(t, err)
		assert.Nil(t, got.Attachment)
		assert.Contains(t, got.URL, blob.baseURL)

		pattern := regexp.MustCompile(fmt.Sprintf(`^assets/%s/image-\d+-[a-z0-9]{8}\.webp$`, blogID))
		for path := range blob.puts {
			assert.Regexp(t, pattern, path)
		}
	})

	t.Run("asset without attachment passes through", func(t *testing.T) {
		blob := newFakeBlobStorage()
		service := NewMediaService(slog.Default(), blob)

		asset := models.BlogAsset{Type: "image", URL: "https://cdn.example.com/kept.png"}

		got, err := service.MaterializeAsset(ctx, blogID, asset)

		assert.NoError(t, err)
		assert.Equal(t, asset.URL, got.URL)
		assert.Empty(t, blob.puts)
	})
}

func TestMediaService_MaterializeBlock(t *testing.T) {
	ctx := context.Background()
	blogID := uuid.New()

	t.Run("media block uploads and rewrites content url", func(t *testing.T) {
		blob := newFakeBlobStorage()
		service := NewMediaService(slog.Default(), blob)

		block := models.BlogBlock{
			Type: models.BlockTypeMedia,
			Content: models.BlockContent{
				Kind:       "image",
				Attachment: &models.RawAttachment{Filename: "pic.png", Data: []byte("png")},
			},
		}

		got, err := service.MaterializeBlock(ctx, blogID, block)

		assert.NoError(t, err)
		assert.Nil(t, got.Content.Attachment)
		assert.Contains(t, got.Content.URL, blob.baseURL)
	})

	t.Run("attachment on text block is dropped without upload", func(t *testing.T) {
		blob := newFakeBlobStorage()
		service := NewMediaService(slog.Default(), blob)

		block := models.BlogBlock{
			Type: models.BlockTypeText,
			Content: models.BlockContent{
				Text:       "hello",
				Attachment: &models.RawAttachment{Filename: "junk.bin", Data: []byte{0}},
			},
		}

		got, err := service.MaterializeBlock(ctx, blogID, block)

		assert.NoError(t, err)
		assert.Nil(t, got.Content.Attachment)
		assert.Empty(t, got.Content.URL)
		assert.Empty(t, blob.puts)
	})
}
