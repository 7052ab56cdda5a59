package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"blogforge/internal/domain/models"
	"blogforge/internal/lib/logger/sl"
	storage "blogforge/internal/storage/filestorage"

	"github.com/google/uuid"
)

// ErrMediaUpload surfaces a rejected or failed blob-store write. The
// enclosing save aborts before the item's row is written.
var ErrMediaUpload = errors.New("media upload failed")

// MediaService materializes pending raw attachments: it uploads the bytes
// and rewrites the item to reference the resulting public URL. Ephemeral
// attachment handles are always stripped, uploaded or not.
type MediaService struct {
	log         *slog.Logger
	blobStorage storage.BlobStorage
}

func NewMediaService(log *slog.Logger, blobStorage storage.BlobStorage) *MediaService {
	return &MediaService{
		log:         log,
		blobStorage: blobStorage,
	}
}

// MaterializeCover uploads a pending cover image and rewrites CoverURL in
// place. Posts without a pending cover pass through unchanged.
func (s *MediaService) MaterializeCover(ctx context.Context, post *models.BlogPost) error {
	const op = "media_service.MaterializeCover"

	if post.CoverAttachment == nil {
		return nil
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("author_id", post.AuthorID.String()),
	)

	blogPart := "new"
	if post.ID != uuid.Nil {
		blogPart = post.ID.String()
	}

	path := fmt.Sprintf("%s/covers/%s-%d.%s",
		post.AuthorID, blogPart, time.Now().UnixMilli(), post.CoverAttachment.Ext())

	url, err := s.blobStorage.Put(ctx, path, post.CoverAttachment.Data, true)
	if err != nil {
		log.Error("failed to upload cover", sl.Err(err))

		return fmt.Errorf("%s: %w: %v", op, ErrMediaUpload, err)
	}

	post.CoverURL = url
	post.CoverAttachment = nil

	return nil
}

// MaterializeAsset uploads a pending asset attachment and returns the asset
// referencing the public URL instead of the raw bytes.
func (s *MediaService) MaterializeAsset(ctx context.Context, blogID uuid.UUID, asset models.BlogAsset) (models.BlogAsset, error) {
	const op = "media_service.MaterializeAsset"

	if asset.Attachment == nil {
		return asset, nil
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("blog_id", blogID.String()),
	)

	path := uploadPath(blogID, asset.Type, asset.Attachment.Ext())

	url, err := s.blobStorage.Put(ctx, path, asset.Attachment.Data, true)
	if err != nil {
		log.Error("failed to upload asset", sl.Err(err))

		return asset, fmt.Errorf("%s: %w: %v", op, ErrMediaUpload, err)
	}

	asset.URL = url
	asset.Attachment = nil

	return asset, nil
}

// MaterializeBlock uploads the attachment of a media block. Attachments on
// non-media blocks are dropped without upload: the payload written to the
// store never carries binary handles.
func (s *MediaService) MaterializeBlock(ctx context.Context, blogID uuid.UUID, block models.BlogBlock) (models.BlogBlock, error) {
	const op = "media_service.MaterializeBlock"

	if !block.PendingUpload() {
		block.Content.Attachment = nil
		return block, nil
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("blog_id", blogID.String()),
	)

	kind := block.Content.Kind
	if kind == "" {
		kind = string(block.Type)
	}

	path := uploadPath(blogID, kind, block.Content.Attachment.Ext())

	url, err := s.blobStorage.Put(ctx, path, block.Content.Attachment.Data, true)
	if err != nil {
		log.Error("failed to upload block media", sl.Err(err))

		return block, fmt.Errorf("%s: %w: %v", op, ErrMediaUpload, err)
	}

	block.Content.URL = url
	block.Content.Attachment = nil

	return block, nil
}

func uploadPath(blogID uuid.UUID, kind, ext string) string {
	return fmt.Sprintf("assets/%s/%s-%d-%s.%s",
		blogID, kind, time.Now().UnixMilli(), randomSuffix(), ext)
}

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomSuffix() string {
	b := make([]byte, 8)
	for i := range b {
		b[i] = suffixAlphabet[rand.Intn(len(suffixAlphabet))]
	}
	return string(b)
}
