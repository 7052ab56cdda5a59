package repository

import (
	"context"
	"time"

	"blogforge/internal/domain/models"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

// DB is the slice of pgxpool.Pool the repositories use.
type DB interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type BlogRepository interface {
	SaveBlogPost(ctx context.Context, post models.BlogPost) (uuid.UUID, error)
	UpdateBlogPost(ctx context.Context, postID uuid.UUID, updates map[string]interface{}) error
	DeleteBlogPost(ctx context.Context, postID uuid.UUID) error
	GetBlogPostByID(ctx context.Context, postID uuid.UUID) (*models.BlogPost, error)
	GetBlogPostBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.BlogPostSummary, error)
	ListPublished(ctx context.Context, limit, offset uint64) ([]models.BlogPostSummary, error)
	ListPublishedOrdered(ctx context.Context, limit, offset uint64, newestFirst bool) ([]models.BlogPostSummary, error)
	UpdateSelection(ctx context.Context, postID uuid.UUID, value bool) error
	GetRelatedSummaries(ctx context.Context, postID uuid.UUID) ([]models.RelatedPostSummary, error)
}

type BlockRepository interface {
	ListBlockIDs(ctx context.Context, blogID uuid.UUID) ([]uuid.UUID, error)
	ListBlocks(ctx context.Context, blogID uuid.UUID) ([]models.BlogBlock, error)
	DeleteBlocks(ctx context.Context, ids []uuid.UUID) error
	InsertBlock(ctx context.Context, block models.BlogBlock) (uuid.UUID, error)
	UpdateBlock(ctx context.Context, block models.BlogBlock) error
}

type AssetRepository interface {
	ListAssetIDs(ctx context.Context, blogID uuid.UUID) ([]uuid.UUID, error)
	ListAssets(ctx context.Context, blogID uuid.UUID) ([]models.BlogAsset, error)
	DeleteAssets(ctx context.Context, ids []uuid.UUID) error
	InsertAsset(ctx context.Context, asset models.BlogAsset) (uuid.UUID, error)
	UpdateAsset(ctx context.Context, asset models.BlogAsset) error
}

type RelationRepository interface {
	ListRelationIDs(ctx context.Context, blogID uuid.UUID) ([]uuid.UUID, error)
	ListRelations(ctx context.Context, blogID uuid.UUID) ([]models.BlogRelation, error)
	DeleteRelations(ctx context.Context, ids []uuid.UUID) error
	InsertRelation(ctx context.Context, relation models.BlogRelation) (uuid.UUID, error)
	UpdateRelation(ctx context.Context, relation models.BlogRelation) error
}

type TemplateRepository interface {
	SaveTemplate(ctx context.Context, template models.BlockTemplate) (uuid.UUID, error)
	UpdateTemplate(ctx context.Context, templateID uuid.UUID, updates map[string]interface{}) error
	GetTemplateByID(ctx context.Context, templateID uuid.UUID) (*models.BlockTemplate, error)
	ListTemplates(ctx context.Context) ([]models.BlockTemplate, error)
	DeleteTemplate(ctx context.Context, templateID uuid.UUID) error
}

type SessionRepository interface {
	SaveSession(ctx context.Context, userID, token string, exp time.Duration) error
	SessionActive(ctx context.Context, userID, token string) (bool, error)
	DeleteSession(ctx context.Context, userID, token string) error
	DeleteAllUserSessions(ctx context.Context, userID string) error
}
