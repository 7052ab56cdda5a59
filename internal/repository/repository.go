package repository

import (
	"github.com/jackc/pgx/v4/pgxpool"

	redisapp "blogforge/internal/storage/redis"
)

// Repository собирает все репозитории поверх одного пула соединений.
type Repository struct {
	Blogs     BlogRepository
	Blocks    BlockRepository
	Assets    AssetRepository
	Relations RelationRepository
	Templates TemplateRepository
	Sessions  SessionRepository
}

func NewRepository(db *pgxpool.Pool, redisClient *redisapp.Client) *Repository {
	return &Repository{
		Blogs:     NewBlogRepository(db),
		Blocks:    NewBlockRepository(db),
		Assets:    NewAssetRepository(db),
		Relations: NewRelationRepository(db),
		Templates: NewTemplateRepository(db),
		Sessions:  NewRedisSessionRepo(redisClient),
	}
}
