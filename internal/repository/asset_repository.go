package repository

import (
	"context"
	"fmt"

	"blogforge/internal/domain/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type AssetRepo struct {
	db DB
	sb sq.StatementBuilderType
}

func NewAssetRepository(db DB) *AssetRepo {
	return &AssetRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *AssetRepo) ListAssetIDs(ctx context.Context, blogID uuid.UUID) ([]uuid.UUID, error) {
	const op = "repository.asset_repository.ListAssetIDs"

	return listChildIDs(ctx, r.db, r.sb, op, "blog_assets", blogID)
}

func (r *AssetRepo) ListAssets(ctx context.Context, blogID uuid.UUID) ([]models.BlogAsset, error) {
	const op = "repository.asset_repository.ListAssets"

	query, args, err := r.sb.Select("id", "blog_id", "type", "url", "caption", "position", "metadata").
		From("blog_assets").
		Where(sq.Eq{"blog_id": blogID}).
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var assets []models.BlogAsset
	for rows.Next() {
		var asset models.BlogAsset
		err := rows.Scan(
			&asset.ID,
			&asset.BlogID,
			&asset.Type,
			&asset.URL,
			&asset.Caption,
			&asset.Position,
			&asset.Metadata,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		assets = append(assets, asset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return assets, nil
}

func (r *AssetRepo) DeleteAssets(ctx context.Context, ids []uuid.UUID) error {
	const op = "repository.asset_repository.DeleteAssets"

	return deleteChildRows(ctx, r.db, r.sb, op, "blog_assets", ids)
}

func (r *AssetRepo) InsertAsset(ctx context.Context, asset models.BlogAsset) (uuid.UUID, error) {
	const op = "repository.asset_repository.InsertAsset"

	query, args, err := r.sb.Insert("blog_assets").
		Columns("blog_id", "type", "url", "caption", "position", "metadata").
		Values(asset.BlogID, asset.Type, asset.URL, asset.Caption, asset.Position, asset.Metadata).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	var id uuid.UUID
	err = r.db.QueryRow(ctx, query, args...).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// UpdateAsset обновляет изменяемые поля ассета; id и blog_id не трогаем
func (r *AssetRepo) UpdateAsset(ctx context.Context, asset models.BlogAsset) error {
	const op = "repository.asset_repository.UpdateAsset"

	query, args, err := r.sb.Update("blog_assets").
		Set("type", asset.Type).
		Set("url", asset.URL).
		Set("caption", asset.Caption).
		Set("position", asset.Position).
		Set("metadata", asset.Metadata).
		Where(sq.Eq{"id": asset.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
