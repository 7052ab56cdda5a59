package repository

import (
	"context"
	"fmt"

	"blogforge/internal/domain/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type BlockRepo struct {
	db DB
	sb sq.StatementBuilderType
}

func NewBlockRepository(db DB) *BlockRepo {
	return &BlockRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *BlockRepo) ListBlockIDs(ctx context.Context, blogID uuid.UUID) ([]uuid.UUID, error) {
	const op = "repository.block_repository.ListBlockIDs"

	return listChildIDs(ctx, r.db, r.sb, op, "blog_blocks", blogID)
}

func (r *BlockRepo) ListBlocks(ctx context.Context, blogID uuid.UUID) ([]models.BlogBlock, error) {
	const op = "repository.block_repository.ListBlocks"

	query, args, err := r.sb.Select("id", "blog_id", "position", "type", "content").
		From("blog_blocks").
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

	var blocks []models.BlogBlock
	for rows.Next() {
		var block models.BlogBlock
		err := rows.Scan(
			&block.ID,
			&block.BlogID,
			&block.Position,
			&block.Type,
			&block.Content,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		blocks = append(blocks, block)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return blocks, nil
}

func (r *BlockRepo) DeleteBlocks(ctx context.Context, ids []uuid.UUID) error {
	const op = "repository.block_repository.DeleteBlocks"

	return deleteChildRows(ctx, r.db, r.sb, op, "blog_blocks", ids)
}

func (r *BlockRepo) InsertBlock(ctx context.Context, block models.BlogBlock) (uuid.UUID, error) {
	const op = "repository.block_repository.InsertBlock"

	query, args, err := r.sb.Insert("blog_blocks").
		Columns("blog_id", "position", "type", "content").
		Values(block.BlogID, block.Position, block.Type, block.Content).
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

// UpdateBlock обновляет изменяемые поля блока; id и blog_id не трогаем
func (r *BlockRepo) UpdateBlock(ctx context.Context, block models.BlogBlock) error {
	const op = "repository.block_repository.UpdateBlock"

	query, args, err := r.sb.Update("blog_blocks").
		Set("position", block.Position).
		Set("type", block.Type).
		Set("content", block.Content).
		Where(sq.Eq{"id": block.ID}).
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

// Общие помощники для дочерних коллекций

func listChildIDs(ctx context.Context, db DB, sb sq.StatementBuilderType, op, table string, blogID uuid.UUID) ([]uuid.UUID, error) {
	query, args, err := sb.Select("id").
		From(table).
		Where(sq.Eq{"blog_id": blogID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ids, nil
}

func deleteChildRows(ctx context.Context, db DB, sb sq.StatementBuilderType, op, table string, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sb.Delete(table).
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
