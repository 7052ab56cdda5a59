package repository

import (
	"context"
	"fmt"

	"blogforge/internal/domain/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type RelationRepo struct {
	db DB
	sb sq.StatementBuilderType
}

func NewRelationRepository(db DB) *RelationRepo {
	return &RelationRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *RelationRepo) ListRelationIDs(ctx context.Context, blogID uuid.UUID) ([]uuid.UUID, error) {
	const op = "repository.relation_repository.ListRelationIDs"

	return listChildIDs(ctx, r.db, r.sb, op, "blog_relations", blogID)
}

func (r *RelationRepo) ListRelations(ctx context.Context, blogID uuid.UUID) ([]models.BlogRelation, error) {
	const op = "repository.relation_repository.ListRelations"

	query, args, err := r.sb.Select("id", "blog_id", "related_blog_id", "position").
		From("blog_relations").
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

	var relations []models.BlogRelation
	for rows.Next() {
		var relation models.BlogRelation
		err := rows.Scan(
			&relation.ID,
			&relation.BlogID,
			&relation.RelatedBlogID,
			&relation.Position,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		relations = append(relations, relation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return relations, nil
}

func (r *RelationRepo) DeleteRelations(ctx context.Context, ids []uuid.UUID) error {
	const op = "repository.relation_repository.DeleteRelations"

	return deleteChildRows(ctx, r.db, r.sb, op, "blog_relations", ids)
}

func (r *RelationRepo) InsertRelation(ctx context.Context, relation models.BlogRelation) (uuid.UUID, error) {
	const op = "repository.relation_repository.InsertRelation"

	query, args, err := r.sb.Insert("blog_relations").
		Columns("blog_id", "related_blog_id", "position").
		Values(relation.BlogID, relation.RelatedBlogID, relation.Position).
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

// UpdateRelation обновляет целевой пост и позицию ребра; id и blog_id не трогаем
func (r *RelationRepo) UpdateRelation(ctx context.Context, relation models.BlogRelation) error {
	const op = "repository.relation_repository.UpdateRelation"

	query, args, err := r.sb.Update("blog_relations").
		Set("related_blog_id", relation.RelatedBlogID).
		Set("position", relation.Position).
		Where(sq.Eq{"id": relation.ID}).
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
