package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blogforge/internal/domain/models"
	"blogforge/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
)

type TemplateRepo struct {
	db DB
	sb sq.StatementBuilderType
}

func NewTemplateRepository(db DB) *TemplateRepo {
	return &TemplateRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var templateColumns = []string{
	"id", "name", "code", "description", "blocks", "creator_id",
	"created_at", "updated_at",
}

func (r *TemplateRepo) SaveTemplate(ctx context.Context, template models.BlockTemplate) (uuid.UUID, error) {
	const op = "repository.template_repository.SaveTemplate"

	query, args, err := r.sb.Insert("blog_block_templates").
		Columns("name", "code", "description", "blocks", "creator_id").
		Values(template.Name, template.Code, template.Description, template.Blocks, template.CreatorID).
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

func (r *TemplateRepo) UpdateTemplate(ctx context.Context, templateID uuid.UUID, updates map[string]interface{}) error {
	const op = "repository.template_repository.UpdateTemplate"

	// id и creator_id неизменяемы
	allowedFields := map[string]bool{
		"name":        true,
		"code":        true,
		"description": true,
		"blocks":      true,
	}

	if len(updates) == 0 {
		return fmt.Errorf("%s: no fields to update", op)
	}

	updateBuilder := r.sb.Update("blog_block_templates").
		Set("updated_at", time.Now())

	for field, value := range updates {
		if !allowedFields[field] {
			return fmt.Errorf("%s: field '%s' is not allowed for update", op, field)
		}

		updateBuilder = updateBuilder.Set(field, value)
	}

	updateBuilder = updateBuilder.Where(sq.Eq{"id": templateID})

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

func (r *TemplateRepo) GetTemplateByID(ctx context.Context, templateID uuid.UUID) (*models.BlockTemplate, error) {
	const op = "repository.template_repository.GetTemplateByID"

	query, args, err := r.sb.Select(templateColumns...).
		From("blog_block_templates").
		Where(sq.Eq{"id": templateID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var template models.BlockTemplate
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&template.ID,
		&template.Name,
		&template.Code,
		&template.Description,
		&template.Blocks,
		&template.CreatorID,
		&template.CreatedAt,
		&template.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &template, nil
}

func (r *TemplateRepo) ListTemplates(ctx context.Context) ([]models.BlockTemplate, error) {
	const op = "repository.template_repository.ListTemplates"

	query, args, err := r.sb.Select(templateColumns...).
		From("blog_block_templates").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var templates []models.BlockTemplate
	for rows.Next() {
		var template models.BlockTemplate
		err := rows.Scan(
			&template.ID,
			&template.Name,
			&template.Code,
			&template.Description,
			&template.Blocks,
			&template.CreatorID,
			&template.CreatedAt,
			&template.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		templates = append(templates, template)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return templates, nil
}

func (r *TemplateRepo) DeleteTemplate(ctx context.Context, templateID uuid.UUID) error {
	const op = "repository.template_repository.DeleteTemplate"

	query, args, err := r.sb.Delete("blog_block_templates").
		Where(sq.Eq{"id": templateID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
