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

type BlogRepo struct {
	db DB
	sb sq.StatementBuilderType
}

func NewBlogRepository(db DB) *BlogRepo {
	return &BlogRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var blogColumns = []string{
	"id", "title", "body", "slug", "template", "block_template_id",
	"cover_url", "author_id", "status", "published_at",
	"to_be_published_date", "selection", "created_at", "updated_at",
}

func (b *BlogRepo) SaveBlogPost(ctx context.Context, post models.BlogPost) (uuid.UUID, error) {
	const op = "repository.blog_repository.SaveBlogPost"

	query, args, err := b.sb.Insert("blogs").
		Columns(
			"title",
			"body",
			"slug",
			"template",
			"block_template_id",
			"cover_url",
			"author_id",
			"status",
			"published_at",
			"to_be_published_date",
			"selection",
		).
		Values(
			post.Title,
			post.Body,
			post.Slug,
			post.Template,
			post.BlockTemplateID,
			post.CoverURL,
			post.AuthorID,
			post.Status,
			post.PublishedAt,
			post.ToBePublishedAt,
			post.Selection,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	var id uuid.UUID
	err = b.db.QueryRow(ctx, query, args...).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (b *BlogRepo) UpdateBlogPost(ctx context.Context, postID uuid.UUID, updates map[string]interface{}) error {
	const op = "repository.blog_repository.UpdateBlogPost"

	// slug и author_id неизменяемы после создания
	allowedFields := map[string]bool{
		"title":                true,
		"body":                 true,
		"template":             true,
		"block_template_id":    true,
		"cover_url":            true,
		"status":               true,
		"published_at":         true,
		"to_be_published_date": true,
		"selection":            true,
	}

	if len(updates) == 0 {
		return fmt.Errorf("%s: no fields to update", op)
	}

	updateBuilder := b.sb.Update("blogs").
		Set("updated_at", time.Now())

	for field, value := range updates {
		if !allowedFields[field] {
			return fmt.Errorf("%s: field '%s' is not allowed for update", op, field)
		}

		updateBuilder = updateBuilder.Set(field, value)
	}

	updateBuilder = updateBuilder.Where(sq.Eq{"id": postID})

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	result, err := b.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

func (b *BlogRepo) DeleteBlogPost(ctx context.Context, postID uuid.UUID) error {
	const op = "repository.blog_repository.DeleteBlogPost"

	query, args, err := b.sb.Delete("blogs").
		Where(sq.Eq{"id": postID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	result, err := b.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

func (b *BlogRepo) GetBlogPostByID(ctx context.Context, postID uuid.UUID) (*models.BlogPost, error) {
	const op = "repository.blog_repository.GetBlogPostByID"

	return b.getBlogPost(ctx, op, sq.Eq{"id": postID})
}

func (b *BlogRepo) GetBlogPostBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	const op = "repository.blog_repository.GetBlogPostBySlug"

	return b.getBlogPost(ctx, op, sq.Eq{"slug": slug})
}

func (b *BlogRepo) getBlogPost(ctx context.Context, op string, where sq.Eq) (*models.BlogPost, error) {
	query, args, err := b.sb.Select(blogColumns...).
		From("blogs").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var post models.BlogPost
	err = b.db.QueryRow(ctx, query, args...).Scan(
		&post.ID,
		&post.Title,
		&post.Body,
		&post.Slug,
		&post.Template,
		&post.BlockTemplateID,
		&post.CoverURL,
		&post.AuthorID,
		&post.Status,
		&post.PublishedAt,
		&post.ToBePublishedAt,
		&post.Selection,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &post, nil
}

func (b *BlogRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	const op = "repository.blog_repository.SlugExists"

	query, args, err := b.sb.Select("1").
		From("blogs").
		Where(sq.Eq{"slug": slug}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	var one int
	err = b.db.QueryRow(ctx, query, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return true, nil
}

var summaryColumns = []string{
	"id", "title", "slug", "status", "template", "cover_url",
	"selection", "published_at", "created_at", "updated_at",
}

func (b *BlogRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.BlogPostSummary, error) {
	const op = "repository.blog_repository.ListByAuthor"

	builder := b.sb.Select(summaryColumns...).
		From("blogs").
		Where(sq.Eq{"author_id": authorID}).
		OrderBy("updated_at DESC")

	return b.listSummaries(ctx, op, builder)
}

func (b *BlogRepo) ListPublished(ctx context.Context, limit, offset uint64) ([]models.BlogPostSummary, error) {
	const op = "repository.blog_repository.ListPublished"

	builder := b.sb.Select(summaryColumns...).
		From("blogs").
		Where(sq.Eq{"status": models.StatusPublished}).
		OrderBy("published_at DESC").
		Limit(limit).
		Offset(offset)

	return b.listSummaries(ctx, op, builder)
}

func (b *BlogRepo) ListPublishedOrdered(ctx context.Context, limit, offset uint64, newestFirst bool) ([]models.BlogPostSummary, error) {
	const op = "repository.blog_repository.ListPublishedOrdered"

	createdOrder := "created_at ASC"
	if newestFirst {
		createdOrder = "created_at DESC"
	}

	builder := b.sb.Select(summaryColumns...).
		From("blogs").
		Where(sq.Eq{"status": models.StatusPublished}).
		OrderBy("selection DESC", createdOrder).
		Limit(limit).
		Offset(offset)

	return b.listSummaries(ctx, op, builder)
}

func (b *BlogRepo) listSummaries(ctx context.Context, op string, builder sq.SelectBuilder) ([]models.BlogPostSummary, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := b.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var posts []models.BlogPostSummary
	for rows.Next() {
		var post models.BlogPostSummary
		err := rows.Scan(
			&post.ID,
			&post.Title,
			&post.Slug,
			&post.Status,
			&post.Template,
			&post.CoverURL,
			&post.Selection,
			&post.PublishedAt,
			&post.CreatedAt,
			&post.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return posts, nil
}

func (b *BlogRepo) UpdateSelection(ctx context.Context, postID uuid.UUID, value bool) error {
	const op = "repository.blog_repository.UpdateSelection"

	query, args, err := b.sb.Update("blogs").
		Set("selection", value).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": postID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	result, err := b.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// GetRelatedSummaries возвращает публичные проекции связанных постов
// в порядке position
func (b *BlogRepo) GetRelatedSummaries(ctx context.Context, postID uuid.UUID) ([]models.RelatedPostSummary, error) {
	const op = "repository.blog_repository.GetRelatedSummaries"

	query, args, err := b.sb.Select(
		"blogs.id", "blogs.title", "blogs.slug", "blogs.cover_url",
		"blogs.published_at", "blogs.status",
	).
		From("blog_relations").
		Join("blogs ON blogs.id = blog_relations.related_blog_id").
		Where(sq.Eq{"blog_relations.blog_id": postID}).
		OrderBy("blog_relations.position ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := b.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var related []models.RelatedPostSummary
	for rows.Next() {
		var summary models.RelatedPostSummary
		err := rows.Scan(
			&summary.ID,
			&summary.Title,
			&summary.Slug,
			&summary.CoverURL,
			&summary.PublishedAt,
			&summary.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		related = append(related, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return related, nil
}
