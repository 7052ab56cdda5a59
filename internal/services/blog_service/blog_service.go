package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"blogforge/internal/domain/models"
	"blogforge/internal/lib/logger/sl"
	"blogforge/internal/repository"
	"blogforge/internal/storage"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

var (
	ErrTitleRequired = errors.New("post title is required")
	ErrPostNotFound  = errors.New("post not found")
)

// IdentityProvider resolves the acting principal for a request.
type IdentityProvider interface {
	CurrentUser(ctx context.Context) (models.User, error)
}

// Materializer uploads pending raw attachments and rewrites items to carry
// public URLs instead of binary payloads.
type Materializer interface {
	MaterializeCover(ctx context.Context, post *models.BlogPost) error
	MaterializeAsset(ctx context.Context, blogID uuid.UUID, asset models.BlogAsset) (models.BlogAsset, error)
	MaterializeBlock(ctx context.Context, blogID uuid.UUID, block models.BlogBlock) (models.BlogBlock, error)
}

// SaveOptions carry the caller's publish intent for a save. PublishNow wins
// over ToBePublishedAt when both are set.
type SaveOptions struct {
	PublishNow      bool
	ToBePublishedAt *time.Time
}

type BlogService struct {
	log       *slog.Logger
	repo      repository.BlogRepository
	blocks    repository.BlockRepository
	assets    repository.AssetRepository
	relations repository.RelationRepository
	templates repository.TemplateRepository
	identity  IdentityProvider
	media     Materializer

	// ownPosts keeps each author's admin listing warm so selection toggles
	// can apply optimistically without a round trip.
	ownPosts *cache.Cache
}

func NewBlogService(
	log *slog.Logger,
	repo repository.BlogRepository,
	blocks repository.BlockRepository,
	assets repository.AssetRepository,
	relations repository.RelationRepository,
	templates repository.TemplateRepository,
	identity IdentityProvider,
	media Materializer,
) *BlogService {
	return &BlogService{
		log:       log,
		repo:      repo,
		blocks:    blocks,
		assets:    assets,
		relations: relations,
		templates: templates,
		identity:  identity,
		media:     media,
		ownPosts:  cache.New(5*time.Minute, 10*time.Minute),
	}
}

// SaveBlog создает или обновляет пост вместе с дочерними коллекциями.
// A nil child slice leaves that collection untouched; an empty non-nil
// slice clears it. The slug is allocated once on create and never changes
// afterwards, even when the title does.
func (s *BlogService) SaveBlog(ctx context.Context, post models.BlogPost, opts SaveOptions) (*models.BlogPost, error) {
	const op = "blog_service.SaveBlog"

	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("user_id", user.ID.String()),
	)

	post.Title = strings.TrimSpace(post.Title)
	if post.Title == "" {
		log.Warn("rejected save without title")

		return nil, fmt.Errorf("%s: %w", op, ErrTitleRequired)
	}

	isNew := post.ID == uuid.Nil

	if isNew {
		post.AuthorID = user.ID
		resolvePublishState(&post, opts, nil)

		if err := s.media.MaterializeCover(ctx, &post); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		post.Slug, err = s.allocateSlug(ctx, post.Title)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		post.ID, err = s.repo.SaveBlogPost(ctx, post)
		if err != nil {
			log.Error("failed to create post", sl.Err(err))

			return nil, fmt.Errorf("%s: %w", op, err)
		}

		log.Info("post created",
			slog.String("post_id", post.ID.String()),
			slog.String("slug", post.Slug),
		)
	} else {
		existing, err := s.repo.GetBlogPostByID(ctx, post.ID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("%s: %w", op, ErrPostNotFound)
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		resolvePublishState(&post, opts, existing)

		if err := s.media.MaterializeCover(ctx, &post); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		// slug и author_id остаются от создания
		updates := map[string]interface{}{
			"title":                post.Title,
			"body":                 post.Body,
			"template":             post.Template,
			"block_template_id":    post.BlockTemplateID,
			"cover_url":            post.CoverURL,
			"status":               post.Status,
			"published_at":         post.PublishedAt,
			"to_be_published_date": post.ToBePublishedAt,
		}

		if err := s.repo.UpdateBlogPost(ctx, post.ID, updates); err != nil {
			log.Error("failed to update post", sl.Err(err))

			return nil, fmt.Errorf("%s: %w", op, err)
		}

		log.Info("post updated", slog.String("post_id", post.ID.String()))
	}

	if err := s.reconcileChildren(ctx, post); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	saved, err := s.getJoined(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.refreshOwnPosts(ctx, user.ID)

	return saved, nil
}

// resolvePublishState applies the publish intent: an explicit publish stamps
// published_at once and clears any pending schedule, a schedule keeps the
// post a draft with the date stored for editors, anything else takes the
// status and published_at the caller submitted (defaulting an empty status
// to draft).
func resolvePublishState(post *models.BlogPost, opts SaveOptions, existing *models.BlogPost) {
	switch {
	case opts.PublishNow:
		post.Status = models.StatusPublished
		post.ToBePublishedAt = nil
		if existing != nil && existing.PublishedAt != nil {
			post.PublishedAt = existing.PublishedAt
		} else {
			now := time.Now()
			post.PublishedAt = &now
		}
	case opts.ToBePublishedAt != nil:
		// the schedule is advisory only: nothing flips the status later
		post.Status = models.StatusDraft
		post.PublishedAt = nil
		post.ToBePublishedAt = opts.ToBePublishedAt
	default:
		if post.Status == "" {
			post.Status = models.StatusDraft
		}
	}
}

// reconcileChildren converges stored blocks, assets and relations to the
// submitted state, in that fixed order. Nil slices are skipped entirely.
func (s *BlogService) reconcileChildren(ctx context.Context, post models.BlogPost) error {
	const op = "blog_service.reconcileChildren"

	log := s.log.With(
		slog.String("op", op),
		slog.String("post_id", post.ID.String()),
	)

	if post.Blocks != nil {
		err := reconcileCollection(ctx, post.ID, post.Blocks, collectionOps[models.BlogBlock]{
			id:      func(b models.BlogBlock) uuid.UUID { return b.ID },
			listIDs: s.blocks.ListBlockIDs,
			deleteIDs: func(ctx context.Context, ids []uuid.UUID) error {
				return s.blocks.DeleteBlocks(ctx, ids)
			},
			prepare: func(ctx context.Context, parentID uuid.UUID, b models.BlogBlock) (models.BlogBlock, error) {
				b.BlogID = parentID
				return s.media.MaterializeBlock(ctx, parentID, b)
			},
			insert: func(ctx context.Context, parentID uuid.UUID, b models.BlogBlock) error {
				_, err := s.blocks.InsertBlock(ctx, b)
				return err
			},
			update: s.blocks.UpdateBlock,
		})
		if err != nil {
			log.Error("failed to reconcile blocks", sl.Err(err))

			return fmt.Errorf("%s: blocks: %w", op, err)
		}
	}

	if post.Assets != nil {
		err := reconcileCollection(ctx, post.ID, post.Assets, collectionOps[models.BlogAsset]{
			id:      func(a models.BlogAsset) uuid.UUID { return a.ID },
			listIDs: s.assets.ListAssetIDs,
			deleteIDs: func(ctx context.Context, ids []uuid.UUID) error {
				return s.assets.DeleteAssets(ctx, ids)
			},
			prepare: func(ctx context.Context, parentID uuid.UUID, a models.BlogAsset) (models.BlogAsset, error) {
				a.BlogID = parentID
				return s.media.MaterializeAsset(ctx, parentID, a)
			},
			insert: func(ctx context.Context, parentID uuid.UUID, a models.BlogAsset) error {
				_, err := s.assets.InsertAsset(ctx, a)
				return err
			},
			update: s.assets.UpdateAsset,
		})
		if err != nil {
			log.Error("failed to reconcile assets", sl.Err(err))

			return fmt.Errorf("%s: assets: %w", op, err)
		}
	}

	if post.Relations != nil {
		err := reconcileCollection(ctx, post.ID, post.Relations, collectionOps[models.BlogRelation]{
			id:      func(r models.BlogRelation) uuid.UUID { return r.ID },
			listIDs: s.relations.ListRelationIDs,
			deleteIDs: func(ctx context.Context, ids []uuid.UUID) error {
				return s.relations.DeleteRelations(ctx, ids)
			},
			prepare: func(ctx context.Context, parentID uuid.UUID, r models.BlogRelation) (models.BlogRelation, error) {
				r.BlogID = parentID
				return r, nil
			},
			insert: func(ctx context.Context, parentID uuid.UUID, r models.BlogRelation) error {
				_, err := s.relations.InsertRelation(ctx, r)
				return err
			},
			update: s.relations.UpdateRelation,
		})
		if err != nil {
			log.Error("failed to reconcile relations", sl.Err(err))

			return fmt.Errorf("%s: relations: %w", op, err)
		}
	}

	return nil
}

// Unpublish возвращает пост в черновики. Child collections stay as they are.
func (s *BlogService) Unpublish(ctx context.Context, postID uuid.UUID) (*models.BlogPost, error) {
	const op = "blog_service.Unpublish"

	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("post_id", postID.String()),
	)

	updates := map[string]interface{}{
		"status":       models.StatusDraft,
		"published_at": nil,
	}

	if err := s.repo.UpdateBlogPost(ctx, postID, updates); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrPostNotFound)
		}
		log.Error("failed to unpublish post", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("post unpublished")

	s.refreshOwnPosts(ctx, user.ID)

	return s.getJoined(ctx, postID)
}

// Delete удаляет пост; дочерние строки уходят каскадом на уровне схемы.
func (s *BlogService) Delete(ctx context.Context, postID uuid.UUID) error {
	const op = "blog_service.Delete"

	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.DeleteBlogPost(ctx, postID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrPostNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.ownPosts.Delete(user.ID.String())

	return nil
}

// GetByID returns the post with its full composed state: blocks, assets,
// relations and the resolved block template.
func (s *BlogService) GetByID(ctx context.Context, postID uuid.UUID) (*models.BlogPost, error) {
	const op = "blog_service.GetByID"

	post, err := s.getJoined(ctx, postID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrPostNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return post, nil
}

// GetBySlug is the public read path. On top of the composed state it
// resolves related posts into lightweight summaries; a failing projection
// degrades to an empty list rather than failing the read.
func (s *BlogService) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	const op = "blog_service.GetBySlug"

	log := s.log.With(
		slog.String("op", op),
		slog.String("slug", slug),
	)

	post, err := s.repo.GetBlogPostBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrPostNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.attachChildren(ctx, post); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	related, err := s.repo.GetRelatedSummaries(ctx, post.ID)
	if err != nil {
		log.Warn("failed to load related posts", sl.Err(err))

		related = []models.RelatedPostSummary{}
	}
	post.RelatedPosts = related

	return post, nil
}

// ListOwn returns the caller's posts, newest first, from cache when warm.
func (s *BlogService) ListOwn(ctx context.Context) ([]models.BlogPostSummary, error) {
	const op = "blog_service.ListOwn"

	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if cached, ok := s.ownPosts.Get(user.ID.String()); ok {
		return cached.([]models.BlogPostSummary), nil
	}

	summaries, err := s.repo.ListByAuthor(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.ownPosts.Set(user.ID.String(), summaries, cache.DefaultExpiration)

	return summaries, nil
}

const (
	defaultPublishedLimit = 20
	defaultOrderedLimit   = 50
)

// ListPublished is the public paginated feed.
func (s *BlogService) ListPublished(ctx context.Context, limit, offset uint64) ([]models.BlogPostSummary, error) {
	const op = "blog_service.ListPublished"

	if limit == 0 {
		limit = defaultPublishedLimit
	}

	summaries, err := s.repo.ListPublished(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return summaries, nil
}

// ListPublishedOrdered returns the curated feed: selected posts first,
// then by publication recency in the requested direction.
func (s *BlogService) ListPublishedOrdered(ctx context.Context, limit, offset uint64, newestFirst bool) ([]models.BlogPostSummary, error) {
	const op = "blog_service.ListPublishedOrdered"

	if limit == 0 {
		limit = defaultOrderedLimit
	}

	summaries, err := s.repo.ListPublishedOrdered(ctx, limit, offset, newestFirst)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return summaries, nil
}

// SetSelection sets the curated flag, or inverts the stored value when the
// caller passes nil. The cached own-posts copy is updated first so the admin
// listing reflects the toggle immediately, and reverted if the store write
// fails.
func (s *BlogService) SetSelection(ctx context.Context, postID uuid.UUID, value *bool) error {
	const op = "blog_service.SetSelection"

	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var next bool
	if value != nil {
		next = *value
	} else {
		post, err := s.repo.GetBlogPostByID(ctx, postID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrPostNotFound)
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		next = !post.Selection
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("post_id", postID.String()),
		slog.Bool("value", next),
	)

	previous, applied := s.applySelection(user.ID, postID, next)

	if err := s.repo.UpdateSelection(ctx, postID, next); err != nil {
		if applied {
			s.applySelection(user.ID, postID, previous)
		}
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrPostNotFound)
		}
		log.Error("failed to update selection", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("selection updated")

	return nil
}

// applySelection rewrites the selection flag on the cached summary and
// reports the prior value so a failed store write can be rolled back.
func (s *BlogService) applySelection(userID, postID uuid.UUID, value bool) (previous bool, applied bool) {
	cached, ok := s.ownPosts.Get(userID.String())
	if !ok {
		return false, false
	}

	summaries := cached.([]models.BlogPostSummary)
	next := make([]models.BlogPostSummary, len(summaries))
	copy(next, summaries)

	for i := range next {
		if next[i].ID == postID {
			previous = next[i].Selection
			next[i].Selection = value
			applied = true
			break
		}
	}

	if applied {
		s.ownPosts.Set(userID.String(), next, cache.DefaultExpiration)
	}

	return previous, applied
}

// refreshOwnPosts reloads the author's cached listing. Best effort: a
// failed reload just drops the stale copy.
func (s *BlogService) refreshOwnPosts(ctx context.Context, userID uuid.UUID) {
	summaries, err := s.repo.ListByAuthor(ctx, userID)
	if err != nil {
		s.log.Warn("failed to refresh own posts cache", sl.Err(err))
		s.ownPosts.Delete(userID.String())

		return
	}

	s.ownPosts.Set(userID.String(), summaries, cache.DefaultExpiration)
}

// getJoined собирает пост со всеми дочерними коллекциями.
func (s *BlogService) getJoined(ctx context.Context, postID uuid.UUID) (*models.BlogPost, error) {
	post, err := s.repo.GetBlogPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.attachChildren(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

func (s *BlogService) attachChildren(ctx context.Context, post *models.BlogPost) error {
	var err error

	post.Blocks, err = s.blocks.ListBlocks(ctx, post.ID)
	if err != nil {
		return fmt.Errorf("list blocks: %w", err)
	}

	post.Assets, err = s.assets.ListAssets(ctx, post.ID)
	if err != nil {
		return fmt.Errorf("list assets: %w", err)
	}

	post.Relations, err = s.relations.ListRelations(ctx, post.ID)
	if err != nil {
		return fmt.Errorf("list relations: %w", err)
	}

	if post.BlockTemplateID != nil {
		template, err := s.templates.GetTemplateByID(ctx, *post.BlockTemplateID)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("get block template: %w", err)
			}
			// a deleted template must not break existing posts
			post.BlockTemplate = nil
		} else {
			post.BlockTemplate = template
		}
	}

	return nil
}
