package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"blogforge/internal/domain/models"
	"blogforge/internal/lib/logger/sl"
	"blogforge/internal/repository"
	"blogforge/internal/storage"

	"github.com/google/uuid"
)

var (
	ErrTemplateInvalid  = errors.New("template name and code are required")
	ErrTemplateNotFound = errors.New("template not found")
)

// Authenticator resolves the acting principal for a request.
type Authenticator interface {
	CurrentUser(ctx context.Context) (models.User, error)
}

// TemplateService manages reusable block layouts. Templates are shared
// between authors; the creator is recorded on insert and never changes.
type TemplateService struct {
	log      *slog.Logger
	repo     repository.TemplateRepository
	identity Authenticator
}

func NewTemplateService(log *slog.Logger, repo repository.TemplateRepository, identity Authenticator) *TemplateService {
	return &TemplateService{
		log:      log,
		repo:     repo,
		identity: identity,
	}
}

// SaveTemplate создает или обновляет шаблон блоков.
func (s *TemplateService) SaveTemplate(ctx context.Context, template models.BlockTemplate) (*models.BlockTemplate, error) {
	const op = "template_service.SaveTemplate"

	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("user_id", user.ID.String()),
	)

	template.Name = strings.TrimSpace(template.Name)
	template.Code = strings.TrimSpace(template.Code)
	if template.Name == "" || template.Code == "" {
		log.Warn("rejected template without name or code")

		return nil, fmt.Errorf("%s: %w", op, ErrTemplateInvalid)
	}

	if template.ID == uuid.Nil {
		template.CreatorID = user.ID

		template.ID, err = s.repo.SaveTemplate(ctx, template)
		if err != nil {
			log.Error("failed to create template", sl.Err(err))

			return nil, fmt.Errorf("%s: %w", op, err)
		}

		log.Info("template created", slog.String("template_id", template.ID.String()))
	} else {
		updates := map[string]interface{}{
			"name":        template.Name,
			"code":        template.Code,
			"description": template.Description,
			"blocks":      template.Blocks,
		}

		if err := s.repo.UpdateTemplate(ctx, template.ID, updates); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("%s: %w", op, ErrTemplateNotFound)
			}
			log.Error("failed to update template", sl.Err(err))

			return nil, fmt.Errorf("%s: %w", op, err)
		}

		log.Info("template updated", slog.String("template_id", template.ID.String()))
	}

	saved, err := s.repo.GetTemplateByID(ctx, template.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return saved, nil
}

func (s *TemplateService) GetTemplate(ctx context.Context, templateID uuid.UUID) (*models.BlockTemplate, error) {
	const op = "template_service.GetTemplate"

	template, err := s.repo.GetTemplateByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrTemplateNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return template, nil
}

func (s *TemplateService) ListTemplates(ctx context.Context) ([]models.BlockTemplate, error) {
	const op = "template_service.ListTemplates"

	templates, err := s.repo.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return templates, nil
}

// DeleteTemplate removes the layout. Posts referencing it keep working:
// the read path drops a dangling template reference silently.
func (s *TemplateService) DeleteTemplate(ctx context.Context, templateID uuid.UUID) error {
	const op = "template_service.DeleteTemplate"

	if _, err := s.identity.CurrentUser(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.DeleteTemplate(ctx, templateID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrTemplateNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
