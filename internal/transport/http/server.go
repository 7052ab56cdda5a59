package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"blogforge/internal/domain/models"
	"blogforge/internal/lib/logger/sl"
	services "blogforge/internal/services/blog_service"
	"blogforge/internal/services/identity"
	mediasvc "blogforge/internal/services/media_service"
	templatesvc "blogforge/internal/services/template_service"
	"blogforge/internal/transport/http/dto"
	"blogforge/internal/transport/http/dto/response"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	_ "blogforge/docs"
)

type BlogService interface {
	SaveBlog(ctx context.Context, post models.BlogPost, opts services.SaveOptions) (*models.BlogPost, error)
	Unpublish(ctx context.Context, postID uuid.UUID) (*models.BlogPost, error)
	Delete(ctx context.Context, postID uuid.UUID) error
	GetByID(ctx context.Context, postID uuid.UUID) (*models.BlogPost, error)
	GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	ListOwn(ctx context.Context) ([]models.BlogPostSummary, error)
	ListPublished(ctx context.Context, limit, offset uint64) ([]models.BlogPostSummary, error)
	ListPublishedOrdered(ctx context.Context, limit, offset uint64, newestFirst bool) ([]models.BlogPostSummary, error)
	SetSelection(ctx context.Context, postID uuid.UUID, value *bool) error
}

type TemplateService interface {
	SaveTemplate(ctx context.Context, template models.BlockTemplate) (*models.BlockTemplate, error)
	GetTemplate(ctx context.Context, templateID uuid.UUID) (*models.BlockTemplate, error)
	ListTemplates(ctx context.Context) ([]models.BlockTemplate, error)
	DeleteTemplate(ctx context.Context, templateID uuid.UUID) error
}

type Routers struct {
	log             *slog.Logger
	BlogService     BlogService
	TemplateService TemplateService
}

func NewRouter(log *slog.Logger, blogService BlogService, templateService TemplateService) *Routers {
	return &Routers{
		log:             log,
		BlogService:     blogService,
		TemplateService: templateService,
	}
}

var ErrInvalidUUID = errors.New("not valid UUID")

func parseIDParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, ErrInvalidUUID
	}
	return id, nil
}

func parsePaging(c echo.Context) (limit, offset uint64) {
	limit, _ = strconv.ParseUint(c.QueryParam("limit"), 10, 64)
	offset, _ = strconv.ParseUint(c.QueryParam("offset"), 10, 64)
	return limit, offset
}

// writeServiceError maps known service failures onto HTTP statuses.
func (r *Routers) writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, services.ErrPostNotFound):
		return c.JSON(http.StatusNotFound, response.ErrPostNotFound)
	case errors.Is(err, templatesvc.ErrTemplateNotFound):
		return c.JSON(http.StatusNotFound, response.ErrTemplateNotFound)
	case errors.Is(err, identity.ErrNotAuthenticated):
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	case errors.Is(err, services.ErrTitleRequired), errors.Is(err, templatesvc.ErrTemplateInvalid):
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("validation_failed", err.Error()))
	default:
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status:  "error",
			Error:   "internal_error",
			Details: "Internal server error",
		})
	}
}

// SaveBlog godoc
// @Summary Сохранение поста
// @Description Создает новый пост (без id) или обновляет существующий (с id) вместе с блоками, ассетами и связями.
// @Tags blogs
// @Accept json
// @Produce json
// @Param request body dto.SaveBlogRequest true "Пост с дочерними коллекциями"
// @Success 200 {object} response.Response{data=models.BlogPost} "Сохраненный пост"
// @Failure 400 {object} response.ErrorResponse "Неверный формат запроса"
// @Failure 401 {object} response.ErrorResponse "Не авторизован"
// @Failure 404 {object} response.ErrorResponse "Пост не найден"
// @Security ApiKeyAuth
// @Router /api/v1/blogs [post]
func (r *Routers) SaveBlog(c echo.Context) error {
	const op = "http.routers.SaveBlog"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.SaveBlogRequest

	if err := c.Bind(&req); err != nil {
		log.Warn("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid save request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("validation_failed", err.Error()))
	}

	post, err := r.BlogService.SaveBlog(c.Request().Context(), req.ToModel(), req.Options())
	if err != nil {
		if errors.Is(err, mediasvc.ErrMediaUpload) {
			log.Error("media upload failed during save", sl.Err(err))
			return c.JSON(http.StatusBadGateway, response.ErrMediaUploadFailed)
		}
		log.Error("failed to save post", sl.Err(err))
		return r.writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(post))
}

// UnpublishBlog godoc
// @Summary Снятие поста с публикации
// @Tags blogs
// @Produce json
// @Param id path string true "UUID поста" format(uuid)
// @Success 200 {object} response.Response{data=models.BlogPost}
// @Failure 404 {object} response.ErrorResponse "Пост не найден"
// @Security ApiKeyAuth
// @Router /api/v1/blogs/{id}/unpublish [post]
func (r *Routers) UnpublishBlog(c echo.Context) error {
	const op = "http.routers.UnpublishBlog"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_id", err.Error()))
	}

	post, err := r.BlogService.Unpublish(c.Request().Context(), id)
	if err != nil {
		log.Error("failed to unpublish", sl.Err(err))
		return r.writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(post))
}

// DeleteBlog godoc
// @Summary Удаление поста
// @Tags blogs
// @Produce json
// @Param id path string true "UUID поста" format(uuid)
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Пост не найден"
// @Security ApiKeyAuth
// @Router /api/v1/blogs/{id} [delete]
func (r *Routers) DeleteBlog(c echo.Context) error {
	const op = "http.routers.DeleteBlog"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_id", err.Error()))
	}

	if err := r.BlogService.Delete(c.Request().Context(), id); err != nil {
		log.Error("failed to delete post", sl.Err(err))
		return r.writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, response.MessageResponse("post deleted"))
}

// GetBlog godoc
// @Summary Получение поста по ID
// @Description Возвращает пост вместе с блоками, ассетами, связями и шаблоном.
// @Tags blogs
// @Produce json
// @Param id path string true "UUID поста" format(uuid)
// @Success 200 {object} response.Response{data=models.BlogPost}
// @Failure 404 {object} response.ErrorResponse "Пост не найден"
// @Security ApiKeyAuth
// @Router /api/v1/blogs/{id} [get]
func (r *Routers) GetBlog(c echo.Context) error {
	const op = "http.routers.GetBlog"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_id", err.Error()))
	}

	post, err := r.BlogService.GetByID(c.Request().Context(), id)
	if err != nil {
		log.Warn("failed to get post", sl.Err(err))
		return r.writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(post))
}

// GetBlogBySlug godoc
// @Summary Публичное чтение поста по slug
// @Description Возвращает пост с дочерними коллекциями и сводками связанных постов.
// @Tags public
// @Produce json
// @Param slug path string true "Слаг поста"
// @Success 200 {object} response.Response{data=models.BlogPost}
// @Failure 404 {object} response.ErrorResponse "Пост не найден"
// @Router /api/v1/posts/{slug} [get]
func (r *Routers) GetBlogBySlug(c echo.Context) error {
	const op = "http.routers.GetBlogBySlug"

	log := r.log.With(
		slog.String("op", op),
		slog.String("slug", c.Param("slug")),
	)

	post, err := r.BlogService.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		log.Warn("failed to get post by slug", sl.Err(err))
		return r.writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(post))
}

// ListOwnBlogs godoc
// @Summary Список постов текущего автора
// @Tags blogs
// @Produce json
// @Success 200 {object} response.Response{data=[]models.BlogPostSummary}
// @Failure 401 {object} response.ErrorResponse "Не авторизован"
// @Security ApiKeyAuth
// @Router /api/v1/blogs [get]
func (r *Routers) ListOwnBlogs(c echo.Context) error {
	const op = "http.routers.ListOwnBlogs"

	log := r.log.With(
		slog.String("op", op),
	)

	summaries, err := r.BlogService.ListOwn(c.Request().Context())
	if err != nil {
		log.Error("failed to list own posts", sl.Err(err))
		return r.writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(summaries))
}

// ListPublished godoc
// @Summary Публичная лента опубликованных постов
// @Tags public
// @Produce json
// @Param limit query int false "Размер страницы (по умолчанию 20)"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response{data=[]models.BlogPostSummary}
// @Router /api/v1/posts [get]
func (r *Routers) ListPublished(c echo.Context) error {
	const op = "http.routers.ListPublished"

	log := r.log.With(
		slog.String("op", op),
	)

	limit, offset := parsePaging(c)

	summaries, err := r.BlogService.ListPublished(c.Request().Context(), limit, offset)
	if err != nil {
		log.Error("failed to list published posts", sl.Err(err))
		return r.writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(summaries))
}

// ListFeed godoc
// @Summary Кураторская лента
// @Description Отобранные посты идут первыми, далее по дате публикации.
// @Tags public
// @Produce json
// @Param limit query int false "Размер страницы (по умолчанию 50)"
// @Param offset query int false "Смещение"
// @Param order query string false "asc или desc (по умолчанию desc)"
// @Success 200 {object} response.Response{data=[]models.BlogPostSummary}
// @Router /api/v1/posts/feed [get]
func (r *Routers) ListFeed(c echo.Context) error {
	const op = "http.routers.ListFeed"

	log := r.log.With(
		slog.String("op", op),
	)

	limit, offset := parsePaging(c)
	newestFirst := c.QueryParam("order") != "asc"

	summaries, err := r.BlogService.ListPublishedOrdered(c.Request().Context(), limit, offset, newestFirst)
	if err != nil {
		log.Error("failed to list feed", sl.Err(err))
		return r.writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(summaries))
}

// SetSelection godoc
// @Summary Флаг кураторского отбора
// @Tags blogs
// @Accept json
// @Produce json
// @Param id path string true "UUID поста" format(uuid)
// @Param request body dto.SetSelectionRequest false "Новое значение флага; без value флаг инвертируется"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Пост не найден"
// @Security ApiKeyAuth
// @Router /api/v1/blogs/{id}/selection [patch]
func (r *Routers) SetSelection(c echo.Context) error {
	const op = "http.routers.SetSelection"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_id", err.Error()))
	}

	var req dto.SetSelectionRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := r.BlogService.SetSelection(c.Request().Context(), id, req.Value); err != nil {
		log.Error("failed to set selection", sl.Err(err))
		return r.writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, response.MessageResponse("selection updated"))
}

// SaveTemplate godoc
// @Summary Сохранение шаблона блоков
// @Tags templates
// @Accept json
// @Produce json
// @Param request body dto.SaveTemplateRequest true "Шаблон"
// @Success 200 {object} response.Response{data=models.BlockTemplate}
// @Failure 400 {object} response.ErrorResponse "Неверный формат запроса"
// @Security ApiKeyAuth
// @Router /api/v1/templates [post]
func (r *Routers) SaveTemplate(c echo.Context) error {
	const op = "http.routers.SaveTemplate"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.SaveTemplateRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid template request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("validation_failed", err.Error()))
	}

	template, err := r.TemplateService.SaveTemplate(c.Request().Context(), req.ToModel())
	if err != nil {
		log.Error("failed to save template", sl.Err(err))
		return r.writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(template))
}

// GetTemplate godoc
// @Summary Получение шаблона блоков
// @Tags templates
// @Produce json
// @Param id path string true "UUID шаблона" format(uuid)
// @Success 200 {object} response.Response{data=models.BlockTemplate}
// @Failure 404 {object} response.ErrorResponse "Шаблон не найден"
// @Security ApiKeyAuth
// @Router /api/v1/templates/{id} [get]
func (r *Routers) GetTemplate(c echo.Context) error {
	const op = "http.routers.GetTemplate"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_id", err.Error()))
	}

	template, err := r.TemplateService.GetTemplate(c.Request().Context(), id)
	if err != nil {
		log.Warn("failed to get template", sl.Err(err))
		return r.writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(template))
}

// ListTemplates godoc
// @Summary Список шаблонов блоков
// @Tags templates
// @Produce json
// @Success 200 {object} response.Response{data=[]models.BlockTemplate}
// @Security ApiKeyAuth
// @Router /api/v1/templates [get]
func (r *Routers) ListTemplates(c echo.Context) error {
	const op = "http.routers.ListTemplates"

	log := r.log.With(
		slog.String("op", op),
	)

	templates, err := r.TemplateService.ListTemplates(c.Request().Context())
	if err != nil {
		log.Error("failed to list templates", sl.Err(err))
		return r.writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(templates))
}

// DeleteTemplate godoc
// @Summary Удаление шаблона блоков
// @Tags templates
// @Produce json
// @Param id path string true "UUID шаблона" format(uuid)
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Шаблон не найден"
// @Security ApiKeyAuth
// @Router /api/v1/templates/{id} [delete]
func (r *Routers) DeleteTemplate(c echo.Context) error {
	const op = "http.routers.DeleteTemplate"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_id", err.Error()))
	}

	if err := r.TemplateService.DeleteTemplate(c.Request().Context(), id); err != nil {
		log.Error("failed to delete template", sl.Err(err))
		return r.writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, response.MessageResponse("template deleted"))
}
