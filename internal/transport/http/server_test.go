package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"blogforge/internal/domain/models"
	services "blogforge/internal/services/blog_service"
	mediasvc "blogforge/internal/services/media_service"
	templatesvc "blogforge/internal/services/template_service"
	httpapp "blogforge/internal/transport/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBlogService struct {
	post      *models.BlogPost
	summaries []models.BlogPostSummary
	err       error

	savedPost models.BlogPost
	savedOpts services.SaveOptions
	selection *bool
}

func (s *stubBlogService) SaveBlog(ctx context.Context, post models.BlogPost, opts services.SaveOptions) (*models.BlogPost, error) {
	s.savedPost = post
	s.savedOpts = opts
	return s.post, s.err
}

func (s *stubBlogService) Unpublish(ctx context.Context, postID uuid.UUID) (*models.BlogPost, error) {
	return s.post, s.err
}

func (s *stubBlogService) Delete(ctx context.Context, postID uuid.UUID) error {
	return s.err
}

func (s *stubBlogService) GetByID(ctx context.Context, postID uuid.UUID) (*models.BlogPost, error) {
	return s.post, s.err
}

func (s *stubBlogService) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	return s.post, s.err
}

func (s *stubBlogService) ListOwn(ctx context.Context) ([]models.BlogPostSummary, error) {
	return s.summaries, s.err
}

func (s *stubBlogService) ListPublished(ctx context.Context, limit, offset uint64) ([]models.BlogPostSummary, error) {
	return s.summaries, s.err
}

func (s *stubBlogService) ListPublishedOrdered(ctx context.Context, limit, offset uint64, newestFirst bool) ([]models.BlogPostSummary, error) {
	return s.summaries, s.err
}

func (s *stubBlogService) SetSelection(ctx context.Context, postID uuid.UUID, value *bool) error {
	s.selection = value
	return s.err
}

type stubTemplateService struct {
	template *models.BlockTemplate
	err      error
}

func (s *stubTemplateService) SaveTemplate(ctx context.Context, template models.BlockTemplate) (*models.BlockTemplate, error) {
	return s.template, s.err
}

func (s *stubTemplateService) GetTemplate(ctx context.Context, templateID uuid.UUID) (*models.BlockTemplate, error) {
	return s.template, s.err
}

func (s *stubTemplateService) ListTemplates(ctx context.Context) ([]models.BlockTemplate, error) {
	if s.template == nil {
		return nil, s.err
	}
	return []models.BlockTemplate{*s.template}, s.err
}

func (s *stubTemplateService) DeleteTemplate(ctx context.Context, templateID uuid.UUID) error {
	return s.err
}

type testValidator struct {
	validate *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validate: validator.New()}
	return e
}

func TestRouters_SaveBlog(t *testing.T) {
	post := &models.BlogPost{
		ID:    uuid.New(),
		Title: "Saved",
		Slug:  "saved",
	}

	t.Run("valid payload", func(t *testing.T) {
		blog := &stubBlogService{post: post}
		r := httpapp.NewRouter(slog.Default(), blog, &stubTemplateService{})

		body := `{"title":"Saved","publish_now":true,"blocks":[]}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/blogs", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := newTestEcho().NewContext(req, rec)

		require.NoError(t, r.SaveBlog(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, blog.savedOpts.PublishNow)
		// empty array clears the collection, so it must survive binding as non-nil
		assert.NotNil(t, blog.savedPost.Blocks)
		assert.Nil(t, blog.savedPost.Assets)
	})

	t.Run("missing title fails validation", func(t *testing.T) {
		blog := &stubBlogService{post: post}
		r := httpapp.NewRouter(slog.Default(), blog, &stubTemplateService{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/blogs", strings.NewReader(`{"body":"no title"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := newTestEcho().NewContext(req, rec)

		require.NoError(t, r.SaveBlog(c))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("failed media upload maps to 502", func(t *testing.T) {
		uploadErr := fmt.Errorf("materialize cover: %w", mediasvc.ErrMediaUpload)
		blog := &stubBlogService{err: uploadErr}
		r := httpapp.NewRouter(slog.Default(), blog, &stubTemplateService{})

		body := `{"title":"Covered","cover":{"filename":"c.png","data":"aGk="}}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/blogs", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := newTestEcho().NewContext(req, rec)

		require.NoError(t, r.SaveBlog(c))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("unknown post maps to 404", func(t *testing.T) {
		blog := &stubBlogService{err: services.ErrPostNotFound}
		r := httpapp.NewRouter(slog.Default(), blog, &stubTemplateService{})

		body := `{"id":"` + uuid.NewString() + `","title":"Ghost"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/blogs", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := newTestEcho().NewContext(req, rec)

		require.NoError(t, r.SaveBlog(c))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRouters_GetBlogBySlug(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		post := &models.BlogPost{ID: uuid.New(), Title: "Public", Slug: "public"}
		r := httpapp.NewRouter(slog.Default(), &stubBlogService{post: post}, &stubTemplateService{})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/public", nil)
		rec := httptest.NewRecorder()
		c := newTestEcho().NewContext(req, rec)
		c.SetParamNames("slug")
		c.SetParamValues("public")

		require.NoError(t, r.GetBlogBySlug(c))

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Status string          `json:"status"`
			Data   models.BlogPost `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "success", resp.Status)
		assert.Equal(t, "public", resp.Data.Slug)
	})

	t.Run("missing slug", func(t *testing.T) {
		r := httpapp.NewRouter(slog.Default(), &stubBlogService{err: services.ErrPostNotFound}, &stubTemplateService{})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/nope", nil)
		rec := httptest.NewRecorder()
		c := newTestEcho().NewContext(req, rec)
		c.SetParamNames("slug")
		c.SetParamValues("nope")

		require.NoError(t, r.GetBlogBySlug(c))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRouters_SetSelection(t *testing.T) {
	t.Run("toggles flag", func(t *testing.T) {
		blog := &stubBlogService{}
		r := httpapp.NewRouter(slog.Default(), blog, &stubTemplateService{})

		id := uuid.New()
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/blogs/"+id.String()+"/selection", strings.NewReader(`{"value":true}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := newTestEcho().NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(id.String())

		require.NoError(t, r.SetSelection(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, blog.selection)
		assert.True(t, *blog.selection)
	})

	t.Run("empty body requests inversion", func(t *testing.T) {
		blog := &stubBlogService{}
		r := httpapp.NewRouter(slog.Default(), blog, &stubTemplateService{})

		id := uuid.New()
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/blogs/"+id.String()+"/selection", strings.NewReader(`{}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := newTestEcho().NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(id.String())

		require.NoError(t, r.SetSelection(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, blog.selection)
	})

	t.Run("bad uuid", func(t *testing.T) {
		r := httpapp.NewRouter(slog.Default(), &stubBlogService{}, &stubTemplateService{})

		req := httptest.NewRequest(http.MethodPatch, "/api/v1/blogs/abc/selection", strings.NewReader(`{"value":true}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := newTestEcho().NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("abc")

		require.NoError(t, r.SetSelection(c))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRouters_Templates(t *testing.T) {
	template := &models.BlockTemplate{
		ID:   uuid.New(),
		Name: "Photo essay",
		Code: "photo-essay",
	}

	t.Run("save", func(t *testing.T) {
		r := httpapp.NewRouter(slog.Default(), &stubBlogService{}, &stubTemplateService{template: template})

		body := `{"name":"Photo essay","code":"photo-essay"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/templates", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := newTestEcho().NewContext(req, rec)

		require.NoError(t, r.SaveTemplate(c))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("delete missing", func(t *testing.T) {
		r := httpapp.NewRouter(slog.Default(), &stubBlogService{}, &stubTemplateService{err: templatesvc.ErrTemplateNotFound})

		id := uuid.New()
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/templates/"+id.String(), nil)
		rec := httptest.NewRecorder()
		c := newTestEcho().NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(id.String())

		require.NoError(t, r.DeleteTemplate(c))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRouters_InternalErrorsAreOpaque(t *testing.T) {
	r := httpapp.NewRouter(slog.Default(), &stubBlogService{err: errors.New("pq: column does not exist")}, &stubTemplateService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil)
	rec := httptest.NewRecorder()
	c := newTestEcho().NewContext(req, rec)

	require.NoError(t, r.ListPublished(c))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pq:")
}
