package dto

import (
	"time"

	"blogforge/internal/domain/models"

	services "blogforge/internal/services/blog_service"

	"github.com/google/uuid"
)

// AttachmentInput carries raw file bytes inline; Data is base64 on the wire.
type AttachmentInput struct {
	Filename string `json:"filename" validate:"required"`
	Data     []byte `json:"data" validate:"required"`
}

func (a *AttachmentInput) toModel() *models.RawAttachment {
	if a == nil {
		return nil
	}
	return &models.RawAttachment{
		Filename: a.Filename,
		Data:     a.Data,
	}
}

type BlockContentInput struct {
	Kind       string           `json:"kind,omitempty"`
	Text       string           `json:"text,omitempty"`
	URL        string           `json:"url,omitempty"`
	Alt        string           `json:"alt,omitempty"`
	Attachment *AttachmentInput `json:"attachment,omitempty"`
}

type BlockInput struct {
	ID       uuid.UUID         `json:"id,omitempty" swaggertype:"string" format:"uuid"`
	Type     string            `json:"type" validate:"required,oneof=text media embed"`
	Position int               `json:"position"`
	Content  BlockContentInput `json:"content"`
}

type AssetInput struct {
	ID         uuid.UUID        `json:"id,omitempty" swaggertype:"string" format:"uuid"`
	Type       string           `json:"type" validate:"required"`
	URL        string           `json:"url,omitempty"`
	Caption    string           `json:"caption,omitempty"`
	Position   int              `json:"position"`
	Metadata   map[string]any   `json:"metadata,omitempty"`
	Attachment *AttachmentInput `json:"attachment,omitempty"`
}

type RelationInput struct {
	ID            uuid.UUID `json:"id,omitempty" swaggertype:"string" format:"uuid"`
	RelatedBlogID uuid.UUID `json:"related_blog_id" validate:"required" swaggertype:"string" format:"uuid"`
	Position      int       `json:"position"`
}

// SaveBlogRequest is the single save payload for both create (no id) and
// update (id set). An omitted child array leaves that collection untouched,
// an empty array clears it.
type SaveBlogRequest struct {
	ID              uuid.UUID        `json:"id,omitempty" swaggertype:"string" format:"uuid"`
	Title           string           `json:"title" validate:"required,min=1,max=200"`
	Body            string           `json:"body,omitempty"`
	Template        string           `json:"template,omitempty"`
	BlockTemplateID *uuid.UUID       `json:"block_template_id,omitempty" swaggertype:"string" format:"uuid"`
	CoverURL        string           `json:"cover_url,omitempty"`
	Cover           *AttachmentInput `json:"cover,omitempty"`

	Blocks    []BlockInput    `json:"blocks,omitempty"`
	Assets    []AssetInput    `json:"assets,omitempty"`
	Relations []RelationInput `json:"relations,omitempty"`

	PublishNow      bool       `json:"publish_now,omitempty"`
	ToBePublishedAt *time.Time `json:"to_be_published_date,omitempty"`
}

// ToModel maps the request onto the domain aggregate. Nil child arrays stay
// nil so the save path can tell "untouched" from "clear".
func (r SaveBlogRequest) ToModel() models.BlogPost {
	post := models.BlogPost{
		ID:              r.ID,
		Title:           r.Title,
		Body:            r.Body,
		Template:        r.Template,
		BlockTemplateID: r.BlockTemplateID,
		CoverURL:        r.CoverURL,
		CoverAttachment: r.Cover.toModel(),
	}

	if r.Blocks != nil {
		post.Blocks = make([]models.BlogBlock, 0, len(r.Blocks))
		for _, b := range r.Blocks {
			post.Blocks = append(post.Blocks, models.BlogBlock{
				ID:       b.ID,
				Position: b.Position,
				Type:     models.BlockType(b.Type),
				Content: models.BlockContent{
					Kind:       b.Content.Kind,
					Text:       b.Content.Text,
					URL:        b.Content.URL,
					Alt:        b.Content.Alt,
					Attachment: b.Content.Attachment.toModel(),
				},
			})
		}
	}

	if r.Assets != nil {
		post.Assets = make([]models.BlogAsset, 0, len(r.Assets))
		for _, a := range r.Assets {
			post.Assets = append(post.Assets, models.BlogAsset{
				ID:         a.ID,
				Type:       a.Type,
				URL:        a.URL,
				Caption:    a.Caption,
				Position:   a.Position,
				Metadata:   a.Metadata,
				Attachment: a.Attachment.toModel(),
			})
		}
	}

	if r.Relations != nil {
		post.Relations = make([]models.BlogRelation, 0, len(r.Relations))
		for _, rel := range r.Relations {
			post.Relations = append(post.Relations, models.BlogRelation{
				ID:            rel.ID,
				RelatedBlogID: rel.RelatedBlogID,
				Position:      rel.Position,
			})
		}
	}

	return post
}

// Options extracts the publish intent.
func (r SaveBlogRequest) Options() services.SaveOptions {
	return services.SaveOptions{
		PublishNow:      r.PublishNow,
		ToBePublishedAt: r.ToBePublishedAt,
	}
}

// SetSelectionRequest carries the new featured value; omitting it asks the
// engine to invert the stored flag.
type SetSelectionRequest struct {
	Value *bool `json:"value,omitempty"`
}
