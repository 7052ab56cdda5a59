package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// BlogPost is the root entity of the content engine. Child collections
// (Blocks, Assets, Relations) are populated only by the joined read paths;
// on save they carry the caller-submitted state to reconcile against.
type BlogPost struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Title           string     `db:"title" json:"title"`
	Body            string     `db:"body" json:"body"`
	Slug            string     `db:"slug" json:"slug"`
	Template        string     `db:"template" json:"template"`
	BlockTemplateID *uuid.UUID `db:"block_template_id" json:"block_template_id,omitempty"`
	CoverURL        string     `db:"cover_url" json:"cover_url,omitempty"`
	AuthorID        uuid.UUID  `db:"author_id" json:"author_id"`
	Status          string     `db:"status" json:"status"`
	PublishedAt     *time.Time `db:"published_at" json:"published_at,omitempty"`
	ToBePublishedAt *time.Time `db:"to_be_published_date" json:"to_be_published_date,omitempty"`
	Selection       bool       `db:"selection" json:"selection"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`

	Blocks    []BlogBlock    `json:"blocks,omitempty"`
	Assets    []BlogAsset    `json:"assets,omitempty"`
	Relations []BlogRelation `json:"relations,omitempty"`

	BlockTemplate *BlockTemplate       `json:"block_template,omitempty"`
	RelatedPosts  []RelatedPostSummary `json:"related_posts,omitempty"`

	// CoverAttachment holds a not-yet-uploaded cover image. It never
	// reaches the store; the save path replaces it with CoverURL.
	CoverAttachment *RawAttachment `json:"-"`
}

// RelatedPostSummary is the lightweight public projection of a related post.
type RelatedPostSummary struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Slug        string     `db:"slug" json:"slug"`
	CoverURL    string     `db:"cover_url" json:"cover_url,omitempty"`
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
	Status      string     `db:"status" json:"status"`
}

// BlogPostSummary is the own-listing projection (admin side).
type BlogPostSummary struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Slug        string     `db:"slug" json:"slug"`
	Status      string     `db:"status" json:"status"`
	Template    string     `db:"template" json:"template"`
	CoverURL    string     `db:"cover_url" json:"cover_url,omitempty"`
	Selection   bool       `db:"selection" json:"selection"`
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// BlogAsset is the legacy flat child collection: a typed media entry with a
// caption and display position, owned by exactly one post.
type BlogAsset struct {
	ID       uuid.UUID `db:"id" json:"id"`
	BlogID   uuid.UUID `db:"blog_id" json:"blog_id"`
	Type     string    `db:"type" json:"type"`
	URL      string    `db:"url" json:"url,omitempty"`
	Caption  string    `db:"caption" json:"caption,omitempty"`
	Position int       `db:"position" json:"position"`
	Metadata Metadata  `db:"metadata" json:"metadata,omitempty"`

	Attachment *RawAttachment `json:"-"`
}

// BlogRelation is a directed edge to a related post, ordered for display.
// The target post is referenced, not owned.
type BlogRelation struct {
	ID            uuid.UUID `db:"id" json:"id"`
	BlogID        uuid.UUID `db:"blog_id" json:"blog_id"`
	RelatedBlogID uuid.UUID `db:"related_blog_id" json:"related_blog_id"`
	Position      int       `db:"position" json:"position"`
}

// RawAttachment is an ephemeral binary payload attached by the caller before
// save. It is uploaded to blob storage and must never be persisted itself.
type RawAttachment struct {
	Filename string
	Data     []byte
}

// Ext returns the filename extension without the leading dot.
func (a *RawAttachment) Ext() string {
	return strings.TrimPrefix(filepath.Ext(a.Filename), ".")
}

type Metadata map[string]any

// Value реализует интерфейс driver.Valuer для сериализации Metadata в JSONB
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan реализует интерфейс sql.Scanner для десериализации JSONB в Metadata
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported metadata type %T", value)
	}
}
