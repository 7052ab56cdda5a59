package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type BlockType string

const (
	BlockTypeText  BlockType = "text"
	BlockTypeMedia BlockType = "media"
	BlockTypeEmbed BlockType = "embed"
)

// BlogBlock is one ordered, typed unit of a post's structured content.
// Lifecycle is tied to the owning post: blocks are created, updated and
// deleted only as part of a post save.
type BlogBlock struct {
	ID       uuid.UUID    `db:"id" json:"id"`
	BlogID   uuid.UUID    `db:"blog_id" json:"blog_id"`
	Position int          `db:"position" json:"position"`
	Type     BlockType    `db:"type" json:"type"`
	Content  BlockContent `db:"content" json:"content"`
}

// BlockContent is the type-tagged payload of a block, stored as JSONB.
// For media blocks Kind discriminates the sub-kind (image, video, ...) and
// either URL is set or Attachment carries bytes still pending upload.
type BlockContent struct {
	Kind string `json:"kind,omitempty"`
	Text string `json:"text,omitempty"`
	URL  string `json:"url,omitempty"`
	Alt  string `json:"alt,omitempty"`

	// Attachment is excluded from serialization: ephemeral binary handles
	// must never reach the store.
	Attachment *RawAttachment `json:"-"`
}

// PendingUpload reports whether the block carries bytes that have to be
// materialized before the row can be written.
func (b BlogBlock) PendingUpload() bool {
	return b.Type == BlockTypeMedia && b.Content.Attachment != nil
}

// Value сериализует полезную нагрузку блока в JSONB
func (c BlockContent) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan десериализует JSONB в полезную нагрузку блока
func (c *BlockContent) Scan(value interface{}) error {
	if value == nil {
		*c = BlockContent{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("unsupported block content type %T", value)
	}
}
