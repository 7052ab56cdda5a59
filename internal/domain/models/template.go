package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BlockTemplate is a named, coded reusable block layout. Templates are owned
// independently of posts; a post references at most one by identifier.
type BlockTemplate struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	Name        string           `db:"name" json:"name"`
	Code        string           `db:"code" json:"code"`
	Description string           `db:"description" json:"description,omitempty"`
	Blocks      BlockDefinitions `db:"blocks" json:"blocks"`
	CreatorID   uuid.UUID        `db:"creator_id" json:"creator_id"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}

// BlockDefinition describes one slot of a template layout.
type BlockDefinition struct {
	Type     BlockType `json:"type"`
	Kind     string    `json:"kind,omitempty"`
	Position int       `json:"position"`
}

type BlockDefinitions []BlockDefinition

func (d BlockDefinitions) Value() (driver.Value, error) {
	if d == nil {
		return json.Marshal(BlockDefinitions{})
	}
	return json.Marshal(d)
}

func (d *BlockDefinitions) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	}
	return nil
}
