package models

import (
	"time"

	"github.com/google/uuid"
)

// BlockTemplate is a reusable preset of block type plus content, used to
// seed a new block in the editor.
type BlockTemplate struct {
	ID        uuid.UUID    `db:"id" json:"id"`
	Name      string       `db:"name" json:"name"`
	Type      BlockType    `db:"type" json:"type"`
	Content   BlockContent `db:"content" json:"content"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}
