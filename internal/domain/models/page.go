package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type BlockType string

type PageStatus string

// BlockContent is the polymorphic, type-specific field set of a block.
// Values are scalars, MediaReference objects or nested item lists.
type BlockContent map[string]any

const (
	BlockHero         BlockType = "hero"
	BlockFeatures     BlockType = "features"
	BlockCTA          BlockType = "cta"
	BlockContentText  BlockType = "content"
	BlockFAQ          BlockType = "faq"
	BlockSlider       BlockType = "slider"
	BlockTestimonials BlockType = "testimonials"
	BlockProducts     BlockType = "products"
	BlockTextImage    BlockType = "blocktextimage"
	BlockAbout        BlockType = "about"
	BlockVideo        BlockType = "video"
)

const (
	PageStatusDraft     PageStatus = "draft"
	PageStatusPublished PageStatus = "published"
)

// ContentBlock is a single typed, positionable unit of page content.
// Key is assigned once at creation and never changes afterwards, so a
// client can use it for list reconciliation across edits and reorders.
type ContentBlock struct {
	Key        uuid.UUID    `json:"key"`
	Type       BlockType    `json:"type"`
	Title      string       `json:"title,omitempty"`
	Content    BlockContent `json:"content"`
	OrderIndex int          `json:"orderIndex"`
	TemplateID *uuid.UUID   `json:"templateId,omitempty"`
	IsExpanded bool         `json:"isExpanded"`
}

// BlockList is the ordered block sequence of one page, stored as a single
// JSONB column.
type BlockList []ContentBlock

type PageDocument struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	Title        string          `db:"title" json:"title"`
	Slug         string          `db:"slug" json:"slug"`
	Description  string          `db:"description" json:"description,omitempty"`
	MetaTitle    string          `db:"meta_title" json:"metaTitle,omitempty"`
	MetaKeywords []string        `db:"meta_keywords" json:"metaKeywords,omitempty"`
	OGImage      *MediaReference `db:"og_image" json:"ogImage"`
	Status       PageStatus      `db:"status" json:"status"`
	Blocks       BlockList       `db:"blocks" json:"blocks"`
	AuthorID     uuid.UUID       `db:"author_id" json:"author_id"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// Value implements driver.Valuer so BlockList serializes to JSONB.
func (b BlockList) Value() (driver.Value, error) {
	if b == nil {
		return json.Marshal(BlockList{})
	}
	return json.Marshal(b)
}

// Scan implements sql.Scanner for JSONB deserialization.
func (b *BlockList) Scan(value interface{}) error {
	if value == nil {
		*b = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, b)
	case string:
		return json.Unmarshal([]byte(v), b)
	default:
		return fmt.Errorf("unsupported blocks column type %T", value)
	}
}

func (s PageStatus) Valid() bool {
	return s == PageStatusDraft || s == PageStatusPublished
}

// EnsureContent guarantees every block carries a non-nil content object,
// so a persisted document never serializes content as null.
func (b BlockList) EnsureContent() {
	for i := range b {
		if b[i].Content == nil {
			b[i].Content = BlockContent{}
		}
	}
}
