package dto

import (
	"time"

	"pagecraft/internal/domain/models"

	"github.com/google/uuid"
)

// SavePageRequest is the whole-document payload the editor submits on
// create and on update. Blocks arrive in display order, order indices are
// renormalized server-side.
type SavePageRequest struct {
	Title        string                 `json:"title" validate:"required"`
	Slug         string                 `json:"slug" validate:"omitempty,max=200"`
	Description  string                 `json:"description"`
	MetaTitle    string                 `json:"metaTitle"`
	MetaKeywords []string               `json:"metaKeywords"`
	OGImage      *models.MediaReference `json:"ogImage"`
	Status       string                 `json:"status" validate:"omitempty,oneof=draft published"`
	Blocks       models.BlockList       `json:"blocks"`
}

type PageResponse struct {
	ID           uuid.UUID              `json:"id"`
	Title        string                 `json:"title"`
	Slug         string                 `json:"slug"`
	Description  string                 `json:"description"`
	MetaTitle    string                 `json:"metaTitle"`
	MetaKeywords []string               `json:"metaKeywords"`
	OGImage      *models.MediaReference `json:"ogImage"`
	Status       models.PageStatus      `json:"status"`
	Blocks       models.BlockList       `json:"blocks"`
	AuthorID     uuid.UUID              `json:"authorId"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}

type PageListResponse struct {
	Pages      []PageResponse `json:"pages"`
	TotalCount int            `json:"totalCount"`
	Page       int            `json:"page"`
	PerPage    int            `json:"perPage"`
}

// BlockUploadRequest targets one content slot of a stored page for a
// direct file upload. With ItemField set the file lands in
// content[field][item][itemField].
type BlockUploadRequest struct {
	Block     int    `form:"block" validate:"min=0"`
	Field     string `form:"field" validate:"required"`
	Item      int    `form:"item"`
	ItemField string `form:"itemField"`
}

// BlockRemoveRequest clears one content slot and releases the file it
// referenced.
type BlockRemoveRequest struct {
	Block     int    `json:"block" validate:"min=0"`
	Field     string `json:"field" validate:"required"`
	Item      int    `json:"item"`
	ItemField string `json:"itemField"`
}

// BuilderBlockType describes one addable block kind for the editor.
type BuilderBlockType struct {
	Type       string   `json:"type"`
	Name       string   `json:"name"`
	ListFields []string `json:"listFields,omitempty"`
}

type TemplateResponse struct {
	ID      uuid.UUID           `json:"id"`
	Name    string              `json:"name"`
	Type    models.BlockType    `json:"type"`
	Content models.BlockContent `json:"content"`
}

type CreateTemplateRequest struct {
	Name    string              `json:"name" validate:"required"`
	Type    string              `json:"type" validate:"required"`
	Content models.BlockContent `json:"content"`
}
