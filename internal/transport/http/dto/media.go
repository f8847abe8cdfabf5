package dto

import (
	"mime/multipart"
	"time"

	"pagecraft/internal/domain/models"

	"github.com/google/uuid"
)

// FileUploadInput carries one multipart upload. FieldKey, when present,
// scopes the in-flight state to the editor field the file belongs to.
type FileUploadInput struct {
	File              *multipart.FileHeader `json:"-" form:"file" validate:"required"`
	AddToMediaLibrary bool                  `json:"-" form:"addToMediaLibrary"`
	SetAsInUse        bool                  `json:"-" form:"setAsInUse"`
	FieldKey          string                `json:"-" form:"fieldKey"`
}

type MediaResponse struct {
	ID               uuid.UUID `json:"id"`
	URL              string    `json:"url"`
	ThumbnailURL     string    `json:"thumbnailUrl,omitempty"`
	OriginalFilename string    `json:"originalFilename"`
	MediaType        string    `json:"mediaType"`
	MimeType         string    `json:"mimeType"`
	FileSize         int64     `json:"fileSize"`
	Width            *int      `json:"width,omitempty"`
	Height           *int      `json:"height,omitempty"`
	InUse            bool      `json:"inUse"`
	CreatedAt        time.Time `json:"createdAt"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type MediaListResponse struct {
	Media      []MediaResponse `json:"media"`
	Pagination Pagination      `json:"pagination"`
}

type BulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1"`
}

type BulkDeleteResponse struct {
	Deleted int64       `json:"deleted"`
	Skipped []uuid.UUID `json:"skipped,omitempty"`
}

func MediaToResponse(m models.Media, baseURL string) MediaResponse {
	resp := MediaResponse{
		ID:               m.ID,
		URL:              baseURL + "/" + m.StoragePath,
		OriginalFilename: m.OriginalFilename,
		MediaType:        string(m.MediaType),
		MimeType:         m.MimeType,
		FileSize:         m.FileSize,
		Width:            m.Width,
		Height:           m.Height,
		InUse:            m.InUse,
		CreatedAt:        m.CreatedAt,
	}
	if m.ThumbnailPath != "" {
		resp.ThumbnailURL = baseURL + "/" + m.ThumbnailPath
	}
	return resp
}
