package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type MediaType string

type Metadata map[string]interface{}

const (
	MediaTypeImage    MediaType = "image"
	MediaTypeVideo    MediaType = "video"
	MediaTypeDocument MediaType = "document"
)

// MediaReference points at an externally addressable stored file. It is
// either fully populated or absent: a persisted page never carries a
// reference with only one of the two fields set.
type MediaReference struct {
	ID  uuid.UUID `json:"_id"`
	URL string    `json:"url"`
}

func (r MediaReference) IsZero() bool {
	return r.ID == uuid.Nil && r.URL == ""
}

// Value implements driver.Valuer so an optional reference serializes to
// JSONB (NULL when absent).
func (r *MediaReference) Value() (driver.Value, error) {
	if r == nil || r.IsZero() {
		return nil, nil
	}
	return json.Marshal(r)
}

func (r *MediaReference) Scan(value interface{}) error {
	if value == nil {
		*r = MediaReference{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	default:
		return fmt.Errorf("unsupported media reference column type %T", value)
	}
}

// ContentValue renders the reference in the shape block content stores
// it, matching what a JSON round-trip of the document produces.
func (r MediaReference) ContentValue() map[string]any {
	return map[string]any{
		"_id": r.ID.String(),
		"url": r.URL,
	}
}

// MediaRefFromValue interprets an arbitrary block-content value as a
// MediaReference. Returns false unless both fields are present and valid.
func MediaRefFromValue(v any) (MediaReference, bool) {
	switch ref := v.(type) {
	case MediaReference:
		return ref, !ref.IsZero()
	case *MediaReference:
		if ref == nil {
			return MediaReference{}, false
		}
		return *ref, !ref.IsZero()
	case map[string]any:
		rawID, okID := ref["_id"].(string)
		url, okURL := ref["url"].(string)
		if !okID || !okURL || url == "" {
			return MediaReference{}, false
		}
		id, err := uuid.Parse(rawID)
		if err != nil {
			return MediaReference{}, false
		}
		return MediaReference{ID: id, URL: url}, true
	default:
		return MediaReference{}, false
	}
}

// Media is one entry of the media library.
type Media struct {
	ID               uuid.UUID `db:"id" json:"id"`
	UploaderID       uuid.UUID `db:"uploader_id" json:"uploader_id"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	MediaType        MediaType `db:"media_type" json:"media_type"`
	OriginalFilename string    `db:"original_filename" json:"original_filename"`
	StoragePath      string    `db:"storage_path" json:"storage_path"`
	ThumbnailPath    string    `db:"thumbnail_path" json:"thumbnail_path,omitempty"`
	FileSize         int64     `db:"file_size" json:"file_size"`
	MimeType         string    `db:"mime_type" json:"mime_type,omitempty"`
	Width            *int      `db:"width" json:"width,omitempty"`
	Height           *int      `db:"height" json:"height,omitempty"`
	InLibrary        bool      `db:"in_library" json:"in_library"`
	InUse            bool      `db:"in_use" json:"in_use"`
	Metadata         Metadata  `db:"metadata" json:"metadata,omitempty"`
}

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unsupported metadata column type %T", value)
	}
	return json.Unmarshal(b, m)
}

func NewMedia(uploaderID uuid.UUID, mediaType MediaType, filename, path string, size int64) *Media {
	return &Media{
		ID:               uuid.New(),
		UploaderID:       uploaderID,
		CreatedAt:        time.Now().UTC(),
		MediaType:        mediaType,
		OriginalFilename: filename,
		StoragePath:      path,
		FileSize:         size,
		Metadata:         make(Metadata),
	}
}

// Validate checks invariants before the entry reaches the repository.
func (m *Media) Validate() error {
	var validationErrors []string

	if m.UploaderID == uuid.Nil {
		validationErrors = append(validationErrors, "uploader ID is required")
	}
	if m.OriginalFilename == "" {
		validationErrors = append(validationErrors, "original filename is required")
	}
	if len(m.OriginalFilename) > 255 {
		validationErrors = append(validationErrors, "original filename must be 255 characters or less")
	}
	if m.StoragePath == "" {
		validationErrors = append(validationErrors, "storage path is required")
	}
	if m.FileSize <= 0 {
		validationErrors = append(validationErrors, "file size must be positive")
	}

	switch m.MediaType {
	case MediaTypeImage, MediaTypeVideo, MediaTypeDocument:
	default:
		validTypes := []string{
			string(MediaTypeImage),
			string(MediaTypeVideo),
			string(MediaTypeDocument),
		}
		validationErrors = append(validationErrors,
			fmt.Sprintf("invalid media type '%s', must be one of: %v", m.MediaType, validTypes))
	}

	if m.MimeType != "" && len(m.MimeType) > 100 {
		validationErrors = append(validationErrors, "mime type must be 100 characters or less")
	}

	if len(validationErrors) > 0 {
		return &MediaValidationError{Errors: validationErrors}
	}
	return nil
}

type MediaValidationError struct {
	Errors []string
}

func (e *MediaValidationError) Error() string {
	return fmt.Sprintf("media validation failed: %s", strings.Join(e.Errors, "; "))
}

func IsMediaValidationError(err error) bool {
	_, ok := err.(*MediaValidationError)
	return ok
}

// Reference builds the public reference handed back to the editor after a
// successful upload.
func (m *Media) Reference(baseURL string) MediaReference {
	return MediaReference{
		ID:  m.ID,
		URL: strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(m.StoragePath, "/"),
	}
}
