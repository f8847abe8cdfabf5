package repository

import (
	"context"
	"time"

	"pagecraft/internal/domain/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	SaveUser(ctx context.Context, user models.User) (uuid.UUID, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
	GetUserById(ctx context.Context, userID uuid.UUID) (models.User, error)
}

type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, userID, token string, exp time.Duration) error
	GetRefreshToken(ctx context.Context, userID, token string) (bool, error)
	DeleteRefreshToken(ctx context.Context, userID, token string) error
	DeleteAllUserTokens(ctx context.Context, userID string) error
}

type PageRepository interface {
	CreatePage(ctx context.Context, page *models.PageDocument) (*models.PageDocument, error)
	UpdatePage(ctx context.Context, page *models.PageDocument) (*models.PageDocument, error)
	GetPageByID(ctx context.Context, id uuid.UUID) (*models.PageDocument, error)
	ListPages(ctx context.Context, statusFilter string, page, perPage int) ([]models.PageDocument, int, error)
	DeletePage(ctx context.Context, id uuid.UUID) error
}

type TemplateRepository interface {
	GetBlockTemplates(ctx context.Context) ([]models.BlockTemplate, error)
	GetTemplateByID(ctx context.Context, id uuid.UUID) (*models.BlockTemplate, error)
	CreateTemplate(ctx context.Context, tpl *models.BlockTemplate) (*models.BlockTemplate, error)
}

// MediaFilter narrows media library listings.
type MediaFilter struct {
	Page   int
	Limit  int
	Type   models.MediaType
	Search string
}

type MediaRepository interface {
	CreateMedia(ctx context.Context, media *models.Media) (*models.Media, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error)
	ListMedia(ctx context.Context, filter MediaFilter) ([]models.Media, int, error)
	DeleteMedia(ctx context.Context, id uuid.UUID) error
	BulkDeleteMedia(ctx context.Context, ids []uuid.UUID) (int64, error)
	SetInUse(ctx context.Context, id uuid.UUID, inUse bool) error
}
