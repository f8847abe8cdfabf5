package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pagecraft/internal/blocks"
	"pagecraft/internal/domain/models"
	"pagecraft/internal/lib/logger/sl"
	"pagecraft/internal/repository"
	"pagecraft/internal/transport/http/dto"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

const templatesCacheKey = "block_templates"

type TemplateService struct {
	log   *slog.Logger
	repo  repository.TemplateRepository
	cache *gocache.Cache
}

func NewTemplateService(log *slog.Logger, repo repository.TemplateRepository, ttl time.Duration) *TemplateService {
	return &TemplateService{
		log:   log,
		repo:  repo,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// GetBlockTemplates lists the stored block templates. The list changes
// rarely and every editor load asks for it, so it is cached in-process.
func (s *TemplateService) GetBlockTemplates(ctx context.Context) ([]dto.TemplateResponse, error) {
	const op = "template_service.GetBlockTemplates"

	if cached, ok := s.cache.Get(templatesCacheKey); ok {
		return cached.([]dto.TemplateResponse), nil
	}

	templates, err := s.repo.GetBlockTemplates(ctx)
	if err != nil {
		s.log.Error("failed to list templates", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := make([]dto.TemplateResponse, 0, len(templates))
	for _, tpl := range templates {
		resp = append(resp, toTemplateResponse(&tpl))
	}

	s.cache.SetDefault(templatesCacheKey, resp)
	return resp, nil
}

func (s *TemplateService) GetTemplate(ctx context.Context, id uuid.UUID) (*models.BlockTemplate, error) {
	const op = "template_service.GetTemplate"

	tpl, err := s.repo.GetTemplateByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tpl, nil
}

func (s *TemplateService) CreateTemplate(ctx context.Context, req dto.CreateTemplateRequest) (*dto.TemplateResponse, error) {
	const op = "template_service.CreateTemplate"

	log := s.log.With(
		slog.String("op", op),
		slog.String("name", req.Name),
	)

	tpl := &models.BlockTemplate{
		Name:    req.Name,
		Type:    models.BlockType(req.Type),
		Content: req.Content,
	}

	created, err := s.repo.CreateTemplate(ctx, tpl)
	if err != nil {
		log.Error("failed to create template", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.cache.Delete(templatesCacheKey)

	log.Info("template created", slog.String("template_id", created.ID.String()))
	resp := toTemplateResponse(created)
	return &resp, nil
}

// BuilderConfig lists the block kinds the editor can add.
func (s *TemplateService) BuilderConfig() []dto.BuilderBlockType {
	types := blocks.BuilderTypes()
	out := make([]dto.BuilderBlockType, 0, len(types))
	for _, info := range types {
		out = append(out, dto.BuilderBlockType{
			Type:       string(info.Type),
			Name:       info.Name,
			ListFields: info.ListFields,
		})
	}
	return out
}

func toTemplateResponse(tpl *models.BlockTemplate) dto.TemplateResponse {
	return dto.TemplateResponse{
		ID:      tpl.ID,
		Name:    tpl.Name,
		Type:    tpl.Type,
		Content: tpl.Content,
	}
}
