package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"pagecraft/internal/blocks"
	"pagecraft/internal/domain/models"
	"pagecraft/internal/lib/logger/sl"
	"pagecraft/internal/notifier"
	"pagecraft/internal/repository"
	appstorage "pagecraft/internal/storage"
	"pagecraft/internal/transport/http/dto"

	"github.com/google/uuid"
)

// ErrUploadsInFlight rejects a save while the editor session still has
// files being transferred. Saving a document whose references are not
// final yet would persist half-filled slots.
var ErrUploadsInFlight = errors.New("uploads still in flight")

// UploadGuard is the slice of the upload coordinator the page service
// needs: whether a scope may save.
type UploadGuard interface {
	InFlight(scope string) bool
}

// FileRemover releases stored files whose references dropped out of a
// saved document.
type FileRemover interface {
	DeleteFile(ctx context.Context, id string) error
}

type PageService struct {
	log       *slog.Logger
	repo      repository.PageRepository
	templates repository.TemplateRepository
	uploads   UploadGuard
	files     FileRemover
	notify    notifier.Notifier
}

func NewPageService(
	log *slog.Logger,
	repo repository.PageRepository,
	templates repository.TemplateRepository,
	uploads UploadGuard,
	files FileRemover,
	notify notifier.Notifier,
) *PageService {
	return &PageService{
		log:       log,
		repo:      repo,
		templates: templates,
		uploads:   uploads,
		files:     files,
		notify:    notify,
	}
}

// CreatePage persists a new document submitted whole by the editor. The
// slug is derived from the title when the operator did not set one.
func (s *PageService) CreatePage(ctx context.Context, scope string, authorID uuid.UUID, req dto.SavePageRequest) (*dto.PageResponse, error) {
	const op = "page_service.CreatePage"
	log := s.log.With(
		slog.String("op", op),
		slog.String("author_id", authorID.String()),
	)

	if s.uploads.InFlight(scope) {
		log.Warn("save rejected, uploads in flight")
		return nil, fmt.Errorf("%s: %w", op, ErrUploadsInFlight)
	}

	page := s.fromRequest(req)
	page.AuthorID = authorID

	log.Info("creating page", slog.String("title", page.Title), slog.String("slug", page.Slug))

	created, err := s.repo.CreatePage(ctx, page)
	if err != nil {
		if isUniqueViolation(err) {
			log.Warn("slug conflict", slog.String("slug", page.Slug))
			return nil, fmt.Errorf("%s: %w", op, appstorage.ErrSlugTaken)
		}
		log.Error("failed to create page", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("page created", slog.String("page_id", created.ID.String()))
	return toPageResponse(created), nil
}

// UpdatePage replaces the stored document with the submitted one. After a
// successful save, files referenced by the stored version but absent from
// the new one are released best-effort.
func (s *PageService) UpdatePage(ctx context.Context, scope string, pageID uuid.UUID, req dto.SavePageRequest) (*dto.PageResponse, error) {
	const op = "page_service.UpdatePage"
	log := s.log.With(
		slog.String("op", op),
		slog.String("page_id", pageID.String()),
	)

	if s.uploads.InFlight(scope) {
		log.Warn("save rejected, uploads in flight")
		return nil, fmt.Errorf("%s: %w", op, ErrUploadsInFlight)
	}

	existing, err := s.repo.GetPageByID(ctx, pageID)
	if err != nil {
		log.Error("failed to get page", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	page := s.fromRequest(req)
	page.ID = pageID
	page.AuthorID = existing.AuthorID
	page.CreatedAt = existing.CreatedAt

	log.Info("updating page", slog.String("slug", page.Slug))

	updated, err := s.repo.UpdatePage(ctx, page)
	if err != nil {
		if isUniqueViolation(err) {
			log.Warn("slug conflict", slog.String("slug", page.Slug))
			return nil, fmt.Errorf("%s: %w", op, appstorage.ErrSlugTaken)
		}
		log.Error("failed to update page", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.releaseOrphanedRefs(ctx, log, existing, updated)

	log.Info("page updated")
	return toPageResponse(updated), nil
}

// GetPage loads one document for editing. Blocks come back collapsed.
func (s *PageService) GetPage(ctx context.Context, pageID uuid.UUID) (*dto.PageResponse, error) {
	const op = "page_service.GetPage"
	log := s.log.With(
		slog.String("op", op),
		slog.String("page_id", pageID.String()),
	)

	page, err := s.repo.GetPageByID(ctx, pageID)
	if err != nil {
		log.Error("failed to get page", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i := range page.Blocks {
		page.Blocks[i].IsExpanded = false
	}

	return toPageResponse(page), nil
}

func (s *PageService) ListPages(ctx context.Context, statusFilter string, page, perPage int) (*dto.PageListResponse, error) {
	const op = "page_service.ListPages"
	log := s.log.With(
		slog.String("op", op),
		slog.String("status_filter", statusFilter),
	)

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	pages, total, err := s.repo.ListPages(ctx, statusFilter, page, perPage)
	if err != nil {
		log.Error("failed to list pages", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := &dto.PageListResponse{
		Pages:      make([]dto.PageResponse, 0, len(pages)),
		TotalCount: total,
		Page:       page,
		PerPage:    perPage,
	}
	for i := range pages {
		resp.Pages = append(resp.Pages, *toPageResponse(&pages[i]))
	}

	return resp, nil
}

// DeletePage removes the document and releases every file it referenced.
func (s *PageService) DeletePage(ctx context.Context, pageID uuid.UUID) error {
	const op = "page_service.DeletePage"
	log := s.log.With(
		slog.String("op", op),
		slog.String("page_id", pageID.String()),
	)

	page, err := s.repo.GetPageByID(ctx, pageID)
	if err != nil {
		log.Error("failed to get page", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.DeletePage(ctx, pageID); err != nil {
		log.Error("failed to delete page", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	refs := blocks.CollectDocumentRefs(page.Blocks)
	if page.OGImage != nil && !page.OGImage.IsZero() {
		refs = append(refs, *page.OGImage)
	}
	s.releaseRefs(ctx, log, refs)

	log.Info("page deleted")
	return nil
}

// AppendTemplateBlock instantiates a stored template at the end of the
// page's block list.
func (s *PageService) AppendTemplateBlock(ctx context.Context, pageID, templateID uuid.UUID) (*dto.PageResponse, error) {
	const op = "page_service.AppendTemplateBlock"
	log := s.log.With(
		slog.String("op", op),
		slog.String("page_id", pageID.String()),
		slog.String("template_id", templateID.String()),
	)

	page, err := s.repo.GetPageByID(ctx, pageID)
	if err != nil {
		log.Error("failed to get page", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tpl, err := s.templates.GetTemplateByID(ctx, templateID)
	if err != nil {
		log.Error("failed to get template", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	col := blocks.New(page.Blocks)
	if _, err := col.AddFromTemplate(tpl); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	page.Blocks = col.Blocks()

	updated, err := s.repo.UpdatePage(ctx, page)
	if err != nil {
		log.Error("failed to save page", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("template block appended")
	return toPageResponse(updated), nil
}

// fromRequest normalizes a submitted document: derived slug, default
// status, non-nil content objects and renormalized order indices.
func (s *PageService) fromRequest(req dto.SavePageRequest) *models.PageDocument {
	slug := req.Slug
	if slug == "" {
		slug = DeriveSlug(req.Title)
	}

	status := models.PageStatus(req.Status)
	if status == "" {
		status = models.PageStatusDraft
	}

	col := blocks.New(req.Blocks)
	list := col.Blocks()
	list.EnsureContent()

	ogImage := req.OGImage
	if ogImage != nil && ogImage.IsZero() {
		ogImage = nil
	}

	return &models.PageDocument{
		Title:        req.Title,
		Slug:         slug,
		Description:  req.Description,
		MetaTitle:    req.MetaTitle,
		MetaKeywords: req.MetaKeywords,
		OGImage:      ogImage,
		Status:       status,
		Blocks:       list,
	}
}

// releaseOrphanedRefs releases files the old version referenced and the
// new one no longer does.
func (s *PageService) releaseOrphanedRefs(ctx context.Context, log *slog.Logger, old, new *models.PageDocument) {
	removed := blocks.DiffRemovedRefs(old.Blocks, new.Blocks)
	if old.OGImage != nil && !old.OGImage.IsZero() {
		if new.OGImage == nil || new.OGImage.ID != old.OGImage.ID {
			removed = append(removed, *old.OGImage)
		}
	}
	s.releaseRefs(ctx, log, removed)
}

func (s *PageService) releaseRefs(ctx context.Context, log *slog.Logger, refs []models.MediaReference) {
	for _, ref := range refs {
		if err := s.files.DeleteFile(ctx, ref.ID.String()); err != nil {
			log.Warn("orphaned file not released", slog.String("id", ref.ID.String()), sl.Err(err))
			s.notify.Warn("Removed file could not be deleted from storage")
		}
	}
}

func toPageResponse(page *models.PageDocument) *dto.PageResponse {
	return &dto.PageResponse{
		ID:           page.ID,
		Title:        page.Title,
		Slug:         page.Slug,
		Description:  page.Description,
		MetaTitle:    page.MetaTitle,
		MetaKeywords: page.MetaKeywords,
		OGImage:      page.OGImage,
		Status:       page.Status,
		Blocks:       page.Blocks,
		AuthorID:     page.AuthorID,
		CreatedAt:    page.CreatedAt,
		UpdatedAt:    page.UpdatedAt,
	}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}
