package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"pagecraft/internal/domain/models"
	"pagecraft/internal/lib/logger/sl"
	"pagecraft/internal/repository"
	appstorage "pagecraft/internal/storage"
	storage "pagecraft/internal/storage/filestorage"
	"pagecraft/internal/transport/http/dto"
	"pagecraft/internal/uploader"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const thumbnailSize = 320

type MediaService struct {
	log         *slog.Logger
	repo        repository.MediaRepository
	fileStorage storage.FileStorage
}

func NewMediaService(log *slog.Logger, repo repository.MediaRepository, fileStorage storage.FileStorage) *MediaService {
	return &MediaService{
		log:         log,
		repo:        repo,
		fileStorage: fileStorage,
	}
}

// Upload stores one file and registers it. Images get their dimensions
// probed and a thumbnail rendered for library listings.
func (s *MediaService) Upload(ctx context.Context, in uploader.UploadInput) (*models.Media, error) {
	const op = "media_service.Upload"

	log := s.log.With(
		slog.String("op", op),
		slog.String("filename", in.Filename),
	)

	if max := s.fileStorage.MaxSize(); max > 0 && in.Size > max {
		log.Warn("file too large", slog.Int64("size", in.Size))
		return nil, fmt.Errorf("%s: %w", op, appstorage.ErrFileTooLarge)
	}

	data, err := io.ReadAll(in.Reader)
	if err != nil {
		log.Error("failed to read upload", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if max := s.fileStorage.MaxSize(); max > 0 && int64(len(data)) > max {
		return nil, fmt.Errorf("%s: %w", op, appstorage.ErrFileTooLarge)
	}

	media := &models.Media{
		ID:               uuid.New(),
		UploaderID:       in.UploaderID,
		CreatedAt:        time.Now().UTC(),
		MediaType:        detectMediaType(in.MimeType, in.Filename),
		OriginalFilename: in.Filename,
		FileSize:         int64(len(data)),
		MimeType:         in.MimeType,
		InLibrary:        in.AddToLibrary,
		InUse:            in.SetAsInUse,
		Metadata:         make(models.Metadata),
	}
	media.StoragePath = "uploads/" + media.ID.String() + strings.ToLower(filepath.Ext(in.Filename))

	if media.MediaType == models.MediaTypeImage {
		s.probeImage(ctx, log, media, data)
	}

	if err := media.Validate(); err != nil {
		log.Error("media validation failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.fileStorage.SaveBytes(ctx, data, media.StoragePath); err != nil {
		log.Error("failed to save file", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.repo.CreateMedia(ctx, media)
	if err != nil {
		s.removeStoredFiles(ctx, media)
		log.Error("failed to save media to database", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("media uploaded", slog.String("media_id", created.ID.String()))
	return created, nil
}

// UploadFile implements the upload coordinator's store port.
func (s *MediaService) UploadFile(ctx context.Context, in uploader.UploadInput) (models.MediaReference, error) {
	media, err := s.Upload(ctx, in)
	if err != nil {
		return models.MediaReference{}, err
	}
	return media.Reference(s.fileStorage.BaseURL()), nil
}

// DeleteFile releases a stored file by id, best-effort: an unknown id is
// not an error, the editor already dropped its reference.
func (s *MediaService) DeleteFile(ctx context.Context, id string) error {
	const op = "media_service.DeleteFile"

	log := s.log.With(
		slog.String("op", op),
		slog.String("media_id", id),
	)

	mediaID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%s: invalid media id: %w", op, err)
	}

	media, err := s.repo.FindByID(ctx, mediaID)
	if err != nil {
		if errors.Is(err, appstorage.ErrMediaNotFound) {
			log.Debug("media already gone")
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.removeStoredFiles(ctx, media)

	if err := s.repo.DeleteMedia(ctx, mediaID); err != nil && !errors.Is(err, appstorage.ErrMediaNotFound) {
		log.Error("failed to delete media row", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("file deleted")
	return nil
}

// ListMedia returns one page of the media library.
func (s *MediaService) ListMedia(ctx context.Context, page, limit int, mediaType, search string) (*dto.MediaListResponse, error) {
	const op = "media_service.ListMedia"

	log := s.log.With(slog.String("op", op))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 24
	}

	media, total, err := s.repo.ListMedia(ctx, repository.MediaFilter{
		Page:   page,
		Limit:  limit,
		Type:   models.MediaType(mediaType),
		Search: search,
	})
	if err != nil {
		log.Error("failed to list media", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := &dto.MediaListResponse{
		Media: make([]dto.MediaResponse, 0, len(media)),
		Pagination: dto.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: (total + limit - 1) / limit,
		},
	}
	for _, m := range media {
		resp.Media = append(resp.Media, dto.MediaToResponse(m, s.fileStorage.BaseURL()))
	}

	return resp, nil
}

// DeleteMedia removes one library entry. An in-use file is protected
// unless force is set.
func (s *MediaService) DeleteMedia(ctx context.Context, id uuid.UUID, force bool) error {
	const op = "media_service.DeleteMedia"

	log := s.log.With(
		slog.String("op", op),
		slog.String("media_id", id.String()),
	)

	media, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if media.InUse && !force {
		log.Warn("delete refused, media in use")
		return fmt.Errorf("%s: %w", op, appstorage.ErrMediaInUse)
	}

	s.removeStoredFiles(ctx, media)

	if err := s.repo.DeleteMedia(ctx, id); err != nil {
		log.Error("failed to delete media", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("media deleted", slog.Bool("forced", force))
	return nil
}

// BulkDelete removes many entries at once, skipping the in-use ones
// unless force is set.
func (s *MediaService) BulkDelete(ctx context.Context, ids []uuid.UUID, force bool) (*dto.BulkDeleteResponse, error) {
	const op = "media_service.BulkDelete"

	log := s.log.With(
		slog.String("op", op),
		slog.Int("count", len(ids)),
	)

	var deletable []uuid.UUID
	var skipped []uuid.UUID
	for _, id := range ids {
		media, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, appstorage.ErrMediaNotFound) {
				skipped = append(skipped, id)
				continue
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if media.InUse && !force {
			skipped = append(skipped, id)
			continue
		}
		s.removeStoredFiles(ctx, media)
		deletable = append(deletable, id)
	}

	deleted, err := s.repo.BulkDeleteMedia(ctx, deletable)
	if err != nil {
		log.Error("failed to bulk delete media", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("bulk delete finished", slog.Int64("deleted", deleted), slog.Int("skipped", len(skipped)))
	return &dto.BulkDeleteResponse{Deleted: deleted, Skipped: skipped}, nil
}

// MarkInUse flags stored files as referenced by a page, protecting them
// from library deletes.
func (s *MediaService) MarkInUse(ctx context.Context, ids []uuid.UUID, inUse bool) error {
	const op = "media_service.MarkInUse"

	for _, id := range ids {
		if err := s.repo.SetInUse(ctx, id, inUse); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

// probeImage records dimensions and renders the library thumbnail. A file
// that fails to decode is stored as-is without either.
func (s *MediaService) probeImage(ctx context.Context, log *slog.Logger, media *models.Media, data []byte) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		log.Warn("image decode failed, stored without thumbnail", sl.Err(err))
		return
	}

	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	media.Width = &w
	media.Height = &h

	thumb := imaging.Fit(img, thumbnailSize, thumbnailSize, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		log.Warn("thumbnail encode failed", sl.Err(err))
		return
	}

	thumbPath := "thumbnails/" + media.ID.String() + ".jpg"
	if err := s.fileStorage.SaveBytes(ctx, buf.Bytes(), thumbPath); err != nil {
		log.Warn("thumbnail save failed", sl.Err(err))
		return
	}
	media.ThumbnailPath = thumbPath
}

func (s *MediaService) removeStoredFiles(ctx context.Context, media *models.Media) {
	if err := s.fileStorage.Delete(ctx, media.StoragePath); err != nil {
		s.log.Warn("stored file not removed", slog.String("path", media.StoragePath), sl.Err(err))
	}
	if media.ThumbnailPath != "" {
		if err := s.fileStorage.Delete(ctx, media.ThumbnailPath); err != nil {
			s.log.Warn("thumbnail not removed", slog.String("path", media.ThumbnailPath), sl.Err(err))
		}
	}
}

func detectMediaType(mimeType, filename string) models.MediaType {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return models.MediaTypeImage
	case strings.HasPrefix(mimeType, "video/"):
		return models.MediaTypeVideo
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".svg":
		return models.MediaTypeImage
	case ".mp4", ".webm", ".mov", ".avi":
		return models.MediaTypeVideo
	default:
		return models.MediaTypeDocument
	}
}
