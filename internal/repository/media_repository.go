package repository

import (
	"context"
	"errors"
	"fmt"

	"pagecraft/internal/domain/models"
	appstorage "pagecraft/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type MediaRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewMediaRepository(db *pgxpool.Pool) *MediaRepo {
	return &MediaRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var mediaColumns = []string{
	"id",
	"uploader_id",
	"created_at",
	"media_type",
	"original_filename",
	"storage_path",
	"thumbnail_path",
	"file_size",
	"mime_type",
	"width",
	"height",
	"in_library",
	"in_use",
	"metadata",
}

func (r *MediaRepo) CreateMedia(ctx context.Context, media *models.Media) (*models.Media, error) {
	const op = "repository.media_repository.CreateMedia"

	query, args, err := r.sb.Insert("media").
		Columns(mediaColumns...).
		Values(
			media.ID,
			media.UploaderID,
			media.CreatedAt,
			media.MediaType,
			media.OriginalFilename,
			media.StoragePath,
			media.ThumbnailPath,
			media.FileSize,
			media.MimeType,
			media.Width,
			media.Height,
			media.InLibrary,
			media.InUse,
			media.Metadata,
		).
		Suffix("RETURNING " + joinColumns(mediaColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	row := r.db.QueryRow(ctx, query, args...)
	created, err := scanMedia(row)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create media: %w", op, err)
	}

	return created, nil
}

func (r *MediaRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	const op = "repository.media_repository.FindByID"

	query, args, err := r.sb.Select(mediaColumns...).
		From("media").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	row := r.db.QueryRow(ctx, query, args...)
	media, err := scanMedia(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, appstorage.ErrMediaNotFound)
		}
		return nil, fmt.Errorf("%s: failed to get media: %w", op, err)
	}

	return media, nil
}

// ListMedia returns one library page filtered by type and filename search.
func (r *MediaRepo) ListMedia(ctx context.Context, filter MediaFilter) ([]models.Media, int, error) {
	const op = "repository.media_repository.ListMedia"

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 24
	}

	where := sq.And{sq.Eq{"in_library": true}}
	if filter.Type != "" {
		where = append(where, sq.Eq{"media_type": filter.Type})
	}
	if filter.Search != "" {
		where = append(where, sq.ILike{"original_filename": "%" + filter.Search + "%"})
	}

	countQuery, countArgs, err := r.sb.Select("COUNT(*)").From("media").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to build count query: %w", op, err)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: failed to count media: %w", op, err)
	}

	query, args, err := r.sb.Select(mediaColumns...).
		From("media").
		Where(where).
		OrderBy("created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64((filter.Page - 1) * filter.Limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to list media: %w", op, err)
	}
	defer rows.Close()

	var mediaList []models.Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: row scanning failed: %w", op, err)
		}
		mediaList = append(mediaList, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: rows iteration error: %w", op, err)
	}

	return mediaList, total, nil
}

func (r *MediaRepo) DeleteMedia(ctx context.Context, id uuid.UUID) error {
	const op = "repository.media_repository.DeleteMedia"

	query, args, err := r.sb.Delete("media").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to delete media: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, appstorage.ErrMediaNotFound)
	}

	return nil
}

func (r *MediaRepo) BulkDeleteMedia(ctx context.Context, ids []uuid.UUID) (int64, error) {
	const op = "repository.media_repository.BulkDeleteMedia"

	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := r.sb.Delete("media").
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to bulk delete media: %w", op, err)
	}

	return tag.RowsAffected(), nil
}

func (r *MediaRepo) SetInUse(ctx context.Context, id uuid.UUID, inUse bool) error {
	const op = "repository.media_repository.SetInUse"

	query, args, err := r.sb.Update("media").
		Set("in_use", inUse).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to update media: %w", op, err)
	}

	return nil
}

func scanMedia(row rowScanner) (*models.Media, error) {
	var m models.Media
	err := row.Scan(
		&m.ID,
		&m.UploaderID,
		&m.CreatedAt,
		&m.MediaType,
		&m.OriginalFilename,
		&m.StoragePath,
		&m.ThumbnailPath,
		&m.FileSize,
		&m.MimeType,
		&m.Width,
		&m.Height,
		&m.InLibrary,
		&m.InUse,
		&m.Metadata,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
