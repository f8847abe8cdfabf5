package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pagecraft/internal/domain/models"
	appstorage "pagecraft/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/lib/pq"
)

type PageRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewPageRepository(db *pgxpool.Pool) *PageRepo {
	return &PageRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var pageColumns = []string{
	"id",
	"title",
	"slug",
	"description",
	"meta_title",
	"meta_keywords",
	"og_image",
	"status",
	"blocks",
	"author_id",
	"created_at",
	"updated_at",
}

func (r *PageRepo) CreatePage(ctx context.Context, page *models.PageDocument) (*models.PageDocument, error) {
	const op = "repository.page_repository.CreatePage"

	if page.ID == uuid.Nil {
		page.ID = uuid.New()
	}
	now := time.Now().UTC()
	page.CreatedAt = now
	page.UpdatedAt = now

	query, args, err := r.sb.Insert("pages").
		Columns(pageColumns...).
		Values(
			page.ID,
			page.Title,
			page.Slug,
			page.Description,
			page.MetaTitle,
			pq.Array(page.MetaKeywords),
			page.OGImage,
			page.Status,
			page.Blocks,
			page.AuthorID,
			page.CreatedAt,
			page.UpdatedAt,
		).
		Suffix("RETURNING " + joinColumns(pageColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	row := r.db.QueryRow(ctx, query, args...)
	created, err := scanPage(row)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create page: %w", op, err)
	}

	return created, nil
}

func (r *PageRepo) UpdatePage(ctx context.Context, page *models.PageDocument) (*models.PageDocument, error) {
	const op = "repository.page_repository.UpdatePage"

	query, args, err := r.sb.Update("pages").
		Set("title", page.Title).
		Set("slug", page.Slug).
		Set("description", page.Description).
		Set("meta_title", page.MetaTitle).
		Set("meta_keywords", pq.Array(page.MetaKeywords)).
		Set("og_image", page.OGImage).
		Set("status", page.Status).
		Set("blocks", page.Blocks).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": page.ID}).
		Suffix("RETURNING " + joinColumns(pageColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	row := r.db.QueryRow(ctx, query, args...)
	updated, err := scanPage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, appstorage.ErrPageNotFound)
		}
		return nil, fmt.Errorf("%s: failed to update page: %w", op, err)
	}

	return updated, nil
}

func (r *PageRepo) GetPageByID(ctx context.Context, id uuid.UUID) (*models.PageDocument, error) {
	const op = "repository.page_repository.GetPageByID"

	query, args, err := r.sb.Select(pageColumns...).
		From("pages").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	row := r.db.QueryRow(ctx, query, args...)
	page, err := scanPage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, appstorage.ErrPageNotFound)
		}
		return nil, fmt.Errorf("%s: failed to get page: %w", op, err)
	}

	return page, nil
}

func (r *PageRepo) ListPages(ctx context.Context, statusFilter string, page, perPage int) ([]models.PageDocument, int, error) {
	const op = "repository.page_repository.ListPages"

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	countBuilder := r.sb.Select("COUNT(*)").From("pages")
	listBuilder := r.sb.Select(pageColumns...).
		From("pages").
		OrderBy("updated_at DESC").
		Limit(uint64(perPage)).
		Offset(uint64((page - 1) * perPage))

	if statusFilter != "" {
		countBuilder = countBuilder.Where(sq.Eq{"status": statusFilter})
		listBuilder = listBuilder.Where(sq.Eq{"status": statusFilter})
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to build count query: %w", op, err)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: failed to count pages: %w", op, err)
	}

	query, args, err := listBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to list pages: %w", op, err)
	}
	defer rows.Close()

	var pages []models.PageDocument
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: row scanning failed: %w", op, err)
		}
		pages = append(pages, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: rows iteration error: %w", op, err)
	}

	return pages, total, nil
}

func (r *PageRepo) DeletePage(ctx context.Context, id uuid.UUID) error {
	const op = "repository.page_repository.DeletePage"

	query, args, err := r.sb.Delete("pages").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to delete page: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, appstorage.ErrPageNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPage(row rowScanner) (*models.PageDocument, error) {
	var page models.PageDocument
	var ogImage models.MediaReference

	err := row.Scan(
		&page.ID,
		&page.Title,
		&page.Slug,
		&page.Description,
		&page.MetaTitle,
		pq.Array(&page.MetaKeywords),
		&ogImage,
		&page.Status,
		&page.Blocks,
		&page.AuthorID,
		&page.CreatedAt,
		&page.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if !ogImage.IsZero() {
		page.OGImage = &ogImage
	}

	return &page, nil
}

func joinColumns(cols []string) string {
	out := cols[0]
	for _, c := range cols[1:] {
		out += ", " + c
	}
	return out
}
