package repository

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pagecraft/internal/domain/models"
	appstorage "pagecraft/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type TemplateRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewTemplateRepository(db *pgxpool.Pool) *TemplateRepo {
	return &TemplateRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// templateContent adapts BlockContent to a JSONB column.
type templateContent models.BlockContent

func (c templateContent) Value() (driver.Value, error) {
	if c == nil {
		return json.Marshal(map[string]any{})
	}
	return json.Marshal(c)
}

func (c *templateContent) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unsupported template content column type %T", value)
	}
	return json.Unmarshal(b, c)
}

func (r *TemplateRepo) GetBlockTemplates(ctx context.Context) ([]models.BlockTemplate, error) {
	const op = "repository.template_repository.GetBlockTemplates"

	query, args, err := r.sb.Select("id", "name", "type", "content", "created_at").
		From("block_templates").
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list templates: %w", op, err)
	}
	defer rows.Close()

	var templates []models.BlockTemplate
	for rows.Next() {
		var tpl models.BlockTemplate
		var content templateContent
		if err := rows.Scan(&tpl.ID, &tpl.Name, &tpl.Type, &content, &tpl.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: row scanning failed: %w", op, err)
		}
		tpl.Content = models.BlockContent(content)
		templates = append(templates, tpl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", op, err)
	}

	return templates, nil
}

func (r *TemplateRepo) GetTemplateByID(ctx context.Context, id uuid.UUID) (*models.BlockTemplate, error) {
	const op = "repository.template_repository.GetTemplateByID"

	query, args, err := r.sb.Select("id", "name", "type", "content", "created_at").
		From("block_templates").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var tpl models.BlockTemplate
	var content templateContent
	err = r.db.QueryRow(ctx, query, args...).Scan(&tpl.ID, &tpl.Name, &tpl.Type, &content, &tpl.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, appstorage.ErrTemplateNotFound)
		}
		return nil, fmt.Errorf("%s: failed to get template: %w", op, err)
	}
	tpl.Content = models.BlockContent(content)

	return &tpl, nil
}

func (r *TemplateRepo) CreateTemplate(ctx context.Context, tpl *models.BlockTemplate) (*models.BlockTemplate, error) {
	const op = "repository.template_repository.CreateTemplate"

	if tpl.ID == uuid.Nil {
		tpl.ID = uuid.New()
	}
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = time.Now().UTC()
	}

	query, args, err := r.sb.Insert("block_templates").
		Columns("id", "name", "type", "content", "created_at").
		Values(tpl.ID, tpl.Name, tpl.Type, templateContent(tpl.Content), tpl.CreatedAt).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to create template: %w", op, err)
	}

	return tpl, nil
}
