package repository

import (
	"context"
	"fmt"

	"pagecraft/internal/storage/postgresql"

	"github.com/jackc/pgx/v4/pgxpool"
)

type Repository struct {
	db       *pgxpool.Pool
	User     UserRepository
	Page     PageRepository
	Template TemplateRepository
	Media    MediaRepository
}

func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	db, err := postgresql.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return NewRepositoryWithPool(db), nil
}

func NewRepositoryWithPool(db *pgxpool.Pool) *Repository {
	return &Repository{
		db:       db,
		User:     NewUserRepository(db),
		Page:     NewPageRepository(db),
		Template: NewTemplateRepository(db),
		Media:    NewMediaRepository(db),
	}
}

func (r *Repository) Close() {
	r.db.Close()
}
