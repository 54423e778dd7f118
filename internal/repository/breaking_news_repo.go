package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/school-newsroom-api/internal/database"
	"github.com/school-newsroom-api/internal/models"
)

// breakingNewsRepo is the concrete implementation of BreakingNewsRepository
type breakingNewsRepo struct {
	db *database.DB
}

// NewBreakingNewsRepo creates a new breaking news repository
func NewBreakingNewsRepo(db *database.DB) BreakingNewsRepository {
	return &breakingNewsRepo{db: db}
}

// GetActive returns the most recent active banner
func (r *breakingNewsRepo) GetActive(ctx context.Context) (*models.BreakingNews, error) {
	var b models.BreakingNews
	err := r.db.QueryRowContext(ctx,
		"SELECT id, text, link, active, created_at FROM breaking_news WHERE active ORDER BY created_at DESC LIMIT 1",
	).Scan(&b.ID, &b.Text, &b.Link, &b.Active, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get active breaking news")
	}
	return &b, nil
}

// List returns all banners newest first
func (r *breakingNewsRepo) List(ctx context.Context) ([]*models.BreakingNews, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, text, link, active, created_at FROM breaking_news ORDER BY created_at DESC")
	if err != nil {
		return nil, errors.Wrap(err, "list breaking news")
	}
	defer rows.Close()

	out := make([]*models.BreakingNews, 0)
	for rows.Next() {
		var b models.BreakingNews
		if err := rows.Scan(&b.ID, &b.Text, &b.Link, &b.Active, &b.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan breaking news")
		}
		out = append(out, &b)
	}
	return out, errors.Wrap(rows.Err(), "list breaking news")
}

// Create inserts a banner
func (r *breakingNewsRepo) Create(ctx context.Context, b *models.BreakingNews) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO breaking_news (id, text, link, active, created_at) VALUES ($1, $2, $3, $4, $5)",
		b.ID, b.Text, b.Link, b.Active, b.CreatedAt,
	)
	return errors.Wrap(err, "insert breaking news")
}

// SetActive shows or hides a banner
func (r *breakingNewsRepo) SetActive(ctx context.Context, id string, active bool) (bool, error) {
	return execAffected(ctx, r.db, "set breaking news active", "UPDATE breaking_news SET active = $2 WHERE id = $1", id, active)
}

// Delete removes a banner
func (r *breakingNewsRepo) Delete(ctx context.Context, id string) (bool, error) {
	return execAffected(ctx, r.db, "delete breaking news", "DELETE FROM breaking_news WHERE id = $1", id)
}
