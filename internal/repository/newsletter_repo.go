package repository

import (
	"context"

	"github.com/pkg/errors"
	"github.com/school-newsroom-api/internal/database"
	"github.com/school-newsroom-api/internal/models"
)

// newsletterRepo is the concrete implementation of NewsletterRepository
type newsletterRepo struct {
	db *database.DB
}

// NewNewsletterRepo creates a new newsletter repository
func NewNewsletterRepo(db *database.DB) NewsletterRepository {
	return &newsletterRepo{db: db}
}

// Create inserts a subscriber. A duplicate email surfaces as a unique violation.
func (r *newsletterRepo) Create(ctx context.Context, s *models.NewsletterSubscriber) error {
	query := `
		INSERT INTO newsletter_subscribers (id, email, confirmed, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, s.ID, s.Email, s.Confirmed, s.CreatedAt)
	return errors.Wrap(err, "insert subscriber")
}

// List returns all subscribers newest first
func (r *newsletterRepo) List(ctx context.Context) ([]*models.NewsletterSubscriber, error) {
	subs := make([]*models.NewsletterSubscriber, 0)
	err := r.StreamAll(ctx, func(s *models.NewsletterSubscriber) error {
		subs = append(subs, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// Delete removes a subscriber
func (r *newsletterRepo) Delete(ctx context.Context, id string) (bool, error) {
	return execAffected(ctx, r.db, "delete subscriber", "DELETE FROM newsletter_subscribers WHERE id = $1", id)
}

// Count returns the total number of subscribers
func (r *newsletterRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM newsletter_subscribers").Scan(&count)
	return count, errors.Wrap(err, "count subscribers")
}

// StreamAll streams all subscribers newest first for export
func (r *newsletterRepo) StreamAll(ctx context.Context, callback func(*models.NewsletterSubscriber) error) error {
	rows, err := r.db.QueryContext(ctx, "SELECT id, email, confirmed, created_at FROM newsletter_subscribers ORDER BY created_at DESC")
	if err != nil {
		return errors.Wrap(err, "stream subscribers")
	}
	defer rows.Close()

	for rows.Next() {
		var s models.NewsletterSubscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.Confirmed, &s.CreatedAt); err != nil {
			return errors.Wrap(err, "scan subscriber")
		}
		if err := callback(&s); err != nil {
			return err
		}
	}
	return errors.Wrap(rows.Err(), "stream subscribers")
}
