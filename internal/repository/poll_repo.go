package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/school-newsroom-api/internal/database"
	"github.com/school-newsroom-api/internal/models"
)

const pollColumns = `id, question, options, votes, active, article_id, created_at, ends_at`

// voteQuery increments one option in place. The guards repeat the service
// checks so a poll closed between read and write takes no ballot.
const voteQuery = `
	UPDATE polls
	SET votes = jsonb_set(votes, ARRAY[$2::text], to_jsonb(COALESCE((votes->>($2::text))::int, 0) + 1))
	WHERE id = $1
	  AND $2::text = ANY(options)
	  AND active
	  AND (ends_at IS NULL OR ends_at > NOW())
`

// pollRepo is the concrete implementation of PollRepository
type pollRepo struct {
	db *database.DB
}

// NewPollRepo creates a new poll repository
func NewPollRepo(db *database.DB) PollRepository {
	return &pollRepo{db: db}
}

func scanPoll(row rowScanner) (*models.Poll, error) {
	var p models.Poll
	if err := row.Scan(&p.ID, &p.Question, &p.Options, &p.Votes, &p.Active, &p.ArticleID, &p.CreatedAt, &p.EndsAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns polls newest first
func (r *pollRepo) List(ctx context.Context, activeOnly bool) ([]*models.Poll, error) {
	query := "SELECT " + pollColumns + " FROM polls"
	if activeOnly {
		query += " WHERE active"
	}
	rows, err := r.db.QueryContext(ctx, query+" ORDER BY created_at DESC")
	if err != nil {
		return nil, errors.Wrap(err, "list polls")
	}
	defer rows.Close()

	polls := make([]*models.Poll, 0)
	for rows.Next() {
		p, err := scanPoll(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan poll")
		}
		polls = append(polls, p)
	}
	return polls, errors.Wrap(rows.Err(), "list polls")
}

// GetByID retrieves a poll by ID
func (r *pollRepo) GetByID(ctx context.Context, id string) (*models.Poll, error) {
	p, err := scanPoll(r.db.QueryRowContext(ctx, "SELECT "+pollColumns+" FROM polls WHERE id = $1", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get poll")
	}
	return p, nil
}

// Create inserts a new poll
func (r *pollRepo) Create(ctx context.Context, p *models.Poll) error {
	query := `
		INSERT INTO polls (id, question, options, votes, active, article_id, created_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.Question, p.Options, p.Votes, p.Active, p.ArticleID, p.CreatedAt, p.EndsAt)
	return errors.Wrap(err, "insert poll")
}

// SetActive opens or closes a poll
func (r *pollRepo) SetActive(ctx context.Context, id string, active bool) (bool, error) {
	return execAffected(ctx, r.db, "set poll active", "UPDATE polls SET active = $2 WHERE id = $1", id, active)
}

// Delete removes a poll
func (r *pollRepo) Delete(ctx context.Context, id string) (bool, error) {
	return execAffected(ctx, r.db, "delete poll", "DELETE FROM polls WHERE id = $1", id)
}

// Vote atomically adds one ballot for option. It reports false when the
// poll is missing, closed, or has no such option.
func (r *pollRepo) Vote(ctx context.Context, id, option string) (bool, error) {
	return execAffected(ctx, r.db, "vote", voteQuery, id, option)
}
