package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/school-newsroom-api/internal/database"
	"github.com/school-newsroom-api/internal/models"
)

const identityColumns = `id, email, password_hash, invited_role, invited_by, invited_at, created_at`

// identityRepo is the concrete implementation of IdentityRepository
type identityRepo struct {
	db *database.DB
}

// NewIdentityRepo creates a new identity repository
func NewIdentityRepo(db *database.DB) IdentityRepository {
	return &identityRepo{db: db}
}

// Create inserts an identity. A duplicate email surfaces as a unique violation.
func (r *identityRepo) Create(ctx context.Context, i *models.Identity) error {
	query := `
		INSERT INTO identities (` + identityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query, i.ID, i.Email, i.PasswordHash, i.InvitedRole, i.InvitedBy, i.InvitedAt, i.CreatedAt)
	return errors.Wrap(err, "insert identity")
}

func (r *identityRepo) getOne(ctx context.Context, where, arg string) (*models.Identity, error) {
	var i models.Identity
	err := r.db.QueryRowContext(ctx, "SELECT "+identityColumns+" FROM identities WHERE "+where, arg).
		Scan(&i.ID, &i.Email, &i.PasswordHash, &i.InvitedRole, &i.InvitedBy, &i.InvitedAt, &i.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get identity")
	}
	return &i, nil
}

// GetByID retrieves an identity by ID
func (r *identityRepo) GetByID(ctx context.Context, id string) (*models.Identity, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByEmail retrieves an identity by email, case-insensitively
func (r *identityRepo) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	return r.getOne(ctx, "LOWER(email) = LOWER($1)", email)
}

// SetPassword stores a new password hash
func (r *identityRepo) SetPassword(ctx context.Context, id, hash string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE identities SET password_hash = $2 WHERE id = $1", id, hash)
	return errors.Wrap(err, "set password")
}
