package repository

import (
	"context"
	"database/sql"
	"sort"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/school-newsroom-api/internal/database"
	"github.com/school-newsroom-api/internal/models"
)

const userColumns = `id, name, email, role, status, avatar_url, bio, slug, position, grade, badges, created_at, updated_at`

// userRepo is the concrete implementation of UserRepository
type userRepo struct {
	db *database.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *database.DB) UserRepository {
	return &userRepo{db: db}
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Role, &u.Status, &u.AvatarURL, &u.Bio, &u.Slug,
		&u.Position, &u.Grade, &u.Badges, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// teamOrder lists positions from most to least senior
func teamOrder() []string {
	positions := make([]string, 0, len(models.PositionRank))
	for p := range models.PositionRank {
		positions = append(positions, string(p))
	}
	sort.Slice(positions, func(i, j int) bool {
		return models.PositionRank[models.Position(positions[i])] < models.PositionRank[models.Position(positions[j])]
	})
	return positions
}

// Create inserts a new profile
func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, role, status, avatar_url, bio, slug, position, grade, badges, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.Role, user.Status, user.AvatarURL, user.Bio, user.Slug,
		user.Position, user.Grade, user.Badges, user.CreatedAt, user.UpdatedAt,
	)
	return errors.Wrap(err, "insert user")
}

func (r *userRepo) getOne(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}
	return u, nil
}

// GetByID retrieves a profile by ID
func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetBySlug retrieves a profile by its public slug
func (r *userRepo) GetBySlug(ctx context.Context, slug string) (*models.User, error) {
	return r.getOne(ctx, "slug = $1", slug)
}

// EmailExists checks if a profile with the given email exists
func (r *userRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))", email).Scan(&exists)
	return exists, errors.Wrap(err, "check user email")
}

func (r *userRepo) list(ctx context.Context, query string, args ...interface{}) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan user")
		}
		users = append(users, u)
	}
	return users, errors.Wrap(rows.Err(), "list users")
}

// List returns profiles, optionally narrowed to one status
func (r *userRepo) List(ctx context.Context, status models.UserStatus) ([]*models.User, error) {
	if status == "" {
		return r.list(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	}
	return r.list(ctx, "SELECT "+userColumns+" FROM users WHERE status = $1 ORDER BY created_at DESC", status)
}

// ListTeam returns approved profiles ordered by position seniority, then name
func (r *userRepo) ListTeam(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE status = 'approved'
		ORDER BY array_position($1::text[], position) NULLS LAST, name`
	return r.list(ctx, query, pq.Array(teamOrder()))
}

// UpdateProfile writes the editable profile fields
func (r *userRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET name = $2, avatar_url = $3, bio = $4, slug = $5, position = $6,
			grade = $7, badges = $8, updated_at = $9
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.AvatarURL, user.Bio, user.Slug, user.Position,
		user.Grade, user.Badges, user.UpdatedAt,
	)
	return errors.Wrap(err, "update user profile")
}

// SetStatus changes the approval status of a profile
func (r *userRepo) SetStatus(ctx context.Context, id string, status models.UserStatus) (bool, error) {
	return execAffected(ctx, r.db, "set user status",
		"UPDATE users SET status = $2, updated_at = NOW() WHERE id = $1", id, status)
}

// SetRole changes the role of a profile
func (r *userRepo) SetRole(ctx context.Context, id string, role models.Role) (bool, error) {
	return execAffected(ctx, r.db, "set user role",
		"UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1", id, role)
}

// CountByRole returns the number of profiles holding role
func (r *userRepo) CountByRole(ctx context.Context, role models.Role) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE role = $1", role).Scan(&count)
	return count, errors.Wrap(err, "count users by role")
}
