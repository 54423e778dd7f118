package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/school-newsroom-api/internal/database"
	"github.com/school-newsroom-api/internal/models"
)

// categoryRepo is the concrete implementation of CategoryRepository
type categoryRepo struct {
	db *database.DB
}

// NewCategoryRepo creates a new category repository
func NewCategoryRepo(db *database.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func scanCategory(row rowScanner) (*models.Category, error) {
	var c models.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.BadgeColor, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories by name
func (r *categoryRepo) List(ctx context.Context) ([]*models.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, slug, description, badge_color, created_at FROM categories ORDER BY name")
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	defer rows.Close()

	categories := make([]*models.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan category")
		}
		categories = append(categories, c)
	}
	return categories, errors.Wrap(rows.Err(), "list categories")
}

func (r *categoryRepo) getOne(ctx context.Context, column, value string) (*models.Category, error) {
	query := "SELECT id, name, slug, description, badge_color, created_at FROM categories WHERE " + column + " = $1"
	c, err := scanCategory(r.db.QueryRowContext(ctx, query, value))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get category by %s", column)
	}
	return c, nil
}

// GetByID retrieves a category by ID
func (r *categoryRepo) GetByID(ctx context.Context, id string) (*models.Category, error) {
	return r.getOne(ctx, "id", id)
}

// GetBySlug retrieves a category by slug
func (r *categoryRepo) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return r.getOne(ctx, "slug", slug)
}

// Create inserts a new category
func (r *categoryRepo) Create(ctx context.Context, c *models.Category) error {
	query := `
		INSERT INTO categories (id, name, slug, description, badge_color, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Slug, c.Description, c.BadgeColor, c.CreatedAt)
	return errors.Wrap(err, "insert category")
}

// Delete removes a category; its articles keep existing without one
func (r *categoryRepo) Delete(ctx context.Context, id string) (bool, error) {
	return execAffected(ctx, r.db, "delete category", "DELETE FROM categories WHERE id = $1", id)
}

// tagRepo is the concrete implementation of TagRepository
type tagRepo struct {
	db *database.DB
}

// NewTagRepo creates a new tag repository
func NewTagRepo(db *database.DB) TagRepository {
	return &tagRepo{db: db}
}

// List returns all tags by name
func (r *tagRepo) List(ctx context.Context) ([]*models.Tag, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, slug, created_at FROM tags ORDER BY name")
	if err != nil {
		return nil, errors.Wrap(err, "list tags")
	}
	defer rows.Close()

	tags := make([]*models.Tag, 0)
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan tag")
		}
		tags = append(tags, &t)
	}
	return tags, errors.Wrap(rows.Err(), "list tags")
}

// GetBySlug retrieves a tag by slug
func (r *tagRepo) GetBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	var t models.Tag
	err := r.db.QueryRowContext(ctx, "SELECT id, name, slug, created_at FROM tags WHERE slug = $1", slug).
		Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get tag")
	}
	return &t, nil
}
