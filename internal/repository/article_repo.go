package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/school-newsroom-api/internal/database"
	"github.com/school-newsroom-api/internal/models"
)

const articleColumns = `
	a.id, a.title, a.subtitle, a.slug, a.excerpt, a.content, a.type, a.status,
	a.category_id, a.author_id, a.is_featured, a.is_recommended, a.comments_enabled,
	a.published_at, a.scheduled_at, a.created_at, a.updated_at, a.reading_time, a.view_count,
	a.hero_image_url, a.hero_image_alt, a.hero_image_credits,
	a.meta_title, a.meta_description, a.og_image,
	a.gallery_images, a.poll_data, a.event_data,
	c.id, c.name, c.slug, c.badge_color,
	u.id, u.name, u.slug, u.avatar_url`

const articleFrom = `
	FROM articles a
	LEFT JOIN categories c ON c.id = a.category_id
	LEFT JOIN users u ON u.id = a.author_id`

// sortable columns; anything else falls back to published_at
var articleOrderColumns = map[string]string{
	"published_at": "a.published_at",
	"created_at":   "a.created_at",
	"updated_at":   "a.updated_at",
	"scheduled_at": "a.scheduled_at",
	"view_count":   "a.view_count",
	"title":        "a.title",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*models.Article, error) {
	var a models.Article
	var catID, catName, catSlug, catColor sql.NullString
	var authorID, authorName sql.NullString
	var authorSlug, authorAvatar *string

	err := row.Scan(
		&a.ID, &a.Title, &a.Subtitle, &a.Slug, &a.Excerpt, &a.Content, &a.Type, &a.Status,
		&a.CategoryID, &a.AuthorID, &a.IsFeatured, &a.IsRecommended, &a.CommentsEnabled,
		&a.PublishedAt, &a.ScheduledAt, &a.CreatedAt, &a.UpdatedAt, &a.ReadingTime, &a.ViewCount,
		&a.HeroImageURL, &a.HeroImageAlt, &a.HeroImageCredits,
		&a.MetaTitle, &a.MetaDescription, &a.OGImage,
		&a.GalleryImages, &a.PollData, &a.EventData,
		&catID, &catName, &catSlug, &catColor,
		&authorID, &authorName, &authorSlug, &authorAvatar,
	)
	if err != nil {
		return nil, err
	}

	if catID.Valid {
		a.Category = &models.CategoryRef{ID: catID.String, Name: catName.String, Slug: catSlug.String, BadgeColor: catColor.String}
	}
	if authorID.Valid {
		a.Author = &models.AuthorRef{ID: authorID.String, Name: authorName.String, Slug: authorSlug, AvatarURL: authorAvatar}
	}
	return &a, nil
}

// buildArticleWhere renders the WHERE clause for filter with numbered placeholders
func buildArticleWhere(filter models.ArticleFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		conds = append(conds, "a.status = "+arg(filter.Status))
	}
	if filter.CategoryID != "" {
		conds = append(conds, "a.category_id = "+arg(filter.CategoryID))
	}
	if filter.AuthorID != "" {
		conds = append(conds, "a.author_id = "+arg(filter.AuthorID))
	}
	if filter.Type != "" {
		conds = append(conds, "a.type = "+arg(filter.Type))
	}
	if filter.Featured != nil {
		conds = append(conds, "a.is_featured = "+arg(*filter.Featured))
	}
	if filter.Recommended != nil {
		conds = append(conds, "a.is_recommended = "+arg(*filter.Recommended))
	}
	if filter.ExcludeID != "" {
		conds = append(conds, "a.id <> "+arg(filter.ExcludeID))
	}
	if filter.PublishedFrom != nil {
		conds = append(conds, "a.published_at >= "+arg(*filter.PublishedFrom))
	}
	if filter.PublishedTo != nil {
		conds = append(conds, "a.published_at <= "+arg(*filter.PublishedTo))
	}
	if filter.Search != "" {
		p := arg("%" + likeEscaper.Replace(filter.Search) + "%")
		conds = append(conds, fmt.Sprintf("(a.title ILIKE %s OR a.excerpt ILIKE %s OR a.content ILIKE %s)", p, p, p))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// articleOrderClause renders ORDER BY; nulls always sort last
func articleOrderClause(filter models.ArticleFilter) string {
	col, ok := articleOrderColumns[filter.OrderBy]
	if !ok {
		col = "a.published_at"
	}
	dir := "DESC"
	if filter.Ascending {
		dir = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s NULLS LAST, a.created_at DESC", col, dir)
}

func (r *articleRepo) query(ctx context.Context, filter models.ArticleFilter) (*sql.Rows, error) {
	where, args := buildArticleWhere(filter)
	query := "SELECT" + articleColumns + articleFrom + where + articleOrderClause(filter)
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return r.db.QueryContext(ctx, query, args...)
}

// List returns articles matching filter
func (r *articleRepo) List(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error) {
	rows, err := r.query(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "list articles")
	}
	defer rows.Close()

	articles := make([]*models.Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan article")
		}
		articles = append(articles, a)
	}
	return articles, errors.Wrap(rows.Err(), "list articles")
}

// Count returns the number of articles matching filter, ignoring pagination
func (r *articleRepo) Count(ctx context.Context, filter models.ArticleFilter) (int, error) {
	where, args := buildArticleWhere(filter)
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles a"+where, args...).Scan(&count)
	return count, errors.Wrap(err, "count articles")
}

func (r *articleRepo) getOne(ctx context.Context, column, value string) (*models.Article, error) {
	query := "SELECT" + articleColumns + articleFrom + " WHERE a." + column + " = $1"
	a, err := scanArticle(r.db.QueryRowContext(ctx, query, value))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get article by %s", column)
	}
	return a, nil
}

// GetByID retrieves an article by ID
func (r *articleRepo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	return r.getOne(ctx, "id", id)
}

// GetBySlug retrieves an article by slug
func (r *articleRepo) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	return r.getOne(ctx, "slug", slug)
}

// SlugExists checks if another article already uses slug
func (r *articleRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	var err error
	if excludeID == "" {
		err = r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM articles WHERE slug = $1)", slug).Scan(&exists)
	} else {
		err = r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM articles WHERE slug = $1 AND id <> $2)", slug, excludeID).Scan(&exists)
	}
	return exists, errors.Wrap(err, "check article slug")
}

// Create inserts a new article
func (r *articleRepo) Create(ctx context.Context, a *models.Article) error {
	query := `
		INSERT INTO articles (
			id, title, subtitle, slug, excerpt, content, type, status,
			category_id, author_id, is_featured, is_recommended, comments_enabled,
			published_at, scheduled_at, created_at, updated_at, reading_time, view_count,
			hero_image_url, hero_image_alt, hero_image_credits,
			meta_title, meta_description, og_image,
			gallery_images, poll_data, event_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19,
			$20, $21, $22, $23, $24, $25, $26, $27, $28)
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.Title, a.Subtitle, a.Slug, a.Excerpt, a.Content, a.Type, a.Status,
		a.CategoryID, a.AuthorID, a.IsFeatured, a.IsRecommended, a.CommentsEnabled,
		a.PublishedAt, a.ScheduledAt, a.CreatedAt, a.UpdatedAt, a.ReadingTime, a.ViewCount,
		a.HeroImageURL, a.HeroImageAlt, a.HeroImageCredits,
		a.MetaTitle, a.MetaDescription, a.OGImage,
		a.GalleryImages, a.PollData, a.EventData,
	)
	return errors.Wrap(err, "insert article")
}

// Update writes every editable column; view_count and created_at are left alone
func (r *articleRepo) Update(ctx context.Context, a *models.Article) error {
	query := `
		UPDATE articles SET
			title = $2, subtitle = $3, slug = $4, excerpt = $5, content = $6, type = $7, status = $8,
			category_id = $9, author_id = $10, is_featured = $11, is_recommended = $12, comments_enabled = $13,
			published_at = $14, scheduled_at = $15, updated_at = $16, reading_time = $17,
			hero_image_url = $18, hero_image_alt = $19, hero_image_credits = $20,
			meta_title = $21, meta_description = $22, og_image = $23,
			gallery_images = $24, poll_data = $25, event_data = $26
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.Title, a.Subtitle, a.Slug, a.Excerpt, a.Content, a.Type, a.Status,
		a.CategoryID, a.AuthorID, a.IsFeatured, a.IsRecommended, a.CommentsEnabled,
		a.PublishedAt, a.ScheduledAt, a.UpdatedAt, a.ReadingTime,
		a.HeroImageURL, a.HeroImageAlt, a.HeroImageCredits,
		a.MetaTitle, a.MetaDescription, a.OGImage,
		a.GalleryImages, a.PollData, a.EventData,
	)
	return errors.Wrap(err, "update article")
}

// Delete hard-deletes an article
func (r *articleRepo) Delete(ctx context.Context, id string) (bool, error) {
	return execAffected(ctx, r.db, "delete article", "DELETE FROM articles WHERE id = $1", id)
}

// IncrementViews bumps view_count through the increment_views function
func (r *articleRepo) IncrementViews(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "SELECT increment_views($1)", id)
	return errors.Wrap(err, "increment views")
}

// CountByStatus returns the number of articles per status
func (r *articleRepo) CountByStatus(ctx context.Context) (map[models.ArticleStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM articles GROUP BY status")
	if err != nil {
		return nil, errors.Wrap(err, "count articles by status")
	}
	defer rows.Close()

	counts := make(map[models.ArticleStatus]int)
	for rows.Next() {
		var status models.ArticleStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, errors.Wrap(err, "scan status count")
		}
		counts[status] = n
	}
	return counts, errors.Wrap(rows.Err(), "count articles by status")
}

// StreamAll streams articles matching filter for export
func (r *articleRepo) StreamAll(ctx context.Context, filter models.ArticleFilter, callback func(*models.Article) error) error {
	rows, err := r.query(ctx, filter)
	if err != nil {
		return errors.Wrap(err, "stream articles")
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return errors.Wrap(err, "scan article")
		}
		if err := callback(a); err != nil {
			return err
		}
	}
	return errors.Wrap(rows.Err(), "stream articles")
}

// execAffected runs a single-row statement and reports whether a row changed
func execAffected(ctx context.Context, db *database.DB, op, query string, args ...interface{}) (bool, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, errors.Wrap(err, op)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, op)
	}
	return n > 0, nil
}
