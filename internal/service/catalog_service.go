package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/school-newsroom-api/internal/access"
	"github.com/school-newsroom-api/internal/apperr"
	"github.com/school-newsroom-api/internal/database"
	"github.com/school-newsroom-api/internal/derive"
	"github.com/school-newsroom-api/internal/models"
	"github.com/school-newsroom-api/internal/repository"
	"github.com/school-newsroom-api/internal/validation"
)

const authorArticleLimit = 50

// catalogService is the concrete implementation of CatalogService
type catalogService struct {
	repos *repository.Repositories
	audit AuditService
	log   zerolog.Logger
}

func newCatalogService(repos *repository.Repositories, audit AuditService, log zerolog.Logger) *catalogService {
	return &catalogService{
		repos: repos,
		audit: audit,
		log:   log.With().Str("service", "catalog").Logger(),
	}
}

func (s *catalogService) Categories(ctx context.Context) ([]*models.Category, error) {
	return s.repos.Category.List(ctx)
}

func (s *catalogService) Tags(ctx context.Context) ([]*models.Tag, error) {
	return s.repos.Tag.List(ctx)
}

func (s *catalogService) Tag(ctx context.Context, slug string) (*models.Tag, error) {
	tag, err := s.repos.Tag.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, apperr.NotFound("tag")
	}
	return tag, nil
}

// Team lists approved staff by position rank, then name
func (s *catalogService) Team(ctx context.Context) ([]*models.User, error) {
	return s.repos.User.ListTeam(ctx)
}

// Author returns an approved contributor and their published articles
func (s *catalogService) Author(ctx context.Context, slug string) (*AuthorPage, error) {
	user, err := s.repos.User.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsApproved() {
		return nil, apperr.NotFound("author")
	}
	articles, err := s.repos.Article.List(ctx, models.ArticleFilter{
		Status:   models.ArticleStatusPublished,
		AuthorID: user.ID,
		Limit:    authorArticleLimit,
	})
	if err != nil {
		return nil, err
	}
	return &AuthorPage{Author: user, Articles: articles}, nil
}

// CreateCategory adds a category; the slug is derived from the name when missing
func (s *catalogService) CreateCategory(ctx context.Context, p *access.Principal, c *models.Category) (*models.Category, error) {
	if err := access.Require(p, access.LevelEditor); err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(c.Name)
	if c.Slug == "" {
		c.Slug = derive.Slug(c.Name)
	}
	if errs := validation.NewValidator().ValidateCategory(c, 1); len(errs) > 0 {
		return nil, apperr.Validation(errs[0].Field, strings.TrimPrefix(errs[0].Message, "entry 1: "))
	}
	if c.BadgeColor == "" {
		c.BadgeColor = models.DefaultBadgeColor
	}
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now()

	if err := s.repos.Category.Create(ctx, c); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("a category with this slug already exists", err).WithCode("slug_taken")
		}
		return nil, err
	}
	s.audit.Record(ctx, p, "category.create", "category", c.ID, map[string]interface{}{"slug": c.Slug})
	return c, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, p *access.Principal, id string) error {
	if err := access.Require(p, access.LevelAdmin); err != nil {
		return err
	}
	deleted, err := s.repos.Category.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("category")
	}
	s.audit.Record(ctx, p, "category.delete", "category", id, nil)
	return nil
}

// BreakingNews returns the current banner, nil when none is active
func (s *catalogService) BreakingNews(ctx context.Context) (*models.BreakingNews, error) {
	return s.repos.BreakingNews.GetActive(ctx)
}

func (s *catalogService) ListBreakingNews(ctx context.Context, p *access.Principal) ([]*models.BreakingNews, error) {
	if err := access.RequireStaff(p); err != nil {
		return nil, err
	}
	return s.repos.BreakingNews.List(ctx)
}

func (s *catalogService) CreateBreakingNews(ctx context.Context, p *access.Principal, text string, link *string) (*models.BreakingNews, error) {
	if err := access.Require(p, access.LevelEditor); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("text", "text is required")
	}
	news := &models.BreakingNews{
		ID:        uuid.New().String(),
		Text:      text,
		Link:      nilIfEmpty(link),
		Active:    true,
		CreatedAt: time.Now(),
	}
	if err := s.repos.BreakingNews.Create(ctx, news); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, p, "breaking_news.create", "breaking_news", news.ID, nil)
	return news, nil
}

func (s *catalogService) SetBreakingNewsActive(ctx context.Context, p *access.Principal, id string, active bool) error {
	if err := access.Require(p, access.LevelEditor); err != nil {
		return err
	}
	found, err := s.repos.BreakingNews.SetActive(ctx, id, active)
	if err != nil {
		return err
	}
	if !found {
		return apperr.NotFound("breaking news")
	}
	return nil
}

func (s *catalogService) DeleteBreakingNews(ctx context.Context, p *access.Principal, id string) error {
	if err := access.Require(p, access.LevelEditor); err != nil {
		return err
	}
	deleted, err := s.repos.BreakingNews.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("breaking news")
	}
	s.audit.Record(ctx, p, "breaking_news.delete", "breaking_news", id, nil)
	return nil
}
