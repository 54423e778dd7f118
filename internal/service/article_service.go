package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/school-newsroom-api/internal/access"
	"github.com/school-newsroom-api/internal/apperr"
	"github.com/school-newsroom-api/internal/database"
	"github.com/school-newsroom-api/internal/derive"
	"github.com/school-newsroom-api/internal/events"
	"github.com/school-newsroom-api/internal/lifecycle"
	"github.com/school-newsroom-api/internal/models"
	"github.com/school-newsroom-api/internal/repository"
	"github.com/school-newsroom-api/internal/validation"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxSearchResult = 20
	relatedCount    = 3
	maxSlugAttempts = 50
)

// articleService is the concrete implementation of ArticleService
type articleService struct {
	repos     *repository.Repositories
	views     *ViewRecorder
	audit     AuditService
	publisher events.Publisher
	validator *validation.Validator
	now       func() time.Time
	log       zerolog.Logger
}

func newArticleService(repos *repository.Repositories, views *ViewRecorder, audit AuditService, publisher events.Publisher, log zerolog.Logger) *articleService {
	return &articleService{
		repos:     repos,
		views:     views,
		audit:     audit,
		publisher: publisher,
		validator: validation.NewValidator(),
		now:       time.Now,
		log:       log.With().Str("service", "article").Logger(),
	}
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func boolPtr(b bool) *bool { return &b }

func (s *articleService) page(ctx context.Context, filter models.ArticleFilter) (*ArticlePage, error) {
	filter.Limit, filter.Offset = clampPage(filter.Limit, filter.Offset)

	articles, err := s.repos.Article.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.repos.Article.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ArticlePage{Articles: articles, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// List returns published articles; the status filter is always forced to published
func (s *articleService) List(ctx context.Context, filter models.ArticleFilter) (*ArticlePage, error) {
	filter.Status = models.ArticleStatusPublished
	return s.page(ctx, filter)
}

// Featured returns the newest published featured article, nil if there is none
func (s *articleService) Featured(ctx context.Context) (*models.Article, error) {
	articles, err := s.repos.Article.List(ctx, models.ArticleFilter{
		Status:   models.ArticleStatusPublished,
		Featured: boolPtr(true),
		Limit:    1,
	})
	if err != nil || len(articles) == 0 {
		return nil, err
	}
	return articles[0], nil
}

func (s *articleService) Recommended(ctx context.Context, n int) ([]*models.Article, error) {
	n, _ = clampPage(n, 0)
	return s.repos.Article.List(ctx, models.ArticleFilter{
		Status:      models.ArticleStatusPublished,
		Recommended: boolPtr(true),
		Limit:       n,
	})
}

func (s *articleService) ShortNotices(ctx context.Context, n int) ([]*models.Article, error) {
	n, _ = clampPage(n, 0)
	return s.repos.Article.List(ctx, models.ArticleFilter{
		Status: models.ArticleStatusPublished,
		Type:   models.ArticleTypeShortNotice,
		Limit:  n,
	})
}

// Top returns the most viewed published articles
func (s *articleService) Top(ctx context.Context, n int) ([]*models.Article, error) {
	n, _ = clampPage(n, 0)
	return s.repos.Article.List(ctx, models.ArticleFilter{
		Status:  models.ArticleStatusPublished,
		OrderBy: "view_count",
		Limit:   n,
	})
}

// Search matches title, excerpt and body of published articles
func (s *articleService) Search(ctx context.Context, query string) ([]*models.Article, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*models.Article{}, nil
	}
	return s.repos.Article.List(ctx, models.ArticleFilter{
		Status: models.ArticleStatusPublished,
		Search: query,
		Limit:  maxSearchResult,
	})
}

// Archive lists the articles published in the given calendar month (UTC)
func (s *articleService) Archive(ctx context.Context, year, month int) ([]*models.Article, error) {
	if month < 1 || month > 12 {
		return nil, apperr.Validation("month", "month must be between 1 and 12")
	}
	if year < 1900 || year > 9999 {
		return nil, apperr.Validation("year", "invalid year")
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return s.repos.Article.List(ctx, models.ArticleFilter{
		Status:        models.ArticleStatusPublished,
		PublishedFrom: &from,
		PublishedTo:   &to,
	})
}

func (s *articleService) ByCategory(ctx context.Context, slug string, limit, offset int) (*models.Category, *ArticlePage, error) {
	category, err := s.repos.Category.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	if category == nil {
		return nil, nil, apperr.NotFound("category")
	}
	page, err := s.List(ctx, models.ArticleFilter{CategoryID: category.ID, Limit: limit, Offset: offset})
	if err != nil {
		return nil, nil, err
	}
	return category, page, nil
}

// Related returns other published articles of the same category
func (s *articleService) Related(ctx context.Context, article *models.Article, n int) ([]*models.Article, error) {
	if article.CategoryID == nil {
		return []*models.Article{}, nil
	}
	return s.repos.Article.List(ctx, models.ArticleFilter{
		Status:     models.ArticleStatusPublished,
		CategoryID: *article.CategoryID,
		ExcludeID:  article.ID,
		Limit:      n,
	})
}

// Detail prepares a published article for reading and records one view
func (s *articleService) Detail(ctx context.Context, slug string) (*ArticleDetail, error) {
	article, err := s.repos.Article.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if article == nil || !article.IsPublished() {
		return nil, apperr.NotFound("article")
	}

	detail := &ArticleDetail{Article: article}
	if article.Content != nil {
		html, err := derive.RenderMarkdown(*article.Content)
		if err != nil {
			s.log.Warn().Err(err).Str("article_id", article.ID).Msg("Failed to render article body")
		}
		detail.HTML = html
	}
	if article.PublishedAt != nil {
		detail.PublishedAgo = derive.RelativeTime(*article.PublishedAt, s.now())
		detail.PublishedDate = derive.FormatDate(*article.PublishedAt)
	}

	detail.Related, err = s.Related(ctx, article, relatedCount)
	if err != nil {
		s.log.Warn().Err(err).Str("article_id", article.ID).Msg("Failed to load related articles")
		detail.Related = []*models.Article{}
	}

	s.views.Record(article.ID)
	return detail, nil
}

// AdminList lists articles in any status for staff
func (s *articleService) AdminList(ctx context.Context, p *access.Principal, filter models.ArticleFilter) (*ArticlePage, error) {
	if err := access.RequireStaff(p); err != nil {
		return nil, err
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "updated_at"
	}
	return s.page(ctx, filter)
}

func (s *articleService) Get(ctx context.Context, p *access.Principal, id string) (*models.Article, error) {
	if err := access.RequireStaff(p); err != nil {
		return nil, err
	}
	article, err := s.repos.Article.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, apperr.NotFound("article")
	}
	return article, nil
}

// applyInput copies the writable fields of in onto a. Status is applied separately.
func applyInput(a *models.Article, in *models.ArticleInput) error {
	a.Title = strings.TrimSpace(in.Title)
	a.Subtitle = in.Subtitle
	if in.Slug != "" {
		a.Slug = in.Slug
	}
	a.Content = in.Content
	a.Excerpt = in.Excerpt
	if a.Excerpt == nil && a.Content != nil {
		excerpt := derive.Excerpt(*a.Content, derive.DefaultExcerptLength)
		a.Excerpt = &excerpt
	}
	a.Type = in.Type
	if a.Type == "" {
		a.Type = models.ArticleTypeStandard
	}
	a.CategoryID = nilIfEmpty(in.CategoryID)
	if in.AuthorID != nil {
		a.AuthorID = nilIfEmpty(in.AuthorID)
	}
	a.IsFeatured = in.IsFeatured
	a.IsRecommended = in.IsRecommended
	if in.CommentsEnabled != nil {
		a.CommentsEnabled = *in.CommentsEnabled
	}
	scheduledAt, err := validation.ParseTime(in.ScheduledAt)
	if err != nil {
		return apperr.Validation("scheduled_at", "invalid date")
	}
	a.ScheduledAt = scheduledAt
	a.HeroImageURL = in.HeroImageURL
	a.HeroImageAlt = in.HeroImageAlt
	a.HeroImageCredits = in.HeroImageCredits
	a.MetaTitle = in.MetaTitle
	a.MetaDescription = in.MetaDescription
	a.OGImage = in.OGImage
	a.GalleryImages = in.GalleryImages
	a.PollData = pollData(a.PollData, in.PollData)
	a.EventData = in.EventData
	return nil
}

// pollData takes question and options from the client. Tallies are never
// client-writable: options kept from prev keep their count, new ones start at 0.
func pollData(prev, in *models.PollData) *models.PollData {
	if in == nil {
		return nil
	}
	out := &models.PollData{
		Question: in.Question,
		Options:  in.Options,
		Votes:    make(models.Votes, len(in.Options)),
	}
	for _, o := range in.Options {
		out.Votes[o] = 0
		if prev != nil {
			out.Votes[o] = prev.Votes[o]
		}
	}
	return out
}

func nilIfEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// uniqueSlug returns base, or base with a numeric suffix, not used by another article
func (s *articleService) uniqueSlug(ctx context.Context, base, excludeID string) (string, error) {
	if base == "" {
		base = "article"
	}
	candidate := base
	for i := 2; i <= maxSlugAttempts; i++ {
		exists, err := s.repos.Article.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", apperr.Conflict("could not find a free slug", nil).WithCode("slug_taken")
}

func (s *articleService) prepareInput(in *models.ArticleInput) error {
	if in.Status == "" {
		in.Status = models.ArticleStatusDraft
	}
	if errs := s.validator.ValidateArticle(in); len(errs) > 0 {
		return validation.AsError(errs)
	}
	return nil
}

func (s *articleService) checkStatus(p *access.Principal, status models.ArticleStatus) error {
	if !access.CanSetArticleStatus(p.Level(), status) {
		return apperr.Forbidden("authors may only save drafts or submit for review")
	}
	return nil
}

func slugConflict(err error) error {
	if database.IsUniqueViolation(err) {
		return apperr.Conflict("slug already in use", err).WithCode("slug_taken")
	}
	return err
}

// Create saves a new article. A missing slug is derived from the title.
func (s *articleService) Create(ctx context.Context, p *access.Principal, in *models.ArticleInput) (*models.Article, error) {
	if err := access.RequireStaff(p); err != nil {
		return nil, err
	}
	if err := s.prepareInput(in); err != nil {
		return nil, err
	}
	if err := s.checkStatus(p, in.Status); err != nil {
		return nil, err
	}

	now := s.now()
	article := &models.Article{ID: uuid.New().String(), CommentsEnabled: true}
	if err := applyInput(article, in); err != nil {
		return nil, err
	}
	if article.AuthorID == nil {
		authorID := p.UserID()
		article.AuthorID = &authorID
	}

	base := article.Slug
	if base == "" {
		base = derive.Slug(article.Title)
	}
	slug, err := s.uniqueSlug(ctx, base, "")
	if err != nil {
		return nil, err
	}
	article.Slug = slug

	stamped := lifecycle.SetStatus(article, in.Status, now)
	lifecycle.PrepareSave(article, now)

	if err := s.repos.Article.Create(ctx, article); err != nil {
		return nil, slugConflict(err)
	}

	s.log.Info().
		Str("article_id", article.ID).
		Str("slug", article.Slug).
		Str("status", string(article.Status)).
		Msg("Article created")
	s.audit.Record(ctx, p, "article.create", "article", article.ID, map[string]interface{}{"title": article.Title})
	if stamped {
		s.published(ctx, p, article)
	}
	return article, nil
}

// Update overwrites the editable fields of an existing article
func (s *articleService) Update(ctx context.Context, p *access.Principal, id string, in *models.ArticleInput) (*models.Article, error) {
	article, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = article.Status
	}
	if err := s.prepareInput(in); err != nil {
		return nil, err
	}
	if in.Status != article.Status {
		if err := s.checkStatus(p, in.Status); err != nil {
			return nil, err
		}
	}

	if err := applyInput(article, in); err != nil {
		return nil, err
	}
	now := s.now()
	stamped := lifecycle.SetStatus(article, in.Status, now)
	lifecycle.PrepareSave(article, now)

	if err := s.repos.Article.Update(ctx, article); err != nil {
		return nil, slugConflict(err)
	}

	s.audit.Record(ctx, p, "article.update", "article", article.ID, nil)
	if stamped {
		s.published(ctx, p, article)
	}
	return article, nil
}

// SetStatus moves an article to status without touching other fields
func (s *articleService) SetStatus(ctx context.Context, p *access.Principal, id string, status models.ArticleStatus) (*models.Article, error) {
	if !models.ValidArticleStatuses[status] {
		return nil, apperr.Validation("status", "invalid status, must be one of: draft, review, scheduled, published")
	}
	article, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkStatus(p, status); err != nil {
		return nil, err
	}
	if status == models.ArticleStatusScheduled && article.ScheduledAt == nil {
		return nil, apperr.Validation("scheduled_at", "scheduled_at is required for scheduled articles")
	}
	if status == models.ArticleStatusPublished {
		if err := lifecycle.ReadyToPublish(article); err != nil {
			return nil, apperr.Validation("status", err.Error())
		}
	}

	now := s.now()
	previous := article.Status
	stamped := lifecycle.SetStatus(article, status, now)
	lifecycle.PrepareSave(article, now)

	if err := s.repos.Article.Update(ctx, article); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, p, "article.status", "article", article.ID, map[string]interface{}{
		"from": string(previous),
		"to":   string(status),
	})
	if stamped {
		s.published(ctx, p, article)
	}
	return article, nil
}

// published announces the first publication of an article
func (s *articleService) published(ctx context.Context, p *access.Principal, article *models.Article) {
	s.log.Info().Str("article_id", article.ID).Str("slug", article.Slug).Msg("Article published")
	s.audit.Record(ctx, p, "article.publish", "article", article.ID, map[string]interface{}{"slug": article.Slug})

	payload := map[string]interface{}{
		"id":           article.ID,
		"slug":         article.Slug,
		"title":        article.Title,
		"published_at": article.PublishedAt,
	}
	if err := s.publisher.Publish(ctx, events.ArticlePublished, payload); err != nil {
		s.log.Warn().Err(err).Str("article_id", article.ID).Msg("Failed to publish article event")
	}
}

// Delete hard-deletes an article; editors and admins only
func (s *articleService) Delete(ctx context.Context, p *access.Principal, id string) error {
	if err := access.Require(p, access.LevelEditor); err != nil {
		return err
	}
	deleted, err := s.repos.Article.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("article")
	}
	s.log.Info().Str("article_id", id).Msg("Article deleted")
	s.audit.Record(ctx, p, "article.delete", "article", id, nil)
	return nil
}

// Calendar lists scheduled articles, soonest first
func (s *articleService) Calendar(ctx context.Context, p *access.Principal) ([]*models.Article, error) {
	if err := access.RequireStaff(p); err != nil {
		return nil, err
	}
	return s.repos.Article.List(ctx, models.ArticleFilter{
		Status:    models.ArticleStatusScheduled,
		OrderBy:   "scheduled_at",
		Ascending: true,
	})
}

// Stats collects the dashboard counters
func (s *articleService) Stats(ctx context.Context, p *access.Principal) (*models.DashboardStats, error) {
	if err := access.RequireStaff(p); err != nil {
		return nil, err
	}
	counts, err := s.repos.Article.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.repos.Submission.CountByStatus(ctx, models.KindComment, models.SubmissionPending)
	if err != nil {
		return nil, err
	}
	subscribers, err := s.repos.Newsletter.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &models.DashboardStats{
		Published:       counts[models.ArticleStatusPublished],
		Drafts:          counts[models.ArticleStatusDraft],
		Scheduled:       counts[models.ArticleStatusScheduled],
		InReview:        counts[models.ArticleStatusReview],
		PendingComments: pending,
		Subscribers:     subscribers,
	}, nil
}
