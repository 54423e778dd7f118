package service

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/school-newsroom-api/internal/access"
	"github.com/school-newsroom-api/internal/events"
	"github.com/school-newsroom-api/internal/identity"
	"github.com/school-newsroom-api/internal/models"
	"github.com/school-newsroom-api/internal/repository"
)

// ArticlePage is one page of an article listing
type ArticlePage struct {
	Articles []*models.Article `json:"data"`
	Total    int               `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

// ArticleDetail is a published article prepared for the reading view
type ArticleDetail struct {
	*models.Article
	HTML          string            `json:"html"`
	PublishedAgo  string            `json:"published_ago,omitempty"`
	PublishedDate string            `json:"published_date,omitempty"`
	Related       []*models.Article `json:"related"`
}

// ArticleService defines the public reading surface and the editorial operations on articles
type ArticleService interface {
	List(ctx context.Context, filter models.ArticleFilter) (*ArticlePage, error)
	Featured(ctx context.Context) (*models.Article, error)
	Recommended(ctx context.Context, n int) ([]*models.Article, error)
	ShortNotices(ctx context.Context, n int) ([]*models.Article, error)
	Top(ctx context.Context, n int) ([]*models.Article, error)
	Search(ctx context.Context, query string) ([]*models.Article, error)
	Archive(ctx context.Context, year, month int) ([]*models.Article, error)
	ByCategory(ctx context.Context, slug string, limit, offset int) (*models.Category, *ArticlePage, error)
	Related(ctx context.Context, article *models.Article, n int) ([]*models.Article, error)
	Detail(ctx context.Context, slug string) (*ArticleDetail, error)

	AdminList(ctx context.Context, p *access.Principal, filter models.ArticleFilter) (*ArticlePage, error)
	Get(ctx context.Context, p *access.Principal, id string) (*models.Article, error)
	Create(ctx context.Context, p *access.Principal, in *models.ArticleInput) (*models.Article, error)
	Update(ctx context.Context, p *access.Principal, id string, in *models.ArticleInput) (*models.Article, error)
	SetStatus(ctx context.Context, p *access.Principal, id string, status models.ArticleStatus) (*models.Article, error)
	Delete(ctx context.Context, p *access.Principal, id string) error
	Calendar(ctx context.Context, p *access.Principal) ([]*models.Article, error)
	Stats(ctx context.Context, p *access.Principal) (*models.DashboardStats, error)
}

// AuthorPage is a contributor profile with their published articles
type AuthorPage struct {
	Author   *models.User      `json:"author"`
	Articles []*models.Article `json:"articles"`
}

// CatalogService serves reference data: categories, tags, the team and breaking news
type CatalogService interface {
	Categories(ctx context.Context) ([]*models.Category, error)
	Tags(ctx context.Context) ([]*models.Tag, error)
	Tag(ctx context.Context, slug string) (*models.Tag, error)
	Team(ctx context.Context) ([]*models.User, error)
	Author(ctx context.Context, slug string) (*AuthorPage, error)
	CreateCategory(ctx context.Context, p *access.Principal, c *models.Category) (*models.Category, error)
	DeleteCategory(ctx context.Context, p *access.Principal, id string) error

	BreakingNews(ctx context.Context) (*models.BreakingNews, error)
	ListBreakingNews(ctx context.Context, p *access.Principal) ([]*models.BreakingNews, error)
	CreateBreakingNews(ctx context.Context, p *access.Principal, text string, link *string) (*models.BreakingNews, error)
	SetBreakingNewsActive(ctx context.Context, p *access.Principal, id string, active bool) error
	DeleteBreakingNews(ctx context.Context, p *access.Principal, id string) error
}

// SubmissionService accepts visitor submissions and serves the moderation queue
type SubmissionService interface {
	Submit(ctx context.Context, kind models.SubmissionKind, in *models.SubmissionInput) (string, error)
	Comment(ctx context.Context, articleSlug string, in *models.SubmissionInput) (*models.Comment, error)
	ApprovedComments(ctx context.Context, articleSlug string) ([]*models.Comment, error)

	List(ctx context.Context, p *access.Principal, kind models.SubmissionKind, status models.SubmissionStatus) (interface{}, error)
	Moderate(ctx context.Context, p *access.Principal, kind models.SubmissionKind, id string, status models.SubmissionStatus) (bool, error)
	Delete(ctx context.Context, p *access.Principal, kind models.SubmissionKind, id string) error
}

// PollService defines poll voting and administration
type PollService interface {
	Active(ctx context.Context) ([]*models.PollResult, error)
	Get(ctx context.Context, id string) (*models.PollResult, error)
	Vote(ctx context.Context, id, option string) (*models.PollResult, error)

	List(ctx context.Context, p *access.Principal) ([]*models.PollResult, error)
	Create(ctx context.Context, p *access.Principal, in *models.PollInput) (*models.Poll, error)
	SetActive(ctx context.Context, p *access.Principal, id string, active bool) error
	Delete(ctx context.Context, p *access.Principal, id string) error
}

// NewsletterService handles newsletter signups
type NewsletterService interface {
	Subscribe(ctx context.Context, email string) (*models.NewsletterSubscriber, error)
	List(ctx context.Context, p *access.Principal) ([]*models.NewsletterSubscriber, error)
	Delete(ctx context.Context, p *access.Principal, id string) error
}

// ClaimResult is the outcome of completing an invite
type ClaimResult struct {
	User *models.User `json:"user"`
}

// LoginResult is a signed-in session
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// AccessService implements staff onboarding, sign-in and user administration
type AccessService interface {
	Invite(ctx context.Context, p *access.Principal, in *models.InviteInput) (*identity.Invite, error)
	Claim(ctx context.Context, in *models.ClaimInput) (*ClaimResult, error)
	Setup(ctx context.Context, in *models.SetupInput) (*models.User, error)
	Login(ctx context.Context, in *models.LoginInput) (*LoginResult, error)
	Principal(ctx context.Context, token string) (*access.Principal, error)

	ListUsers(ctx context.Context, p *access.Principal, status models.UserStatus) ([]*models.User, error)
	Approve(ctx context.Context, p *access.Principal, userID string) error
	SetRole(ctx context.Context, p *access.Principal, userID string, role models.Role) error
	UpdateProfile(ctx context.Context, p *access.Principal, userID string, in *models.ProfileInput) (*models.User, error)
}

// AuditService records and lists staff actions
type AuditService interface {
	Record(ctx context.Context, p *access.Principal, action, entityType, entityID string, details map[string]interface{})
	List(ctx context.Context, p *access.Principal, limit, offset int) ([]*models.AuditEntry, error)
}

// ExportService defines the interface for export operations
type ExportService interface {
	StreamSubscribers(ctx context.Context, w http.ResponseWriter, format string) error
	StreamArticles(ctx context.Context, w http.ResponseWriter, format string) error
	GetCount(ctx context.Context, resource string) (int, error)
}

// SeedService loads reference data
type SeedService interface {
	SeedCategories(ctx context.Context, r io.Reader) (*SeedResult, error)
}

// Services holds all service interfaces
type Services struct {
	Article    ArticleService
	Catalog    CatalogService
	Submission SubmissionService
	Poll       PollService
	Newsletter NewsletterService
	Access     AccessService
	Audit      AuditService
	Export     ExportService
	Seed       SeedService
	Views      *ViewRecorder
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, provider identity.Provider, publisher events.Publisher, log zerolog.Logger) *Services {
	auditSvc := newAuditService(repos.Audit, log)
	views := NewViewRecorder(repos.Article, log)

	return &Services{
		Article:    newArticleService(repos, views, auditSvc, publisher, log),
		Catalog:    newCatalogService(repos, auditSvc, log),
		Submission: newSubmissionService(repos, auditSvc, publisher, log),
		Poll:       newPollService(repos, auditSvc, log),
		Newsletter: newNewsletterService(repos.Newsletter, publisher, log),
		Access:     newAccessService(repos, provider, auditSvc, log),
		Audit:      auditSvc,
		Export:     newExportService(repos, log),
		Seed:       newSeedService(repos.Category, log),
		Views:      views,
	}
}
