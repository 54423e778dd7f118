package repository

import (
	"context"

	"github.com/school-newsroom-api/internal/database"
	"github.com/school-newsroom-api/internal/models"
)

// Lookups return (nil, nil) when the row does not exist. Deletes and toggles
// report whether a row was affected.

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	List(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error)
	Count(ctx context.Context, filter models.ArticleFilter) (int, error)
	GetByID(ctx context.Context, id string) (*models.Article, error)
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	Create(ctx context.Context, article *models.Article) error
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id string) (bool, error)
	IncrementViews(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[models.ArticleStatus]int, error)
	StreamAll(ctx context.Context, filter models.ArticleFilter, callback func(*models.Article) error) error
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	List(ctx context.Context) ([]*models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) (bool, error)
}

// TagRepository defines the interface for tag data operations
type TagRepository interface {
	List(ctx context.Context) ([]*models.Tag, error)
	GetBySlug(ctx context.Context, slug string) (*models.Tag, error)
}

// UserRepository defines the interface for staff profile operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetBySlug(ctx context.Context, slug string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, status models.UserStatus) ([]*models.User, error)
	ListTeam(ctx context.Context) ([]*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	SetStatus(ctx context.Context, id string, status models.UserStatus) (bool, error)
	SetRole(ctx context.Context, id string, role models.Role) (bool, error)
	CountByRole(ctx context.Context, role models.Role) (int, error)
}

// SubmissionRepository stores moderated visitor submissions of every kind
type SubmissionRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	CreateLetter(ctx context.Context, letter *models.Letter) error
	CreateIdea(ctx context.Context, idea *models.IdeaSuggestion) error
	CreateJoinRequest(ctx context.Context, req *models.JoinRequest) error
	CreateContact(ctx context.Context, msg *models.ContactMessage) error

	ListComments(ctx context.Context, articleID string, status models.SubmissionStatus) ([]*models.Comment, error)
	ListLetters(ctx context.Context, status models.SubmissionStatus) ([]*models.Letter, error)
	ListIdeas(ctx context.Context, status models.SubmissionStatus) ([]*models.IdeaSuggestion, error)
	ListJoinRequests(ctx context.Context, status models.SubmissionStatus) ([]*models.JoinRequest, error)
	ListContacts(ctx context.Context, status models.SubmissionStatus) ([]*models.ContactMessage, error)

	GetStatus(ctx context.Context, kind models.SubmissionKind, id string) (models.SubmissionStatus, bool, error)
	SetStatus(ctx context.Context, kind models.SubmissionKind, id string, status models.SubmissionStatus) (bool, error)
	Delete(ctx context.Context, kind models.SubmissionKind, id string) (bool, error)
	CountByStatus(ctx context.Context, kind models.SubmissionKind, status models.SubmissionStatus) (int, error)
}

// PollRepository defines the interface for poll data operations
type PollRepository interface {
	List(ctx context.Context, activeOnly bool) ([]*models.Poll, error)
	GetByID(ctx context.Context, id string) (*models.Poll, error)
	Create(ctx context.Context, poll *models.Poll) error
	SetActive(ctx context.Context, id string, active bool) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	Vote(ctx context.Context, id, option string) (bool, error)
}

// NewsletterRepository defines the interface for subscriber data operations
type NewsletterRepository interface {
	Create(ctx context.Context, sub *models.NewsletterSubscriber) error
	List(ctx context.Context) ([]*models.NewsletterSubscriber, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.NewsletterSubscriber) error) error
}

// BreakingNewsRepository defines the interface for banner data operations
type BreakingNewsRepository interface {
	GetActive(ctx context.Context) (*models.BreakingNews, error)
	List(ctx context.Context) ([]*models.BreakingNews, error)
	Create(ctx context.Context, news *models.BreakingNews) error
	SetActive(ctx context.Context, id string, active bool) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// AuditRepository defines the interface for the audit log
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditEntry) error
	List(ctx context.Context, limit, offset int) ([]*models.AuditEntry, error)
}

// IdentityRepository stores sign-in accounts for the local identity provider
type IdentityRepository interface {
	Create(ctx context.Context, identity *models.Identity) error
	GetByID(ctx context.Context, id string) (*models.Identity, error)
	GetByEmail(ctx context.Context, email string) (*models.Identity, error)
	SetPassword(ctx context.Context, id, hash string) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	Article      ArticleRepository
	Category     CategoryRepository
	Tag          TagRepository
	User         UserRepository
	Submission   SubmissionRepository
	Poll         PollRepository
	Newsletter   NewsletterRepository
	BreakingNews BreakingNewsRepository
	Audit        AuditRepository
	Identity     IdentityRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Article:      NewArticleRepo(db),
		Category:     NewCategoryRepo(db),
		Tag:          NewTagRepo(db),
		User:         NewUserRepo(db),
		Submission:   NewSubmissionRepo(db),
		Poll:         NewPollRepo(db),
		Newsletter:   NewNewsletterRepo(db),
		BreakingNews: NewBreakingNewsRepo(db),
		Audit:        NewAuditRepo(db),
		Identity:     NewIdentityRepo(db),
	}
}
