package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/school-newsroom-api/internal/models"
	"github.com/school-newsroom-api/internal/repository"
)

// UniqueViolation mimics the error Postgres returns for a duplicate key
func UniqueViolation(constraint string) error {
	return fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: constraint})
}

// Verify interface compliance
var (
	_ repository.ArticleRepository      = (*MockArticleRepository)(nil)
	_ repository.CategoryRepository     = (*MockCategoryRepository)(nil)
	_ repository.TagRepository          = (*MockTagRepository)(nil)
	_ repository.UserRepository         = (*MockUserRepository)(nil)
	_ repository.SubmissionRepository   = (*MockSubmissionRepository)(nil)
	_ repository.PollRepository         = (*MockPollRepository)(nil)
	_ repository.NewsletterRepository   = (*MockNewsletterRepository)(nil)
	_ repository.BreakingNewsRepository = (*MockBreakingNewsRepository)(nil)
	_ repository.AuditRepository        = (*MockAuditRepository)(nil)
	_ repository.IdentityRepository     = (*MockIdentityRepository)(nil)
)

// NewRepositories returns a Repositories aggregate backed by fresh mocks
func NewRepositories() (*repository.Repositories, *Store) {
	s := &Store{
		Articles:     NewMockArticleRepository(),
		Categories:   NewMockCategoryRepository(),
		Tags:         NewMockTagRepository(),
		Users:        NewMockUserRepository(),
		Submissions:  NewMockSubmissionRepository(),
		Polls:        NewMockPollRepository(),
		Newsletter:   NewMockNewsletterRepository(),
		BreakingNews: NewMockBreakingNewsRepository(),
		Audit:        NewMockAuditRepository(),
		Identities:   NewMockIdentityRepository(),
	}
	s.Articles.Categories = s.Categories
	s.Articles.Users = s.Users
	return &repository.Repositories{
		Article:      s.Articles,
		Category:     s.Categories,
		Tag:          s.Tags,
		User:         s.Users,
		Submission:   s.Submissions,
		Poll:         s.Polls,
		Newsletter:   s.Newsletter,
		BreakingNews: s.BreakingNews,
		Audit:        s.Audit,
		Identity:     s.Identities,
	}, s
}

// Store exposes the concrete mocks behind a Repositories aggregate
type Store struct {
	Articles     *MockArticleRepository
	Categories   *MockCategoryRepository
	Tags         *MockTagRepository
	Users        *MockUserRepository
	Submissions  *MockSubmissionRepository
	Polls        *MockPollRepository
	Newsletter   *MockNewsletterRepository
	BreakingNews *MockBreakingNewsRepository
	Audit        *MockAuditRepository
	Identities   *MockIdentityRepository
}

// MockArticleRepository is a mock implementation of ArticleRepository
type MockArticleRepository struct {
	mu          sync.Mutex
	Articles    map[string]*models.Article
	Categories  *MockCategoryRepository
	Users       *MockUserRepository
	InsertError error
	ListError   error
	ViewsError  error
	ViewCalls   int
}

func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{Articles: make(map[string]*models.Article)}
}

func (m *MockArticleRepository) withRefs(a *models.Article) *models.Article {
	cp := *a
	if cp.CategoryID != nil && m.Categories != nil {
		if c, _ := m.Categories.GetByID(context.Background(), *cp.CategoryID); c != nil {
			cp.Category = &models.CategoryRef{ID: c.ID, Name: c.Name, Slug: c.Slug, BadgeColor: c.BadgeColor}
		}
	}
	if cp.AuthorID != nil && m.Users != nil {
		if u, _ := m.Users.GetByID(context.Background(), *cp.AuthorID); u != nil {
			cp.Author = &models.AuthorRef{ID: u.ID, Name: u.Name, Slug: u.Slug, AvatarURL: u.AvatarURL}
		}
	}
	return &cp
}

func matchesArticle(a *models.Article, f models.ArticleFilter) bool {
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.CategoryID != "" && (a.CategoryID == nil || *a.CategoryID != f.CategoryID) {
		return false
	}
	if f.AuthorID != "" && (a.AuthorID == nil || *a.AuthorID != f.AuthorID) {
		return false
	}
	if f.Type != "" && a.Type != f.Type {
		return false
	}
	if f.Featured != nil && a.IsFeatured != *f.Featured {
		return false
	}
	if f.Recommended != nil && a.IsRecommended != *f.Recommended {
		return false
	}
	if f.ExcludeID != "" && a.ID == f.ExcludeID {
		return false
	}
	if f.PublishedFrom != nil && (a.PublishedAt == nil || a.PublishedAt.Before(*f.PublishedFrom)) {
		return false
	}
	if f.PublishedTo != nil && (a.PublishedAt == nil || a.PublishedAt.After(*f.PublishedTo)) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		hay := strings.ToLower(a.Title + " " + deref(a.Excerpt) + " " + deref(a.Content))
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

func sortKey(a *models.Article, orderBy string) (*time.Time, float64, string) {
	switch orderBy {
	case "created_at":
		return &a.CreatedAt, 0, ""
	case "updated_at":
		return &a.UpdatedAt, 0, ""
	case "scheduled_at":
		return a.ScheduledAt, 0, ""
	case "view_count":
		return nil, float64(a.ViewCount), ""
	case "title":
		return nil, 0, a.Title
	default:
		return a.PublishedAt, 0, ""
	}
}

func (m *MockArticleRepository) filtered(f models.ArticleFilter) []*models.Article {
	out := make([]*models.Article, 0)
	for _, a := range m.Articles {
		if matchesArticle(a, f) {
			out = append(out, a)
		}
	}

	timeOrder := f.OrderBy == "" || f.OrderBy == "published_at" || f.OrderBy == "created_at" ||
		f.OrderBy == "updated_at" || f.OrderBy == "scheduled_at"
	sort.SliceStable(out, func(i, j int) bool {
		ti, ni, si := sortKey(out[i], f.OrderBy)
		tj, nj, sj := sortKey(out[j], f.OrderBy)
		if timeOrder {
			// nulls last in both directions
			if ti == nil || tj == nil {
				return ti != nil && tj == nil
			}
			if ti.Equal(*tj) {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			if f.Ascending {
				return ti.Before(*tj)
			}
			return ti.After(*tj)
		}
		if f.OrderBy == "title" {
			if f.Ascending {
				return si < sj
			}
			return si > sj
		}
		if f.Ascending {
			return ni < nj
		}
		return ni > nj
	})

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return out[:0]
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

func (m *MockArticleRepository) List(ctx context.Context, f models.ArticleFilter) ([]*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	list := m.filtered(f)
	out := make([]*models.Article, len(list))
	for i, a := range list {
		out[i] = m.withRefs(a)
	}
	return out, nil
}

func (m *MockArticleRepository) Count(ctx context.Context, f models.ArticleFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f.Limit, f.Offset = 0, 0
	return len(m.filtered(f)), nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.Articles[id]; ok {
		return m.withRefs(a), nil
	}
	return nil, nil
}

func (m *MockArticleRepository) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Articles {
		if a.Slug == slug {
			return m.withRefs(a), nil
		}
	}
	return nil, nil
}

func (m *MockArticleRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Articles {
		if a.Slug == slug && a.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockArticleRepository) Create(ctx context.Context, a *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	for _, existing := range m.Articles {
		if existing.Slug == a.Slug {
			return UniqueViolation("articles_slug_key")
		}
	}
	cp := *a
	m.Articles[a.ID] = &cp
	return nil
}

func (m *MockArticleRepository) Update(ctx context.Context, a *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	existing, ok := m.Articles[a.ID]
	if !ok {
		return nil
	}
	for _, other := range m.Articles {
		if other.ID != a.ID && other.Slug == a.Slug {
			return UniqueViolation("articles_slug_key")
		}
	}
	cp := *a
	cp.ViewCount = existing.ViewCount
	cp.CreatedAt = existing.CreatedAt
	cp.Category, cp.Author = nil, nil
	m.Articles[a.ID] = &cp
	return nil
}

func (m *MockArticleRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Articles[id]
	delete(m.Articles, id)
	return ok, nil
}

func (m *MockArticleRepository) IncrementViews(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ViewCalls++
	if m.ViewsError != nil {
		return m.ViewsError
	}
	if a, ok := m.Articles[id]; ok {
		a.ViewCount++
	}
	return nil
}

// Views returns the stored view count of an article
func (m *MockArticleRepository) Views(id string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.Articles[id]; ok {
		return a.ViewCount
	}
	return 0
}

func (m *MockArticleRepository) CountByStatus(ctx context.Context) (map[models.ArticleStatus]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[models.ArticleStatus]int)
	for _, a := range m.Articles {
		counts[a.Status]++
	}
	return counts, nil
}

func (m *MockArticleRepository) StreamAll(ctx context.Context, f models.ArticleFilter, callback func(*models.Article) error) error {
	articles, err := m.List(ctx, f)
	if err != nil {
		return err
	}
	for _, a := range articles {
		if err := callback(a); err != nil {
			return err
		}
	}
	return nil
}

// MockCategoryRepository is a mock implementation of CategoryRepository
type MockCategoryRepository struct {
	mu          sync.Mutex
	Categories  map[string]*models.Category
	InsertError error
}

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{Categories: make(map[string]*models.Category)}
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Category, 0, len(m.Categories))
	for _, c := range m.Categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Categories[id], nil
}

func (m *MockCategoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, nil
}

func (m *MockCategoryRepository) Create(ctx context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	for _, existing := range m.Categories {
		if existing.Slug == c.Slug {
			return UniqueViolation("categories_slug_key")
		}
	}
	m.Categories[c.ID] = c
	return nil
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Categories[id]
	delete(m.Categories, id)
	return ok, nil
}

// MockTagRepository is a mock implementation of TagRepository
type MockTagRepository struct {
	Tags []*models.Tag
}

func NewMockTagRepository() *MockTagRepository {
	return &MockTagRepository{Tags: make([]*models.Tag, 0)}
}

func (m *MockTagRepository) List(ctx context.Context) ([]*models.Tag, error) {
	return m.Tags, nil
}

func (m *MockTagRepository) GetBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	for _, t := range m.Tags {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, nil
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mu          sync.Mutex
	Users       map[string]*models.User
	InsertError error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Users: make(map[string]*models.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	for _, u := range m.Users {
		if u.ID == user.ID {
			return UniqueViolation("users_pkey")
		}
		if strings.EqualFold(u.Email, user.Email) {
			return UniqueViolation("users_email_key")
		}
	}
	cp := *user
	m.Users[user.ID] = &cp
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.Users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *MockUserRepository) GetBySlug(ctx context.Context, slug string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.Slug != nil && *u.Slug == slug {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepository) List(ctx context.Context, status models.UserStatus) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.User, 0)
	for _, u := range m.Users {
		if status == "" || u.Status == status {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockUserRepository) ListTeam(ctx context.Context) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.User, 0)
	for _, u := range m.Users {
		if u.Status == models.UserStatusApproved {
			out = append(out, u)
		}
	}
	rank := func(u *models.User) int {
		if u.Position == nil {
			return len(models.PositionRank) + 1
		}
		if r, ok := models.PositionRank[*u.Position]; ok {
			return r
		}
		return len(models.PositionRank) + 1
	}
	sort.Slice(out, func(i, j int) bool {
		if rank(out[i]) != rank(out[j]) {
			return rank(out[i]) < rank(out[j])
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Users[user.ID]
	if !ok {
		return nil
	}
	if user.Slug != nil {
		for _, u := range m.Users {
			if u.ID != user.ID && u.Slug != nil && *u.Slug == *user.Slug {
				return UniqueViolation("users_slug_key")
			}
		}
	}
	existing.Name = user.Name
	existing.AvatarURL = user.AvatarURL
	existing.Bio = user.Bio
	existing.Slug = user.Slug
	existing.Position = user.Position
	existing.Grade = user.Grade
	existing.Badges = user.Badges
	existing.UpdatedAt = user.UpdatedAt
	return nil
}

func (m *MockUserRepository) SetStatus(ctx context.Context, id string, status models.UserStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if ok {
		u.Status = status
	}
	return ok, nil
}

func (m *MockUserRepository) SetRole(ctx context.Context, id string, role models.Role) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if ok {
		u.Role = role
	}
	return ok, nil
}

func (m *MockUserRepository) CountByRole(ctx context.Context, role models.Role) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range m.Users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// MockSubmissionRepository is a mock implementation of SubmissionRepository.
// Like the SQL implementation it stores every new submission as pending.
type MockSubmissionRepository struct {
	mu           sync.Mutex
	Comments     map[string]*models.Comment
	Letters      map[string]*models.Letter
	Ideas        map[string]*models.IdeaSuggestion
	JoinRequests map[string]*models.JoinRequest
	Contacts     map[string]*models.ContactMessage
	InsertError  error
	ListError    error
}

func NewMockSubmissionRepository() *MockSubmissionRepository {
	return &MockSubmissionRepository{
		Comments:     make(map[string]*models.Comment),
		Letters:      make(map[string]*models.Letter),
		Ideas:        make(map[string]*models.IdeaSuggestion),
		JoinRequests: make(map[string]*models.JoinRequest),
		Contacts:     make(map[string]*models.ContactMessage),
	}
}

func (m *MockSubmissionRepository) CreateComment(ctx context.Context, c *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	cp := *c
	cp.Status = models.SubmissionPending
	m.Comments[c.ID] = &cp
	return nil
}

func (m *MockSubmissionRepository) CreateLetter(ctx context.Context, l *models.Letter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	cp := *l
	cp.Status = models.SubmissionPending
	m.Letters[l.ID] = &cp
	return nil
}

func (m *MockSubmissionRepository) CreateIdea(ctx context.Context, i *models.IdeaSuggestion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	cp := *i
	cp.Status = models.SubmissionPending
	m.Ideas[i.ID] = &cp
	return nil
}

func (m *MockSubmissionRepository) CreateJoinRequest(ctx context.Context, j *models.JoinRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	cp := *j
	cp.Status = models.SubmissionPending
	m.JoinRequests[j.ID] = &cp
	return nil
}

func (m *MockSubmissionRepository) CreateContact(ctx context.Context, c *models.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	cp := *c
	cp.Status = models.SubmissionPending
	m.Contacts[c.ID] = &cp
	return nil
}

func (m *MockSubmissionRepository) ListComments(ctx context.Context, articleID string, status models.SubmissionStatus) ([]*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	out := make([]*models.Comment, 0)
	for _, c := range m.Comments {
		if (articleID == "" || c.ArticleID == articleID) && (status == "" || c.Status == status) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockSubmissionRepository) ListLetters(ctx context.Context, status models.SubmissionStatus) ([]*models.Letter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	out := make([]*models.Letter, 0)
	for _, l := range m.Letters {
		if status == "" || l.Status == status {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *MockSubmissionRepository) ListIdeas(ctx context.Context, status models.SubmissionStatus) ([]*models.IdeaSuggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	out := make([]*models.IdeaSuggestion, 0)
	for _, i := range m.Ideas {
		if status == "" || i.Status == status {
			out = append(out, i)
		}
	}
	return out, nil
}

func (m *MockSubmissionRepository) ListJoinRequests(ctx context.Context, status models.SubmissionStatus) ([]*models.JoinRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	out := make([]*models.JoinRequest, 0)
	for _, j := range m.JoinRequests {
		if status == "" || j.Status == status {
			out = append(out, j)
		}
	}
	return out, nil
}

func (m *MockSubmissionRepository) ListContacts(ctx context.Context, status models.SubmissionStatus) ([]*models.ContactMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	out := make([]*models.ContactMessage, 0)
	for _, c := range m.Contacts {
		if status == "" || c.Status == status {
			out = append(out, c)
		}
	}
	return out, nil
}

// statusRef returns a pointer to the stored status of one submission
func (m *MockSubmissionRepository) statusRef(kind models.SubmissionKind, id string) *models.SubmissionStatus {
	switch kind {
	case models.KindComment:
		if c, ok := m.Comments[id]; ok {
			return &c.Status
		}
	case models.KindLetter:
		if l, ok := m.Letters[id]; ok {
			return &l.Status
		}
	case models.KindIdea:
		if i, ok := m.Ideas[id]; ok {
			return &i.Status
		}
	case models.KindJoinRequest:
		if j, ok := m.JoinRequests[id]; ok {
			return &j.Status
		}
	case models.KindContact:
		if c, ok := m.Contacts[id]; ok {
			return &c.Status
		}
	}
	return nil
}

func (m *MockSubmissionRepository) GetStatus(ctx context.Context, kind models.SubmissionKind, id string) (models.SubmissionStatus, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ref := m.statusRef(kind, id)
	if ref == nil {
		return "", false, nil
	}
	return *ref, true, nil
}

func (m *MockSubmissionRepository) SetStatus(ctx context.Context, kind models.SubmissionKind, id string, status models.SubmissionStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ref := m.statusRef(kind, id)
	if ref == nil {
		return false, nil
	}
	*ref = status
	return true, nil
}

func (m *MockSubmissionRepository) Delete(ctx context.Context, kind models.SubmissionKind, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statusRef(kind, id) == nil {
		return false, nil
	}
	switch kind {
	case models.KindComment:
		delete(m.Comments, id)
	case models.KindLetter:
		delete(m.Letters, id)
	case models.KindIdea:
		delete(m.Ideas, id)
	case models.KindJoinRequest:
		delete(m.JoinRequests, id)
	case models.KindContact:
		delete(m.Contacts, id)
	}
	return true, nil
}

func (m *MockSubmissionRepository) CountByStatus(ctx context.Context, kind models.SubmissionKind, status models.SubmissionStatus) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	switch kind {
	case models.KindComment:
		for _, c := range m.Comments {
			if c.Status == status {
				n++
			}
		}
	case models.KindLetter:
		for _, l := range m.Letters {
			if l.Status == status {
				n++
			}
		}
	}
	return n, nil
}

// MockPollRepository is a mock implementation of PollRepository
type MockPollRepository struct {
	mu    sync.Mutex
	Polls map[string]*models.Poll
	Now   func() time.Time
}

func NewMockPollRepository() *MockPollRepository {
	return &MockPollRepository{Polls: make(map[string]*models.Poll), Now: time.Now}
}

func clonePoll(p *models.Poll) *models.Poll {
	cp := *p
	cp.Options = append([]string(nil), p.Options...)
	cp.Votes = make(models.Votes, len(p.Votes))
	for k, v := range p.Votes {
		cp.Votes[k] = v
	}
	return &cp
}

func (m *MockPollRepository) List(ctx context.Context, activeOnly bool) ([]*models.Poll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Poll, 0)
	for _, p := range m.Polls {
		if !activeOnly || p.Active {
			out = append(out, clonePoll(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockPollRepository) GetByID(ctx context.Context, id string) (*models.Poll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.Polls[id]; ok {
		return clonePoll(p), nil
	}
	return nil, nil
}

func (m *MockPollRepository) Create(ctx context.Context, p *models.Poll) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Polls[p.ID] = clonePoll(p)
	return nil
}

func (m *MockPollRepository) SetActive(ctx context.Context, id string, active bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Polls[id]
	if ok {
		p.Active = active
	}
	return ok, nil
}

func (m *MockPollRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Polls[id]
	delete(m.Polls, id)
	return ok, nil
}

func (m *MockPollRepository) Vote(ctx context.Context, id, option string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Polls[id]
	if !ok || !p.HasOption(option) || !p.IsOpen(m.Now()) {
		return false, nil
	}
	if p.Votes == nil {
		p.Votes = make(models.Votes)
	}
	p.Votes[option]++
	return true, nil
}

// MockNewsletterRepository is a mock implementation of NewsletterRepository
type MockNewsletterRepository struct {
	mu          sync.Mutex
	Subscribers map[string]*models.NewsletterSubscriber
	InsertError error
}

func NewMockNewsletterRepository() *MockNewsletterRepository {
	return &MockNewsletterRepository{Subscribers: make(map[string]*models.NewsletterSubscriber)}
}

func (m *MockNewsletterRepository) Create(ctx context.Context, s *models.NewsletterSubscriber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	for _, existing := range m.Subscribers {
		if strings.EqualFold(existing.Email, s.Email) {
			return UniqueViolation("newsletter_subscribers_email_key")
		}
	}
	cp := *s
	m.Subscribers[s.ID] = &cp
	return nil
}

// GetByEmail is a lookup helper for tests
func (m *MockNewsletterRepository) GetByEmail(ctx context.Context, email string) (*models.NewsletterSubscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.Subscribers {
		if strings.EqualFold(s.Email, email) {
			return s, nil
		}
	}
	return nil, nil
}

func (m *MockNewsletterRepository) List(ctx context.Context) ([]*models.NewsletterSubscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.NewsletterSubscriber, 0, len(m.Subscribers))
	for _, s := range m.Subscribers {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *MockNewsletterRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Subscribers[id]
	delete(m.Subscribers, id)
	return ok, nil
}

func (m *MockNewsletterRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Subscribers), nil
}

func (m *MockNewsletterRepository) StreamAll(ctx context.Context, callback func(*models.NewsletterSubscriber) error) error {
	subs, _ := m.List(ctx)
	for _, s := range subs {
		if err := callback(s); err != nil {
			return err
		}
	}
	return nil
}

// MockBreakingNewsRepository is a mock implementation of BreakingNewsRepository
type MockBreakingNewsRepository struct {
	mu   sync.Mutex
	News []*models.BreakingNews
}

func NewMockBreakingNewsRepository() *MockBreakingNewsRepository {
	return &MockBreakingNewsRepository{News: make([]*models.BreakingNews, 0)}
}

func (m *MockBreakingNewsRepository) GetActive(ctx context.Context) (*models.BreakingNews, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *models.BreakingNews
	for _, b := range m.News {
		if b.Active && (latest == nil || b.CreatedAt.After(latest.CreatedAt)) {
			latest = b
		}
	}
	return latest, nil
}

func (m *MockBreakingNewsRepository) List(ctx context.Context) ([]*models.BreakingNews, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]*models.BreakingNews(nil), m.News...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockBreakingNewsRepository) Create(ctx context.Context, b *models.BreakingNews) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.News = append(m.News, b)
	return nil
}

func (m *MockBreakingNewsRepository) SetActive(ctx context.Context, id string, active bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.News {
		if b.ID == id {
			b.Active = active
			return true, nil
		}
	}
	return false, nil
}

func (m *MockBreakingNewsRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, b := range m.News {
		if b.ID == id {
			m.News = append(m.News[:i], m.News[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// MockAuditRepository is a mock implementation of AuditRepository
type MockAuditRepository struct {
	mu          sync.Mutex
	Entries     []*models.AuditEntry
	InsertError error
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{Entries: make([]*models.AuditEntry, 0)}
}

func (m *MockAuditRepository) Create(ctx context.Context, e *models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	m.Entries = append(m.Entries, e)
	return nil
}

func (m *MockAuditRepository) List(ctx context.Context, limit, offset int) ([]*models.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.AuditEntry, 0, len(m.Entries))
	for i := len(m.Entries) - 1; i >= 0; i-- {
		out = append(out, m.Entries[i])
	}
	if offset >= len(out) {
		return out[:0], nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Actions returns the recorded audit actions in order
func (m *MockAuditRepository) Actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = e.Action
	}
	return out
}

// MockIdentityRepository is a mock implementation of IdentityRepository
type MockIdentityRepository struct {
	mu          sync.Mutex
	Identities  map[string]*models.Identity
	InsertError error
}

func NewMockIdentityRepository() *MockIdentityRepository {
	return &MockIdentityRepository{Identities: make(map[string]*models.Identity)}
}

func (m *MockIdentityRepository) Create(ctx context.Context, i *models.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	for _, existing := range m.Identities {
		if strings.EqualFold(existing.Email, i.Email) {
			return UniqueViolation("identities_email_key")
		}
	}
	cp := *i
	m.Identities[i.ID] = &cp
	return nil
}

func (m *MockIdentityRepository) GetByID(ctx context.Context, id string) (*models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, ok := m.Identities[id]; ok {
		cp := *i
		return &cp, nil
	}
	return nil, nil
}

func (m *MockIdentityRepository) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.Identities {
		if strings.EqualFold(i.Email, email) {
			cp := *i
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockIdentityRepository) SetPassword(ctx context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, ok := m.Identities[id]; ok {
		i.PasswordHash = &hash
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
