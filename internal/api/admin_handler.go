package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/school-newsroom-api/internal/apperr"
	"github.com/school-newsroom-api/internal/config"
	"github.com/school-newsroom-api/internal/models"
	"github.com/school-newsroom-api/internal/service"
)

// AdminHandler serves the staff surface under /api/admin
type AdminHandler struct {
	services *service.Services
	auth     config.AuthConfig
	log      zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(services *service.Services, auth config.AuthConfig, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		services: services,
		auth:     auth,
		log:      log.With().Str("handler", "admin").Logger(),
	}
}

func (h *AdminHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.auth.CookieName, token, maxAge, "/", "", h.auth.CookieSecure, true)
}

// Setup handles POST /api/setup, creating the first admin
func (h *AdminHandler) Setup(c *gin.Context) {
	var in models.SetupInput
	if err := bindJSON(c, &in); err != nil {
		writeError(c, h.log, err)
		return
	}

	user, err := h.services.Access.Setup(c.Request.Context(), &in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "user": user})
}

// Login handles POST /api/admin/login. The token is returned and set as an HttpOnly cookie.
func (h *AdminHandler) Login(c *gin.Context) {
	var in models.LoginInput
	if err := bindJSON(c, &in); err != nil {
		writeError(c, h.log, err)
		return
	}

	result, err := h.services.Access.Login(c.Request.Context(), &in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	h.setSessionCookie(c, result.Token, int(time.Until(result.ExpiresAt).Seconds()))
	c.JSON(http.StatusOK, result)
}

// Logout handles POST /api/admin/logout
func (h *AdminHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Claim handles POST /api/admin/invite/claim
func (h *AdminHandler) Claim(c *gin.Context) {
	var in models.ClaimInput
	if err := bindJSON(c, &in); err != nil {
		writeError(c, h.log, err)
		return
	}

	result, err := h.services.Access.Claim(c.Request.Context(), &in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": result.User})
}

// Me handles GET /api/admin/me. A signed-in identity may not have a profile yet.
func (h *AdminHandler) Me(c *gin.Context) {
	p := principal(c)
	c.JSON(http.StatusOK, gin.H{
		"id":      p.IdentityID,
		"email":   p.Email,
		"level":   p.Level().String(),
		"profile": p.Profile,
	})
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.services.Article.Stats(c.Request.Context(), principal(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) Calendar(c *gin.Context) {
	articles, err := h.services.Article.Calendar(c.Request.Context(), principal(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": articles})
}

// ListArticles handles GET /api/admin/articles?status=&category_id=&author_id=&type=&q=&limit=&offset=&sort=&order=
func (h *AdminHandler) ListArticles(c *gin.Context) {
	categoryID, err := queryUUID(c, "category_id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	authorID, err := queryUUID(c, "author_id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	filter := models.ArticleFilter{
		Status:     models.ArticleStatus(c.Query("status")),
		CategoryID: categoryID,
		AuthorID:   authorID,
		Type:       models.ArticleType(c.Query("type")),
		Search:     strings.TrimSpace(c.Query("q")),
		Limit:      queryInt(c, "limit", 0),
		Offset:     queryInt(c, "offset", 0),
		OrderBy:    c.DefaultQuery("sort", "updated_at"),
		Ascending:  strings.EqualFold(c.Query("order"), "asc"),
	}

	page, err := h.services.Article.AdminList(c.Request.Context(), principal(c), filter)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *AdminHandler) GetArticle(c *gin.Context) {
	article, err := h.services.Article.Get(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (h *AdminHandler) CreateArticle(c *gin.Context) {
	var in models.ArticleInput
	if err := bindJSON(c, &in); err != nil {
		writeError(c, h.log, err)
		return
	}

	article, err := h.services.Article.Create(c.Request.Context(), principal(c), &in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, article)
}

func (h *AdminHandler) UpdateArticle(c *gin.Context) {
	var in models.ArticleInput
	if err := bindJSON(c, &in); err != nil {
		writeError(c, h.log, err)
		return
	}

	article, err := h.services.Article.Update(c.Request.Context(), principal(c), c.Param("id"), &in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// SetArticleStatus handles PATCH /api/admin/articles/:id/status {status}
func (h *AdminHandler) SetArticleStatus(c *gin.Context) {
	var req struct {
		Status models.ArticleStatus `json:"status"`
	}
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}

	article, err := h.services.Article.SetStatus(c.Request.Context(), principal(c), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (h *AdminHandler) DeleteArticle(c *gin.Context) {
	if err := h.services.Article.Delete(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Invite handles POST /api/admin/invite {email, role?}
func (h *AdminHandler) Invite(c *gin.Context) {
	var in models.InviteInput
	if err := bindJSON(c, &in); err != nil {
		writeError(c, h.log, err)
		return
	}

	invite, err := h.services.Access.Invite(c.Request.Context(), principal(c), &in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user_id": invite.IdentityID})
}

// ListUsers handles GET /api/admin/users?status=
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.services.Access.ListUsers(c.Request.Context(), principal(c), models.UserStatus(c.Query("status")))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

// ApproveUser handles PATCH /api/admin/users/:id/status {status: "approved"}
func (h *AdminHandler) ApproveUser(c *gin.Context) {
	var req struct {
		Status models.UserStatus `json:"status"`
	}
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}
	if req.Status != models.UserStatusApproved {
		writeError(c, h.log, apperr.Validation("status", "status can only be set to approved"))
		return
	}

	if err := h.services.Access.Approve(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SetRole handles PATCH /api/admin/users/:id/role {role}
func (h *AdminHandler) SetRole(c *gin.Context) {
	var req struct {
		Role models.Role `json:"role"`
	}
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}

	if err := h.services.Access.SetRole(c.Request.Context(), principal(c), c.Param("id"), req.Role); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AdminHandler) UpdateProfile(c *gin.Context) {
	var in models.ProfileInput
	if err := bindJSON(c, &in); err != nil {
		writeError(c, h.log, err)
		return
	}

	user, err := h.services.Access.UpdateProfile(c.Request.Context(), principal(c), c.Param("id"), &in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListSubmissions handles GET /api/admin/submissions/:kind?status=
func (h *AdminHandler) ListSubmissions(c *gin.Context) {
	kind := models.SubmissionKind(c.Param("kind"))
	items, err := h.services.Submission.List(c.Request.Context(), principal(c), kind, models.SubmissionStatus(c.Query("status")))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// ModerateSubmission handles PATCH /api/admin/submissions/:kind/:id {status}
func (h *AdminHandler) ModerateSubmission(c *gin.Context) {
	var req struct {
		Status models.SubmissionStatus `json:"status"`
	}
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}

	kind := models.SubmissionKind(c.Param("kind"))
	changed, err := h.services.Submission.Moderate(c.Request.Context(), principal(c), kind, c.Param("id"), req.Status)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "changed": changed})
}

func (h *AdminHandler) DeleteSubmission(c *gin.Context) {
	kind := models.SubmissionKind(c.Param("kind"))
	if err := h.services.Submission.Delete(c.Request.Context(), principal(c), kind, c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AdminHandler) ListPolls(c *gin.Context) {
	polls, err := h.services.Poll.List(c.Request.Context(), principal(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": polls})
}

func (h *AdminHandler) CreatePoll(c *gin.Context) {
	var in models.PollInput
	if err := bindJSON(c, &in); err != nil {
		writeError(c, h.log, err)
		return
	}

	poll, err := h.services.Poll.Create(c.Request.Context(), principal(c), &in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, poll)
}

type activeRequest struct {
	Active *bool `json:"active"`
}

func bindActive(c *gin.Context) (bool, error) {
	var req activeRequest
	if err := bindJSON(c, &req); err != nil {
		return false, err
	}
	if req.Active == nil {
		return false, apperr.Validation("active", "active is required")
	}
	return *req.Active, nil
}

// SetPollActive handles PATCH /api/admin/polls/:id/active {active}
func (h *AdminHandler) SetPollActive(c *gin.Context) {
	active, err := bindActive(c)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if err := h.services.Poll.SetActive(c.Request.Context(), principal(c), c.Param("id"), active); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AdminHandler) DeletePoll(c *gin.Context) {
	if err := h.services.Poll.Delete(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AdminHandler) ListBreakingNews(c *gin.Context) {
	items, err := h.services.Catalog.ListBreakingNews(c.Request.Context(), principal(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// CreateBreakingNews handles POST /api/admin/breaking-news {text, link?}
func (h *AdminHandler) CreateBreakingNews(c *gin.Context) {
	var req struct {
		Text string  `json:"text"`
		Link *string `json:"link"`
	}
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}

	news, err := h.services.Catalog.CreateBreakingNews(c.Request.Context(), principal(c), req.Text, req.Link)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, news)
}

func (h *AdminHandler) SetBreakingNewsActive(c *gin.Context) {
	active, err := bindActive(c)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if err := h.services.Catalog.SetBreakingNewsActive(c.Request.Context(), principal(c), c.Param("id"), active); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AdminHandler) DeleteBreakingNews(c *gin.Context) {
	if err := h.services.Catalog.DeleteBreakingNews(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CreateCategory handles POST /api/admin/categories {name, slug?, description?, badge_color?}
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var req struct {
		Name        string  `json:"name"`
		Slug        string  `json:"slug"`
		Description *string `json:"description"`
		BadgeColor  string  `json:"badge_color"`
	}
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}

	category, err := h.services.Catalog.CreateCategory(c.Request.Context(), principal(c), &models.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		BadgeColor:  req.BadgeColor,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	if err := h.services.Catalog.DeleteCategory(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AdminHandler) ListSubscribers(c *gin.Context) {
	subscribers, err := h.services.Newsletter.List(c.Request.Context(), principal(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": subscribers, "total": len(subscribers)})
}

func (h *AdminHandler) DeleteSubscriber(c *gin.Context) {
	if err := h.services.Newsletter.Delete(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AuditLog handles GET /api/admin/audit-log?limit=&offset=
func (h *AdminHandler) AuditLog(c *gin.Context) {
	entries, err := h.services.Audit.List(c.Request.Context(), principal(c), queryInt(c, "limit", 0), queryInt(c, "offset", 0))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}
