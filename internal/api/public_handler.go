package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/school-newsroom-api/internal/apperr"
	"github.com/school-newsroom-api/internal/models"
	"github.com/school-newsroom-api/internal/service"
)

// PublicHandler serves the reading surface and visitor submissions
type PublicHandler struct {
	services *service.Services
	metrics  *Metrics
	log      zerolog.Logger
}

// NewPublicHandler creates a new PublicHandler
func NewPublicHandler(services *service.Services, metrics *Metrics, log zerolog.Logger) *PublicHandler {
	return &PublicHandler{
		services: services,
		metrics:  metrics,
		log:      log.With().Str("handler", "public").Logger(),
	}
}

// ListArticles handles GET /api/articles?type=&featured=&recommended=&category_id=&limit=&offset=&sort=&order=
func (h *PublicHandler) ListArticles(c *gin.Context) {
	categoryID, err := queryUUID(c, "category_id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	filter := models.ArticleFilter{
		CategoryID:  categoryID,
		Type:        models.ArticleType(c.Query("type")),
		Featured:    queryBool(c, "featured"),
		Recommended: queryBool(c, "recommended"),
		Limit:       queryInt(c, "limit", 0),
		Offset:      queryInt(c, "offset", 0),
		OrderBy:     c.Query("sort"),
		Ascending:   strings.EqualFold(c.Query("order"), "asc"),
	}

	page, err := h.services.Article.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Featured handles GET /api/articles/featured; the body is null when nothing is featured
func (h *PublicHandler) Featured(c *gin.Context) {
	article, err := h.services.Article.Featured(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (h *PublicHandler) Recommended(c *gin.Context) {
	articles, err := h.services.Article.Recommended(c.Request.Context(), queryInt(c, "limit", 4))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": articles})
}

func (h *PublicHandler) ShortNotices(c *gin.Context) {
	articles, err := h.services.Article.ShortNotices(c.Request.Context(), queryInt(c, "limit", 5))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": articles})
}

func (h *PublicHandler) Top(c *gin.Context) {
	articles, err := h.services.Article.Top(c.Request.Context(), queryInt(c, "limit", 5))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": articles})
}

// Search handles GET /api/articles/search?q=
func (h *PublicHandler) Search(c *gin.Context) {
	articles, err := h.services.Article.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": articles})
}

// Archive handles GET /api/articles/archive/:year/:month
func (h *PublicHandler) Archive(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		writeError(c, h.log, apperr.Validation("year", "year must be a number"))
		return
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		writeError(c, h.log, apperr.Validation("month", "month must be a number"))
		return
	}

	articles, err := h.services.Article.Archive(c.Request.Context(), year, month)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": articles})
}

// ArticleDetail handles GET /api/articles/:slug
func (h *PublicHandler) ArticleDetail(c *gin.Context) {
	detail, err := h.services.Article.Detail(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Comments handles GET /api/articles/:slug/comments
func (h *PublicHandler) Comments(c *gin.Context) {
	comments, err := h.services.Submission.ApprovedComments(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": comments})
}

// PostComment handles POST /api/articles/:slug/comments. Comments are held for moderation.
func (h *PublicHandler) PostComment(c *gin.Context) {
	var in models.SubmissionInput
	if err := bindJSON(c, &in); err != nil {
		writeError(c, h.log, err)
		return
	}

	comment, err := h.services.Submission.Comment(c.Request.Context(), c.Param("slug"), &in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	h.metrics.submissions.WithLabelValues(string(models.KindComment)).Inc()
	c.JSON(http.StatusCreated, gin.H{"success": true, "id": comment.ID, "status": comment.Status})
}

// Submit returns the handler for one kind of visitor submission
func (h *PublicHandler) Submit(kind models.SubmissionKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.SubmissionInput
		if err := bindJSON(c, &in); err != nil {
			writeError(c, h.log, err)
			return
		}

		id, err := h.services.Submission.Submit(c.Request.Context(), kind, &in)
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		h.metrics.submissions.WithLabelValues(string(kind)).Inc()
		c.JSON(http.StatusCreated, gin.H{"success": true, "id": id})
	}
}

func (h *PublicHandler) Categories(c *gin.Context) {
	categories, err := h.services.Catalog.Categories(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": categories})
}

// Category handles GET /api/categories/:slug with a page of its published articles
func (h *PublicHandler) Category(c *gin.Context) {
	category, page, err := h.services.Article.ByCategory(c.Request.Context(), c.Param("slug"),
		queryInt(c, "limit", 0), queryInt(c, "offset", 0))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category, "articles": page})
}

func (h *PublicHandler) Tags(c *gin.Context) {
	tags, err := h.services.Catalog.Tags(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tags})
}

func (h *PublicHandler) Tag(c *gin.Context) {
	tag, err := h.services.Catalog.Tag(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// Author handles GET /api/authors/:slug
func (h *PublicHandler) Author(c *gin.Context) {
	page, err := h.services.Catalog.Author(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *PublicHandler) Team(c *gin.Context) {
	team, err := h.services.Catalog.Team(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": team})
}

// BreakingNews handles GET /api/breaking-news; the body is null without an active banner
func (h *PublicHandler) BreakingNews(c *gin.Context) {
	news, err := h.services.Catalog.BreakingNews(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, news)
}

func (h *PublicHandler) Polls(c *gin.Context) {
	polls, err := h.services.Poll.Active(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": polls})
}

func (h *PublicHandler) Poll(c *gin.Context) {
	poll, err := h.services.Poll.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, poll)
}

// Vote handles POST /api/polls/:id/vote {option}
func (h *PublicHandler) Vote(c *gin.Context) {
	var req struct {
		Option string `json:"option"`
	}
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}

	result, err := h.services.Poll.Vote(c.Request.Context(), c.Param("id"), req.Option)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	h.metrics.pollVotes.Inc()
	c.JSON(http.StatusOK, result)
}

// Subscribe handles POST /api/newsletter {email}
func (h *PublicHandler) Subscribe(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}

	if _, err := h.services.Newsletter.Subscribe(c.Request.Context(), req.Email); err != nil {
		writeError(c, h.log, err)
		return
	}
	h.metrics.signups.Inc()
	c.JSON(http.StatusOK, gin.H{"success": true})
}
