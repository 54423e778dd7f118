package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/school-newsroom-api/internal/config"
	"github.com/school-newsroom-api/internal/models"
	"github.com/school-newsroom-api/internal/ratelimit"
	"github.com/school-newsroom-api/internal/service"
)

// HealthChecker is the database view used by /health
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
	Stats() sql.DBStats
}

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, db HealthChecker, limiter ratelimit.Limiter, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	metrics := NewMetrics()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(metrics.middleware())
	router.Use(corsMiddleware(cfg.Server.AllowedOrigin))
	router.Use(sessionMiddleware(services.Access, cfg.Auth.CookieName, log))
	router.Use(loggingMiddleware(log))

	// Handlers
	public := NewPublicHandler(services, metrics, log)
	admin := NewAdminHandler(services, cfg.Auth, log)
	exports := NewExportHandler(services, log)
	limited := rateLimitMiddleware(limiter, log)

	articleID := uuidParam("article", log)
	userID := uuidParam("user", log)
	submissionID := uuidParam("submission", log)
	pollID := uuidParam("poll", log)
	newsID := uuidParam("breaking news", log)
	categoryID := uuidParam("category", log)
	subscriberID := uuidParam("subscriber", log)

	router.GET("/health", healthCheck(db, log))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	{
		articles := api.Group("/articles")
		{
			articles.GET("", public.ListArticles)
			articles.GET("/featured", public.Featured)
			articles.GET("/recommended", public.Recommended)
			articles.GET("/short-notices", public.ShortNotices)
			articles.GET("/top", public.Top)
			articles.GET("/search", public.Search)
			articles.GET("/archive/:year/:month", public.Archive)
			articles.GET("/:slug", public.ArticleDetail)
			articles.GET("/:slug/comments", public.Comments)
			articles.POST("/:slug/comments", limited, public.PostComment)
		}

		api.GET("/categories", public.Categories)
		api.GET("/categories/:slug", public.Category)
		api.GET("/tags", public.Tags)
		api.GET("/tags/:slug", public.Tag)
		api.GET("/authors/:slug", public.Author)
		api.GET("/team", public.Team)
		api.GET("/breaking-news", public.BreakingNews)

		api.GET("/polls", public.Polls)
		api.GET("/polls/:id", pollID, public.Poll)
		api.POST("/polls/:id/vote", pollID, limited, public.Vote)

		api.POST("/newsletter", limited, public.Subscribe)
		api.POST("/letters", limited, public.Submit(models.KindLetter))
		api.POST("/ideas", limited, public.Submit(models.KindIdea))
		api.POST("/join-requests", limited, public.Submit(models.KindJoinRequest))
		api.POST("/contact", limited, public.Submit(models.KindContact))

		api.POST("/setup", limited, admin.Setup)
	}

	// Admin surface; everything except login, logout and invite claim needs a session
	adm := router.Group("/api/admin")
	{
		adm.POST("/login", limited, admin.Login)
		adm.POST("/logout", admin.Logout)
		adm.POST("/invite/claim", limited, admin.Claim)

		staff := adm.Group("", requireSession(log))
		staff.GET("/me", admin.Me)
		staff.GET("/stats", admin.Stats)
		staff.GET("/calendar", admin.Calendar)

		staff.GET("/articles", admin.ListArticles)
		staff.POST("/articles", admin.CreateArticle)
		staff.GET("/articles/export", exports.StreamArticles)
		staff.GET("/articles/:id", articleID, admin.GetArticle)
		staff.PUT("/articles/:id", articleID, admin.UpdateArticle)
		staff.DELETE("/articles/:id", articleID, admin.DeleteArticle)
		staff.PATCH("/articles/:id/status", articleID, admin.SetArticleStatus)

		staff.POST("/invite", admin.Invite)
		staff.GET("/users", admin.ListUsers)
		staff.PUT("/users/:id", userID, admin.UpdateProfile)
		staff.PATCH("/users/:id/status", userID, admin.ApproveUser)
		staff.PATCH("/users/:id/role", userID, admin.SetRole)

		staff.GET("/submissions/:kind", admin.ListSubmissions)
		staff.PATCH("/submissions/:kind/:id", submissionID, admin.ModerateSubmission)
		staff.DELETE("/submissions/:kind/:id", submissionID, admin.DeleteSubmission)

		staff.GET("/polls", admin.ListPolls)
		staff.POST("/polls", admin.CreatePoll)
		staff.PATCH("/polls/:id/active", pollID, admin.SetPollActive)
		staff.DELETE("/polls/:id", pollID, admin.DeletePoll)

		staff.GET("/breaking-news", admin.ListBreakingNews)
		staff.POST("/breaking-news", admin.CreateBreakingNews)
		staff.PATCH("/breaking-news/:id/active", newsID, admin.SetBreakingNewsActive)
		staff.DELETE("/breaking-news/:id", newsID, admin.DeleteBreakingNews)

		staff.POST("/categories", admin.CreateCategory)
		staff.DELETE("/categories/:id", categoryID, admin.DeleteCategory)

		staff.GET("/newsletter", admin.ListSubscribers)
		staff.GET("/newsletter/export", exports.StreamSubscribers)
		staff.DELETE("/newsletter/:id", subscriberID, admin.DeleteSubscriber)

		staff.GET("/audit-log", admin.AuditLog)
	}

	return router
}

// healthCheck reports the service and database status; an unreachable database answers 503
func healthCheck(db HealthChecker, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		code, status, dbStatus := http.StatusOK, "healthy", "ok"
		if err := db.HealthCheck(ctx); err != nil {
			log.Error().Err(err).Msg("Database health check failed")
			code, status, dbStatus = http.StatusServiceUnavailable, "unhealthy", "unreachable"
		}
		c.JSON(code, gin.H{
			"status":           status,
			"timestamp":        time.Now().Format(time.RFC3339),
			"service":          "school-newsroom-api",
			"database":         dbStatus,
			"open_connections": db.Stats().OpenConnections,
		})
	}
}
