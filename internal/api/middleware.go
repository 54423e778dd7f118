package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/school-newsroom-api/internal/access"
	"github.com/school-newsroom-api/internal/apperr"
	"github.com/school-newsroom-api/internal/ratelimit"
	"github.com/school-newsroom-api/internal/service"
	"github.com/school-newsroom-api/internal/validation"
)

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Str("path", c.Request.URL.Path).Msg("Panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		if p := principal(c); p != nil {
			event = event.Str("identity_id", p.IdentityID)
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS. Credentials are only allowed for a concrete origin.
func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if origin != "*" {
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func sessionToken(c *gin.Context, cookieName string) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if v, err := c.Cookie(cookieName); err == nil {
		return v
	}
	return ""
}

// sessionMiddleware resolves the session token, if any, into the request principal.
// An invalid token leaves the request anonymous.
func sessionMiddleware(accessSvc service.AccessService, cookieName string, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c, cookieName)
		if token == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		p, err := accessSvc.Principal(ctx, token)
		if err != nil {
			if !apperr.Is(err, apperr.KindUnauthenticated) {
				log.Warn().Err(err).Msg("Failed to resolve session")
			}
			c.Next()
			return
		}
		c.Request = c.Request.WithContext(access.WithPrincipal(ctx, p))
		c.Next()
	}
}

// requireSession rejects requests without a signed-in principal
func requireSession(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if principal(c) == nil {
			writeError(c, log, apperr.Unauthenticated("not authenticated"))
			return
		}
		c.Next()
	}
}

// rateLimitMiddleware applies the submission limit per client IP
func rateLimitMiddleware(limiter ratelimit.Limiter, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, _ := limiter.Allow(c.Request.Context(), c.ClientIP())
		if !allowed {
			writeError(c, log, apperr.RateLimited())
			return
		}
		c.Next()
	}
}

// uuidParam answers 404 for a malformed :id before it reaches a UUID column
func uuidParam(entity string, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !validation.IsUUID(c.Param("id")) {
			writeError(c, log, apperr.NotFound(entity))
			return
		}
		c.Next()
	}
}
