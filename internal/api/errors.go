package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/school-newsroom-api/internal/access"
	"github.com/school-newsroom-api/internal/apperr"
	"github.com/school-newsroom-api/internal/validation"
)

// statusOf maps an error kind to its HTTP status. Conflicts are reported as
// 400 so that duplicate signups and invites share the validation contract.
func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindConflict:
		return http.StatusBadRequest
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"error": message, "code": code} and aborts the request
func writeError(c *gin.Context, log zerolog.Logger, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Internal("internal server error", err)
	}

	status := statusOf(appErr.Kind)
	message := appErr.Message
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
		if message == "" {
			message = "internal server error"
		}
	}

	body := gin.H{"error": message}
	if appErr.Code != "" {
		body["code"] = appErr.Code
	}
	c.AbortWithStatusJSON(status, body)
}

// bindJSON decodes the request body into dst
func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperr.Validation("body", "invalid request body")
	}
	return nil
}

func principal(c *gin.Context) *access.Principal {
	return access.FromContext(c.Request.Context())
}

func queryInt(c *gin.Context, name string, def int) int {
	if v := c.Query(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func queryBool(c *gin.Context, name string) *bool {
	v := c.Query(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

// queryUUID returns an optional id filter, rejecting anything that is not a UUID
func queryUUID(c *gin.Context, name string) (string, error) {
	v := c.Query(name)
	if v != "" && !validation.IsUUID(v) {
		return "", apperr.Validation(name, "invalid UUID format")
	}
	return v, nil
}
