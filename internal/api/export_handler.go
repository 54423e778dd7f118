package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/school-newsroom-api/internal/access"
	"github.com/school-newsroom-api/internal/apperr"
	"github.com/school-newsroom-api/internal/service"
)

// ExportHandler handles streamed exports for editors
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// exportFormat validates ?format= against the formats of a resource; ndjson is the default
func exportFormat(c *gin.Context, allowed ...string) (string, error) {
	format := c.DefaultQuery("format", "ndjson")
	for _, f := range allowed {
		if f == format {
			return format, nil
		}
	}
	return "", apperr.Validation("format", "unsupported export format")
}

func (h *ExportHandler) prepare(c *gin.Context, resource string, formats ...string) (string, bool) {
	if err := access.Require(principal(c), access.LevelEditor); err != nil {
		writeError(c, h.log, err)
		return "", false
	}
	format, err := exportFormat(c, formats...)
	if err != nil {
		writeError(c, h.log, err)
		return "", false
	}

	if count, err := h.services.Export.GetCount(c.Request.Context(), resource); err == nil {
		c.Header("X-Total-Count", strconv.Itoa(count))
	}
	h.log.Info().
		Str("resource", resource).
		Str("format", format).
		Str("user_id", principal(c).UserID()).
		Msg("Starting streaming export")
	return format, true
}

// StreamSubscribers handles GET /api/admin/newsletter/export?format=ndjson|json|csv
func (h *ExportHandler) StreamSubscribers(c *gin.Context) {
	format, ok := h.prepare(c, "subscribers", "ndjson", "json", "csv")
	if !ok {
		return
	}

	c.Status(http.StatusOK)
	if err := h.services.Export.StreamSubscribers(c.Request.Context(), c.Writer, format); err != nil {
		// Can't return error JSON after streaming has started
		h.log.Error().Err(err).Msg("Subscriber export failed")
	}
}

// StreamArticles handles GET /api/admin/articles/export?format=ndjson|json
func (h *ExportHandler) StreamArticles(c *gin.Context) {
	format, ok := h.prepare(c, "articles", "ndjson", "json")
	if !ok {
		return
	}

	c.Status(http.StatusOK)
	if err := h.services.Export.StreamArticles(c.Request.Context(), c.Writer, format); err != nil {
		h.log.Error().Err(err).Msg("Article export failed")
	}
}
