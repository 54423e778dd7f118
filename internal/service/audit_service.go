package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/school-newsroom-api/internal/access"
	"github.com/school-newsroom-api/internal/models"
	"github.com/school-newsroom-api/internal/repository"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

// auditService is the concrete implementation of AuditService
type auditService struct {
	audit repository.AuditRepository
	log   zerolog.Logger
}

func newAuditService(audit repository.AuditRepository, log zerolog.Logger) *auditService {
	return &auditService{
		audit: audit,
		log:   log.With().Str("service", "audit").Logger(),
	}
}

// Record appends an entry. Failures are logged and never reach the caller.
func (s *auditService) Record(ctx context.Context, p *access.Principal, action, entityType, entityID string, details map[string]interface{}) {
	entry := &models.AuditEntry{
		ID:        uuid.New().String(),
		Action:    action,
		Details:   details,
		CreatedAt: time.Now(),
	}
	if p != nil {
		userID := p.UserID()
		entry.UserID = &userID
	}
	if entityType != "" {
		entry.EntityType = &entityType
	}
	if entityID != "" {
		entry.EntityID = &entityID
	}

	if err := s.audit.Create(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("action", action).Str("entity_id", entityID).Msg("Failed to write audit entry")
	}
}

// List returns the newest entries first; admins only
func (s *auditService) List(ctx context.Context, p *access.Principal, limit, offset int) ([]*models.AuditEntry, error) {
	if err := access.Require(p, access.LevelAdmin); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.audit.List(ctx, limit, offset)
}
