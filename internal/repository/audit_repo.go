package repository

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/school-newsroom-api/internal/database"
	"github.com/school-newsroom-api/internal/models"
)

// auditRepo is the concrete implementation of AuditRepository
type auditRepo struct {
	db *database.DB
}

// NewAuditRepo creates a new audit log repository
func NewAuditRepo(db *database.DB) AuditRepository {
	return &auditRepo{db: db}
}

// Create appends an entry
func (r *auditRepo) Create(ctx context.Context, e *models.AuditEntry) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return errors.Wrap(err, "encode audit details")
	}
	if e.Details == nil {
		details = []byte("{}")
	}

	query := `
		INSERT INTO audit_logs (id, user_id, action, entity_type, entity_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.ExecContext(ctx, query, e.ID, e.UserID, e.Action, e.EntityType, e.EntityID, details, e.CreatedAt)
	return errors.Wrap(err, "insert audit entry")
}

// List returns entries newest first
func (r *auditRepo) List(ctx context.Context, limit, offset int) ([]*models.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, action, entity_type, entity_id, details, created_at
		FROM audit_logs ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "list audit log")
	}
	defer rows.Close()

	entries := make([]*models.AuditEntry, 0)
	for rows.Next() {
		var e models.AuditEntry
		var details []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.EntityType, &e.EntityID, &details, &e.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan audit entry")
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, errors.Wrap(err, "decode audit details")
			}
		}
		entries = append(entries, &e)
	}
	return entries, errors.Wrap(rows.Err(), "list audit log")
}
