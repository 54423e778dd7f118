// Package access derives what a signed-in account is allowed to do.
//
// Role only means something once the account is approved, so callers never
// look at role and status separately: they ask for the Level.
package access

import (
	"context"

	"github.com/school-newsroom-api/internal/apperr"
	"github.com/school-newsroom-api/internal/models"
)

// Level is the effective authorization of an account
type Level int

const (
	LevelNone Level = iota // no profile, or profile not approved
	LevelAuthor
	LevelEditor
	LevelAdmin
)

func (l Level) String() string {
	switch l {
	case LevelAuthor:
		return "author"
	case LevelEditor:
		return "editor"
	case LevelAdmin:
		return "admin"
	default:
		return "none"
	}
}

// LevelOf combines role and status into one level
func LevelOf(u *models.User) Level {
	if u == nil || u.Status != models.UserStatusApproved {
		return LevelNone
	}
	switch u.Role {
	case models.RoleAdmin:
		return LevelAdmin
	case models.RoleEditor:
		return LevelEditor
	case models.RoleAuthor:
		return LevelAuthor
	default:
		return LevelNone
	}
}

// Principal is the caller of a request
type Principal struct {
	IdentityID string
	Email      string
	Profile    *models.User // nil until the invite has been claimed
}

// Level of the principal; nil principals have LevelNone
func (p *Principal) Level() Level {
	if p == nil {
		return LevelNone
	}
	return LevelOf(p.Profile)
}

// UserID returns the profile id, empty when there is no profile
func (p *Principal) UserID() string {
	if p == nil || p.Profile == nil {
		return ""
	}
	return p.Profile.ID
}

// Require fails unless p is signed in with at least min
func Require(p *Principal, min Level) error {
	if p == nil {
		return apperr.Unauthenticated("not authenticated")
	}
	if p.Level() < min {
		return apperr.Forbidden("insufficient permissions")
	}
	return nil
}

// RequireStaff fails unless p is any approved staff member
func RequireStaff(p *Principal) error {
	return Require(p, LevelAuthor)
}

// CanSetArticleStatus reports whether l may move an article into status.
// Authors write and submit for review; editors and admins schedule and publish.
func CanSetArticleStatus(l Level, status models.ArticleStatus) bool {
	switch status {
	case models.ArticleStatusDraft, models.ArticleStatusReview:
		return l >= LevelAuthor
	default:
		return l >= LevelEditor
	}
}

type principalKey struct{}

// WithPrincipal stores p in ctx
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored in ctx, or nil
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
