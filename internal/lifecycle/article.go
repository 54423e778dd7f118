// Package lifecycle holds the status rules for articles and moderated submissions.
package lifecycle

import (
	"errors"
	"time"

	"github.com/school-newsroom-api/internal/derive"
	"github.com/school-newsroom-api/internal/models"
)

var (
	ErrMissingTitle = errors.New("title is required")
	ErrMissingSlug  = errors.New("slug is required")
)

// ReadyToPublish reports why a may not go live, nil if it can
func ReadyToPublish(a *models.Article) error {
	if a.Title == "" {
		return ErrMissingTitle
	}
	if a.Slug == "" {
		return ErrMissingSlug
	}
	return nil
}

// SetStatus moves a to next. The first entry into published stamps
// PublishedAt with now; PublishedAt is never cleared or re-stamped after
// that. It returns true when this call stamped PublishedAt.
func SetStatus(a *models.Article, next models.ArticleStatus, now time.Time) bool {
	a.Status = next
	if next == models.ArticleStatusPublished && a.PublishedAt == nil {
		stamped := now
		a.PublishedAt = &stamped
		return true
	}
	return false
}

// PrepareSave recomputes the fields every save refreshes
func PrepareSave(a *models.Article, now time.Time) {
	body := ""
	if a.Content != nil {
		body = *a.Content
	}
	a.ReadingTime = derive.ReadingTime(body)
	a.UpdatedAt = now
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
}
