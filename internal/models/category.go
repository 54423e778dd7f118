package models

import (
	"time"
)

// Category groups articles by topic
type Category struct {
	ID          string    `json:"id" db:"id" yaml:"id"`
	Name        string    `json:"name" db:"name" yaml:"name"`
	Slug        string    `json:"slug" db:"slug" yaml:"slug"`
	Description *string   `json:"description" db:"description" yaml:"description"`
	BadgeColor  string    `json:"badge_color" db:"badge_color" yaml:"badge_color"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" yaml:"-"`
}

// DefaultBadgeColor is used when a category has no explicit color
const DefaultBadgeColor = "#6366f1"

// Tag is a free-form label
type Tag struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// BreakingNews is a banner shown above the site
type BreakingNews struct {
	ID        string    `json:"id" db:"id"`
	Text      string    `json:"text" db:"text"`
	Link      *string   `json:"link" db:"link"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewsletterSubscriber is an email address signed up for the newsletter
type NewsletterSubscriber struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Confirmed bool      `json:"confirmed" db:"confirmed"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AuditEntry records a staff action
type AuditEntry struct {
	ID         string                 `json:"id" db:"id"`
	UserID     *string                `json:"user_id" db:"user_id"`
	Action     string                 `json:"action" db:"action"`
	EntityType *string                `json:"entity_type" db:"entity_type"`
	EntityID   *string                `json:"entity_id" db:"entity_id"`
	Details    map[string]interface{} `json:"details" db:"details"`
	CreatedAt  time.Time              `json:"created_at" db:"created_at"`
}

// DashboardStats backs the admin overview
type DashboardStats struct {
	Published       int `json:"published"`
	Drafts          int `json:"drafts"`
	Scheduled       int `json:"scheduled"`
	InReview        int `json:"in_review"`
	PendingComments int `json:"pending_comments"`
	Subscribers     int `json:"subscribers"`
}
