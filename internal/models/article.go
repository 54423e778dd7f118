package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ArticleStatus is the publication state of an article
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusReview    ArticleStatus = "review"
	ArticleStatusScheduled ArticleStatus = "scheduled"
	ArticleStatusPublished ArticleStatus = "published"
)

// ValidArticleStatuses defines allowed article statuses
var ValidArticleStatuses = map[ArticleStatus]bool{
	ArticleStatusDraft:     true,
	ArticleStatusReview:    true,
	ArticleStatusScheduled: true,
	ArticleStatusPublished: true,
}

// ArticleType is the editorial format of an article
type ArticleType string

const (
	ArticleTypeStandard    ArticleType = "standard"
	ArticleTypeShortNotice ArticleType = "short-notice"
	ArticleTypeInterview   ArticleType = "interview"
	ArticleTypeOpinion     ArticleType = "opinion"
	ArticleTypeFeature     ArticleType = "feature"
	ArticleTypePhotoEssay  ArticleType = "photo-essay"
	ArticleTypePollArticle ArticleType = "poll-article"
	ArticleTypeEvent       ArticleType = "event"
)

// ValidArticleTypes defines allowed article types
var ValidArticleTypes = map[ArticleType]bool{
	ArticleTypeStandard:    true,
	ArticleTypeShortNotice: true,
	ArticleTypeInterview:   true,
	ArticleTypeOpinion:     true,
	ArticleTypeFeature:     true,
	ArticleTypePhotoEssay:  true,
	ArticleTypePollArticle: true,
	ArticleTypeEvent:       true,
}

// Article represents a publishable content item
type Article struct {
	ID               string        `json:"id" db:"id"`
	Title            string        `json:"title" db:"title"`
	Subtitle         *string       `json:"subtitle" db:"subtitle"`
	Slug             string        `json:"slug" db:"slug"`
	Excerpt          *string       `json:"excerpt" db:"excerpt"`
	Content          *string       `json:"content" db:"content"`
	Type             ArticleType   `json:"type" db:"type"`
	Status           ArticleStatus `json:"status" db:"status"`
	CategoryID       *string       `json:"category_id" db:"category_id"`
	AuthorID         *string       `json:"author_id" db:"author_id"`
	IsFeatured       bool          `json:"is_featured" db:"is_featured"`
	IsRecommended    bool          `json:"is_recommended" db:"is_recommended"`
	CommentsEnabled  bool          `json:"comments_enabled" db:"comments_enabled"`
	PublishedAt      *time.Time    `json:"published_at" db:"published_at"`
	ScheduledAt      *time.Time    `json:"scheduled_at" db:"scheduled_at"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`
	ReadingTime      int           `json:"reading_time" db:"reading_time"`
	ViewCount        int64         `json:"view_count" db:"view_count"`
	HeroImageURL     *string       `json:"hero_image_url" db:"hero_image_url"`
	HeroImageAlt     *string       `json:"hero_image_alt" db:"hero_image_alt"`
	HeroImageCredits *string       `json:"hero_image_credits" db:"hero_image_credits"`
	MetaTitle        *string       `json:"meta_title" db:"meta_title"`
	MetaDescription  *string       `json:"meta_description" db:"meta_description"`
	OGImage          *string       `json:"og_image" db:"og_image"`
	GalleryImages    GalleryImages `json:"gallery_images" db:"gallery_images"`
	PollData         *PollData     `json:"poll_data" db:"poll_data"`
	EventData        *EventData    `json:"event_data" db:"event_data"`

	// Joined on read, never written
	Category *CategoryRef `json:"category,omitempty" db:"-"`
	Author   *AuthorRef   `json:"author,omitempty" db:"-"`
}

// IsPublished reports whether the article is currently live
func (a *Article) IsPublished() bool {
	return a.Status == ArticleStatusPublished
}

// CategoryRef is the category summary embedded in article listings
type CategoryRef struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	BadgeColor string `json:"badge_color"`
}

// AuthorRef is the author summary embedded in article listings
type AuthorRef struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Slug      *string `json:"slug"`
	AvatarURL *string `json:"avatar_url"`
}

// GalleryImage is one image of a photo essay
type GalleryImage struct {
	URL     string `json:"url"`
	Alt     string `json:"alt"`
	Credits string `json:"credits"`
}

// GalleryImages is stored as a JSONB array
type GalleryImages []GalleryImage

// Value implements driver.Valuer
func (g GalleryImages) Value() (driver.Value, error) {
	if g == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(g)
}

// Scan implements sql.Scanner
func (g *GalleryImages) Scan(src interface{}) error {
	return scanJSON(src, g)
}

// PollData is the inline poll of a poll article
type PollData struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Votes    Votes    `json:"votes"`
}

// Value implements driver.Valuer
func (p PollData) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner
func (p *PollData) Scan(src interface{}) error {
	return scanJSON(src, p)
}

// EventData describes the event an event post announces
type EventData struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Location string `json:"location"`
	Address  string `json:"address,omitempty"`
}

// Value implements driver.Valuer
func (e EventData) Value() (driver.Value, error) {
	return json.Marshal(e)
}

// Scan implements sql.Scanner
func (e *EventData) Scan(src interface{}) error {
	return scanJSON(src, e)
}

// ArticleFilter narrows an article listing
type ArticleFilter struct {
	Status        ArticleStatus
	CategoryID    string
	AuthorID      string
	Type          ArticleType
	Featured      *bool
	Recommended   *bool
	ExcludeID     string
	PublishedFrom *time.Time
	PublishedTo   *time.Time
	Search        string
	Limit         int
	Offset        int
	OrderBy       string // published_at, created_at, updated_at, scheduled_at, view_count, title
	Ascending     bool
}

// ArticleInput carries the writable fields of an article save
type ArticleInput struct {
	Title            string        `json:"title"`
	Subtitle         *string       `json:"subtitle"`
	Slug             string        `json:"slug"`
	Excerpt          *string       `json:"excerpt"`
	Content          *string       `json:"content"`
	Type             ArticleType   `json:"type"`
	Status           ArticleStatus `json:"status"`
	CategoryID       *string       `json:"category_id"`
	AuthorID         *string       `json:"author_id"`
	IsFeatured       bool          `json:"is_featured"`
	IsRecommended    bool          `json:"is_recommended"`
	CommentsEnabled  *bool         `json:"comments_enabled"`
	ScheduledAt      string        `json:"scheduled_at"`
	HeroImageURL     *string       `json:"hero_image_url"`
	HeroImageAlt     *string       `json:"hero_image_alt"`
	HeroImageCredits *string       `json:"hero_image_credits"`
	MetaTitle        *string       `json:"meta_title"`
	MetaDescription  *string       `json:"meta_description"`
	OGImage          *string       `json:"og_image"`
	GalleryImages    GalleryImages `json:"gallery_images"`
	PollData         *PollData     `json:"poll_data"`
	EventData        *EventData    `json:"event_data"`
}

func scanJSON(src interface{}, dest interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("cannot scan %T into %T", src, dest)
	}
}
