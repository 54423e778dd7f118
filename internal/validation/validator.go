package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
	"github.com/school-newsroom-api/internal/apperr"
	"github.com/school-newsroom-api/internal/models"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	slugRegex  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	colorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

const (
	maxTitleLength   = 200
	maxMessageLength = 5000
	maxNameLength    = 120
	minPollOptions   = 2
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// AsError turns the first validation error into an apperr validation error
func AsError(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	return apperr.Validation(errs[0].Field, errs[0].Message)
}

// Validator provides validation methods. The slug cache is only used when
// validating a batch, so one Validator should not be shared across batches.
type Validator struct {
	categorySlugCache map[string]bool
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		categorySlugCache: make(map[string]bool),
	}
}

// AddCategorySlug adds a slug to the uniqueness cache
func (v *Validator) AddCategorySlug(slug string) {
	v.categorySlugCache[slug] = true
}

// ValidateEmail checks a required email address
func (v *Validator) ValidateEmail(email string) []ValidationError {
	var errors []ValidationError
	email = strings.TrimSpace(email)
	if email == "" {
		errors = append(errors, ValidationError{Field: "email", Message: "email is required"})
	} else if !emailRegex.MatchString(email) {
		errors = append(errors, ValidationError{Field: "email", Message: "invalid email format", Value: email})
	}
	return errors
}

// ValidateArticle validates an article save
func (v *Validator) ValidateArticle(in *models.ArticleInput) []ValidationError {
	var errors []ValidationError

	// Validate title
	title := strings.TrimSpace(in.Title)
	if title == "" {
		errors = append(errors, ValidationError{Field: "title", Message: "title is required"})
	} else if len([]rune(title)) > maxTitleLength {
		errors = append(errors, ValidationError{Field: "title", Message: fmt.Sprintf("title must be at most %d characters", maxTitleLength)})
	}

	// Validate slug when given explicitly
	if in.Slug != "" && !slugRegex.MatchString(in.Slug) {
		errors = append(errors, ValidationError{Field: "slug", Message: "slug must be kebab-case (lowercase letters, numbers, hyphens)", Value: in.Slug})
	}

	// Validate type
	if in.Type != "" && !models.ValidArticleTypes[in.Type] {
		errors = append(errors, ValidationError{Field: "type", Message: "invalid article type", Value: in.Type})
	}

	// Validate status
	if in.Status != "" && !models.ValidArticleStatuses[in.Status] {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: "invalid status, must be one of: draft, review, scheduled, published",
			Value:   in.Status,
		})
	}

	// Validate category_id (FK)
	if in.CategoryID != nil && *in.CategoryID != "" && !isValidUUID(*in.CategoryID) {
		errors = append(errors, ValidationError{Field: "category_id", Message: "invalid UUID format", Value: *in.CategoryID})
	}

	// Scheduled articles need a date
	if in.ScheduledAt != "" {
		if _, err := ParseTime(in.ScheduledAt); err != nil {
			errors = append(errors, ValidationError{Field: "scheduled_at", Message: "invalid date", Value: in.ScheduledAt})
		}
	} else if in.Status == models.ArticleStatusScheduled {
		errors = append(errors, ValidationError{Field: "scheduled_at", Message: "scheduled_at is required for scheduled articles"})
	}

	for i, img := range in.GalleryImages {
		if strings.TrimSpace(img.URL) == "" {
			errors = append(errors, ValidationError{Field: fmt.Sprintf("gallery_images[%d].url", i), Message: "url is required"})
		}
	}

	if in.PollData != nil {
		if strings.TrimSpace(in.PollData.Question) == "" {
			errors = append(errors, ValidationError{Field: "poll_data.question", Message: "question is required"})
		}
		if field, msg := checkOptions(in.PollData.Options); msg != "" {
			errors = append(errors, ValidationError{Field: "poll_data." + field, Message: msg})
		}
	}

	if in.EventData != nil {
		if strings.TrimSpace(in.EventData.Date) == "" {
			errors = append(errors, ValidationError{Field: "event_data.date", Message: "event date is required"})
		} else if _, err := ParseTime(in.EventData.Date); err != nil {
			errors = append(errors, ValidationError{Field: "event_data.date", Message: "invalid date", Value: in.EventData.Date})
		}
		if strings.TrimSpace(in.EventData.Location) == "" {
			errors = append(errors, ValidationError{Field: "event_data.location", Message: "event location is required"})
		}
	}

	return errors
}

// ValidateSubmission validates a visitor submission of the given kind
func (v *Validator) ValidateSubmission(kind models.SubmissionKind, in *models.SubmissionInput) []ValidationError {
	var errors []ValidationError

	name := strings.TrimSpace(in.Name)
	if name == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "name is required"})
	} else if len([]rune(name)) > maxNameLength {
		errors = append(errors, ValidationError{Field: "name", Message: fmt.Sprintf("name must be at most %d characters", maxNameLength)})
	}

	// Email is required for contact messages, optional elsewhere
	if kind == models.KindContact || in.Email != "" {
		errors = append(errors, v.ValidateEmail(in.Email)...)
	}

	switch kind {
	case models.KindIdea:
		if strings.TrimSpace(in.Topic) == "" {
			errors = append(errors, ValidationError{Field: "topic", Message: "topic is required"})
		}
	case models.KindJoinRequest:
		if strings.TrimSpace(in.Interest) == "" {
			errors = append(errors, ValidationError{Field: "interest", Message: "interest is required"})
		}
	case models.KindComment, models.KindLetter, models.KindContact:
		if strings.TrimSpace(in.Message) == "" {
			errors = append(errors, ValidationError{Field: "message", Message: "message is required"})
		}
	default:
		errors = append(errors, ValidationError{Field: "kind", Message: "unknown submission kind", Value: kind})
	}

	if kind == models.KindComment {
		// Check word count (max 500 words)
		wordCount := len(strings.Fields(in.Message))
		if wordCount > models.MaxCommentWords {
			errors = append(errors, ValidationError{
				Field:   "message",
				Message: fmt.Sprintf("message exceeds maximum of %d words (has %d)", models.MaxCommentWords, wordCount),
			})
		}
	} else if len([]rune(in.Message)) > maxMessageLength {
		errors = append(errors, ValidationError{Field: "message", Message: fmt.Sprintf("message must be at most %d characters", maxMessageLength)})
	}

	return errors
}

// ValidateInvite validates an invite request
func (v *Validator) ValidateInvite(in *models.InviteInput) []ValidationError {
	errors := v.ValidateEmail(in.Email)
	if in.Role != "" && !models.ValidRoles[in.Role] {
		errors = append(errors, ValidationError{
			Field:   "role",
			Message: "invalid role, must be one of: admin, editor, author",
			Value:   in.Role,
		})
	}
	return errors
}

// ValidateClaim validates an invite claim
func (v *Validator) ValidateClaim(in *models.ClaimInput) []ValidationError {
	var errors []ValidationError
	if in.Token == "" {
		errors = append(errors, ValidationError{Field: "token", Message: "invite token is required"})
	}
	if strings.TrimSpace(in.Name) == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "name is required"})
	}
	return append(errors, checkPassword(in.Password, in.PasswordConfirm)...)
}

// ValidateSetup validates the first admin bootstrap
func (v *Validator) ValidateSetup(in *models.SetupInput) []ValidationError {
	var errors []ValidationError
	if strings.TrimSpace(in.Name) == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "name is required"})
	}
	errors = append(errors, v.ValidateEmail(in.Email)...)
	return append(errors, checkPassword(in.Password, in.PasswordConfirm)...)
}

// ValidatePoll validates a standalone poll
func (v *Validator) ValidatePoll(in *models.PollInput) []ValidationError {
	var errors []ValidationError
	if strings.TrimSpace(in.Question) == "" {
		errors = append(errors, ValidationError{Field: "question", Message: "question is required"})
	}
	if field, msg := checkOptions(in.Options); msg != "" {
		errors = append(errors, ValidationError{Field: field, Message: msg})
	}
	if in.ArticleID != nil && *in.ArticleID != "" && !isValidUUID(*in.ArticleID) {
		errors = append(errors, ValidationError{Field: "article_id", Message: "invalid UUID format", Value: *in.ArticleID})
	}
	if in.EndsAt != "" {
		if _, err := ParseTime(in.EndsAt); err != nil {
			errors = append(errors, ValidationError{Field: "ends_at", Message: "invalid date", Value: in.EndsAt})
		}
	}
	return errors
}

// ValidateProfile validates a profile edit
func (v *Validator) ValidateProfile(in *models.ProfileInput) []ValidationError {
	var errors []ValidationError
	if strings.TrimSpace(in.Name) == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "name is required"})
	}
	if in.Slug != nil && *in.Slug != "" && !slugRegex.MatchString(*in.Slug) {
		errors = append(errors, ValidationError{Field: "slug", Message: "slug must be kebab-case (lowercase letters, numbers, hyphens)", Value: *in.Slug})
	}
	if in.Position != nil && *in.Position != "" {
		if _, ok := models.PositionRank[*in.Position]; !ok {
			errors = append(errors, ValidationError{Field: "position", Message: "invalid position", Value: *in.Position})
		}
	}
	if in.Grade != nil && *in.Grade != "" && !models.ValidGrades[*in.Grade] {
		errors = append(errors, ValidationError{Field: "grade", Message: "invalid grade", Value: *in.Grade})
	}
	return errors
}

// ValidateCategory validates one category of a seed batch
func (v *Validator) ValidateCategory(c *models.Category, lineNum int) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.Name) == "" {
		errors = append(errors, ValidationError{Field: "name", Message: fmt.Sprintf("entry %d: name is required", lineNum)})
	}

	if c.Slug == "" {
		errors = append(errors, ValidationError{Field: "slug", Message: fmt.Sprintf("entry %d: slug is required", lineNum)})
	} else if !slugRegex.MatchString(c.Slug) {
		errors = append(errors, ValidationError{Field: "slug", Message: fmt.Sprintf("entry %d: slug must be kebab-case", lineNum), Value: c.Slug})
	} else if v.categorySlugCache[c.Slug] {
		// Check for duplicate slug in current batch
		errors = append(errors, ValidationError{Field: "slug", Message: fmt.Sprintf("entry %d: duplicate slug", lineNum), Value: c.Slug})
	}

	if c.BadgeColor != "" && !colorRegex.MatchString(c.BadgeColor) {
		errors = append(errors, ValidationError{Field: "badge_color", Message: fmt.Sprintf("entry %d: badge_color must be a hex color like #6366f1", lineNum), Value: c.BadgeColor})
	}

	return errors
}

// ParseTime parses a date in any common layout. Empty input yields nil.
func ParseTime(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// IsSlug reports whether s is a valid kebab-case slug
func IsSlug(s string) bool {
	return slugRegex.MatchString(s)
}

// IsUUID reports whether s is a valid UUID
func IsUUID(s string) bool {
	return isValidUUID(s)
}

func checkPassword(password, confirm string) []ValidationError {
	var errors []ValidationError
	if len([]rune(password)) < models.MinPasswordLength {
		errors = append(errors, ValidationError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", models.MinPasswordLength)})
	} else if password != confirm {
		errors = append(errors, ValidationError{Field: "password_confirm", Message: "passwords do not match"})
	}
	return errors
}

func checkOptions(options []string) (string, string) {
	if len(options) < minPollOptions {
		return "options", fmt.Sprintf("at least %d options are required", minPollOptions)
	}
	seen := make(map[string]bool, len(options))
	for i, o := range options {
		o = strings.TrimSpace(o)
		if o == "" {
			return fmt.Sprintf("options[%d]", i), "option must not be empty"
		}
		if seen[o] {
			return fmt.Sprintf("options[%d]", i), "duplicate option"
		}
		seen[o] = true
	}
	return "", ""
}

// isValidUUID checks if a string is a valid UUID
// isValidUUID accepts only the canonical 36 character form
func isValidUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
