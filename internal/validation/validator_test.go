package validation

import (
	"strings"
	"testing"

	"github.com/school-newsroom-api/internal/apperr"
	"github.com/school-newsroom-api/internal/models"
)

func strPtr(s string) *string { return &s }

func hasField(errors []ValidationError, field string) bool {
	for _, err := range errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

func checkErrors(t *testing.T, errors []ValidationError, wantErrors int, wantFields []string) {
	t.Helper()
	if len(errors) != wantErrors {
		t.Errorf("got %d errors, want %d. Errors: %v", len(errors), wantErrors, errors)
	}
	for _, wantField := range wantFields {
		if !hasField(errors, wantField) {
			t.Errorf("Expected error for field '%s' but not found", wantField)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		email      string
		wantErrors int
	}{
		{"reader@example.com", 0},
		{"  reader@example.com  ", 0},
		{"", 1},
		{"not-an-email", 1},
		{"missing@tld", 1},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			checkErrors(t, validator.ValidateEmail(tt.email), tt.wantErrors, nil)
		})
	}
}

func TestValidateArticle(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name       string
		article    *models.ArticleInput
		wantErrors int
		wantFields []string
	}{
		{
			name:    "valid draft",
			article: &models.ArticleInput{Title: "Schulfest 2024", Type: models.ArticleTypeStandard, Status: models.ArticleStatusDraft},
		},
		{
			name:       "missing title",
			article:    &models.ArticleInput{Status: models.ArticleStatusDraft},
			wantErrors: 1,
			wantFields: []string{"title"},
		},
		{
			name:       "invalid slug - not kebab-case",
			article:    &models.ArticleInput{Title: "Schulfest", Slug: "Schul_Fest"},
			wantErrors: 1,
			wantFields: []string{"slug"},
		},
		{
			name:       "invalid status",
			article:    &models.ArticleInput{Title: "Schulfest", Status: "archived"},
			wantErrors: 1,
			wantFields: []string{"status"},
		},
		{
			name:       "invalid type",
			article:    &models.ArticleInput{Title: "Schulfest", Type: "listicle"},
			wantErrors: 1,
			wantFields: []string{"type"},
		},
		{
			name:       "scheduled without date",
			article:    &models.ArticleInput{Title: "Schulfest", Status: models.ArticleStatusScheduled},
			wantErrors: 1,
			wantFields: []string{"scheduled_at"},
		},
		{
			name:    "scheduled with lenient date",
			article: &models.ArticleInput{Title: "Schulfest", Status: models.ArticleStatusScheduled, ScheduledAt: "2024-09-01 08:00"},
		},
		{
			name:       "unparsable scheduled date",
			article:    &models.ArticleInput{Title: "Schulfest", ScheduledAt: "not a date at all"},
			wantErrors: 1,
			wantFields: []string{"scheduled_at"},
		},
		{
			name:       "invalid category id",
			article:    &models.ArticleInput{Title: "Schulfest", CategoryID: strPtr("sport")},
			wantErrors: 1,
			wantFields: []string{"category_id"},
		},
		{
			name: "poll with a single option",
			article: &models.ArticleInput{
				Title:    "Umfrage",
				Type:     models.ArticleTypePollArticle,
				PollData: &models.PollData{Question: "Mensa?", Options: []string{"Ja"}},
			},
			wantErrors: 1,
			wantFields: []string{"poll_data.options"},
		},
		{
			name: "event missing location",
			article: &models.ArticleInput{
				Title:     "Sommerkonzert",
				Type:      models.ArticleTypeEvent,
				EventData: &models.EventData{Date: "2024-06-21", Time: "18:00"},
			},
			wantErrors: 1,
			wantFields: []string{"event_data.location"},
		},
		{
			name: "gallery image without url",
			article: &models.ArticleInput{
				Title:         "Fotostrecke",
				GalleryImages: models.GalleryImages{{URL: "https://img/1.jpg"}, {Alt: "no url"}},
			},
			wantErrors: 1,
			wantFields: []string{"gallery_images[1].url"},
		},
		{
			name:       "title too long",
			article:    &models.ArticleInput{Title: strings.Repeat("a", 201)},
			wantErrors: 1,
			wantFields: []string{"title"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkErrors(t, validator.ValidateArticle(tt.article), tt.wantErrors, tt.wantFields)
		})
	}
}

func TestValidateSubmission(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name       string
		kind       models.SubmissionKind
		input      *models.SubmissionInput
		wantErrors int
		wantFields []string
	}{
		{
			name:  "valid comment",
			kind:  models.KindComment,
			input: &models.SubmissionInput{Name: "Lena", Message: "Toller Artikel!"},
		},
		{
			name:       "comment without message",
			kind:       models.KindComment,
			input:      &models.SubmissionInput{Name: "Lena"},
			wantErrors: 1,
			wantFields: []string{"message"},
		},
		{
			name:       "comment with malformed optional email",
			kind:       models.KindComment,
			input:      &models.SubmissionInput{Name: "Lena", Email: "lena@", Message: "Hi"},
			wantErrors: 1,
			wantFields: []string{"email"},
		},
		{
			name:       "comment over word limit",
			kind:       models.KindComment,
			input:      &models.SubmissionInput{Name: "Lena", Message: strings.Repeat("wort ", 501)},
			wantErrors: 1,
			wantFields: []string{"message"},
		},
		{
			name:       "contact requires email",
			kind:       models.KindContact,
			input:      &models.SubmissionInput{Name: "Jonas", Message: "Frage"},
			wantErrors: 1,
			wantFields: []string{"email"},
		},
		{
			name:  "idea with topic only",
			kind:  models.KindIdea,
			input: &models.SubmissionInput{Name: "Mia", ClassName: "8b", Topic: "Handyverbot"},
		},
		{
			name:       "join request without interest",
			kind:       models.KindJoinRequest,
			input:      &models.SubmissionInput{Name: "Ali"},
			wantErrors: 1,
			wantFields: []string{"interest"},
		},
		{
			name:       "missing name and message",
			kind:       models.KindLetter,
			input:      &models.SubmissionInput{},
			wantErrors: 2,
			wantFields: []string{"name", "message"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkErrors(t, validator.ValidateSubmission(tt.kind, tt.input), tt.wantErrors, tt.wantFields)
		})
	}
}

func TestValidateClaim(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name       string
		input      *models.ClaimInput
		wantErrors int
		wantFields []string
	}{
		{
			name:  "valid claim",
			input: &models.ClaimInput{Token: "t", Name: "Paula", Password: "secret1", PasswordConfirm: "secret1"},
		},
		{
			name:       "password too short",
			input:      &models.ClaimInput{Token: "t", Name: "Paula", Password: "12345", PasswordConfirm: "12345"},
			wantErrors: 1,
			wantFields: []string{"password"},
		},
		{
			name:       "confirmation mismatch",
			input:      &models.ClaimInput{Token: "t", Name: "Paula", Password: "secret1", PasswordConfirm: "secret2"},
			wantErrors: 1,
			wantFields: []string{"password_confirm"},
		},
		{
			name:       "missing token and name",
			input:      &models.ClaimInput{Password: "secret1", PasswordConfirm: "secret1"},
			wantErrors: 2,
			wantFields: []string{"token", "name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkErrors(t, validator.ValidateClaim(tt.input), tt.wantErrors, tt.wantFields)
		})
	}
}

func TestValidatePoll(t *testing.T) {
	validator := NewValidator()

	checkErrors(t, validator.ValidatePoll(&models.PollInput{Question: "Mensa?", Options: []string{"Ja", "Nein"}}), 0, nil)
	checkErrors(t, validator.ValidatePoll(&models.PollInput{Question: "Mensa?", Options: []string{"Ja", "Ja"}}), 1, []string{"options[1]"})
	checkErrors(t, validator.ValidatePoll(&models.PollInput{Question: "Mensa?", Options: []string{"Ja", " "}}), 1, []string{"options[1]"})
	checkErrors(t, validator.ValidatePoll(&models.PollInput{Options: []string{"Ja"}}), 2, []string{"question", "options"})
	checkErrors(t, validator.ValidatePoll(&models.PollInput{Question: "Q", Options: []string{"A", "B"}, EndsAt: "2024-07-01"}), 0, nil)
}

func TestValidateProfile(t *testing.T) {
	validator := NewValidator()
	pos := models.Position("janitor")

	checkErrors(t, validator.ValidateProfile(&models.ProfileInput{Name: "Paula", Grade: strPtr("Q1")}), 0, nil)
	checkErrors(t, validator.ValidateProfile(&models.ProfileInput{Name: "Paula", Grade: strPtr("13")}), 1, []string{"grade"})
	checkErrors(t, validator.ValidateProfile(&models.ProfileInput{Name: "Paula", Position: &pos}), 1, []string{"position"})
	checkErrors(t, validator.ValidateProfile(&models.ProfileInput{Name: "Paula", Slug: strPtr("Paula M")}), 1, []string{"slug"})
}

func TestValidateCategory_DuplicateInBatch(t *testing.T) {
	validator := NewValidator()

	first := &models.Category{Name: "Sport", Slug: "sport", BadgeColor: "#10b981"}
	checkErrors(t, validator.ValidateCategory(first, 1), 0, nil)
	validator.AddCategorySlug(first.Slug)

	dup := &models.Category{Name: "Sport 2", Slug: "sport"}
	checkErrors(t, validator.ValidateCategory(dup, 2), 1, []string{"slug"})

	badColor := &models.Category{Name: "Kultur", Slug: "kultur", BadgeColor: "red"}
	checkErrors(t, validator.ValidateCategory(badColor, 3), 1, []string{"badge_color"})
}

func TestAsError(t *testing.T) {
	if AsError(nil) != nil {
		t.Error("expected nil for no errors")
	}

	err := AsError([]ValidationError{{Field: "email", Message: "email is required"}, {Field: "name", Message: "x"}})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "email is required") {
		t.Errorf("expected first message, got %q", err.Error())
	}
}

func TestParseTime(t *testing.T) {
	got, err := ParseTime("")
	if err != nil || got != nil {
		t.Fatalf("empty input: got %v, %v", got, err)
	}

	got, err = ParseTime("2024-03-15T10:30:00Z")
	if err != nil {
		t.Fatal(err)
	}
	if got.Year() != 2024 || got.Month() != 3 || got.Day() != 15 {
		t.Errorf("unexpected date %v", got)
	}

	if _, err := ParseTime("not a date at all"); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestIsUUID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"8f14e45f-ceea-467f-a0b6-1c2e0b5f8e3a", true},
		{"8F14E45F-CEEA-467F-A0B6-1C2E0B5F8E3A", true},
		{"", false},
		{"abc", false},
		{"42", false},
		{"8f14e45fceea467fa0b61c2e0b5f8e3a", false},
		{"urn:uuid:8f14e45f-ceea-467f-a0b6-1c2e0b5f8e3a", false},
		{"{8f14e45f-ceea-467f-a0b6-1c2e0b5f8e3a}", false},
	}
	for _, tt := range tests {
		if got := IsUUID(tt.in); got != tt.want {
			t.Errorf("IsUUID(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
